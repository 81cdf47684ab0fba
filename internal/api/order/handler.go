package order

import (
	"context"
	"net/http"
	"strings"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/middleware"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID, requesterID string, requesterRole domain.UserRole) (domain.Order, error)
}

// Handler agrupa os métodos de Handler do histórico de pedidos.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListMyOrdersHandler lida com a requisição GET /v1/orders (rota autenticada).
func (h *Handler) ListMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	orders, err := h.Service.ListMyOrders(r.Context(), claims.UserID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respond.ServiceResponse(w, r, h.Logger, orders, nil, http.StatusOK)
}

// GetOrderHandler lida com a requisição GET /v1/orders/{id} (rota autenticada).
// O Serviço garante que apenas o dono do pedido (ou um admin) recebe o pedido.
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	// Extrai o ID do último segmento da URL: ["v1", "orders", "<id>"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 3 || segments[2] == "" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	orderID := segments[2]

	order, err := h.Service.GetOrder(r.Context(), orderID, claims.UserID, claims.Role)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, order, nil, http.StatusOK)
}
