package checkout

import (
	"context"
	"encoding/json"
	"net/http"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/middleware"
	"fuwari/internal/service/checkoutservice"
)

// CheckoutService define o contrato que o Handler espera do orquestrador.
type CheckoutService interface {
	CheckStock(ctx context.Context, lines []domain.StockLine) (domain.AvailabilityResult, error)
	ConfirmPayment(ctx context.Context, req domain.CheckoutRequest, userID *string) (checkoutservice.CheckoutResponse, error)
}

// CheckStockRequest é o payload do POST /v1/checkout/check-stock.
type CheckStockRequest struct {
	CartItems []domain.StockLine `json:"cartItems"`
}

// CheckStockResponse é o corpo de resposta do check-stock.
type CheckStockResponse struct {
	Success          bool               `json:"success"`
	IsAvailable      bool               `json:"isAvailable"`
	UnavailableItems []domain.StockLine `json:"unavailableItems"`
}

// Handler agrupa os métodos de Handler do checkout.
type Handler struct {
	Service CheckoutService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CheckoutService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CheckStockHandler lida com a requisição POST /v1/checkout/check-stock.
func (h *Handler) CheckStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req CheckStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	result, err := h.Service.CheckStock(ctx, req.CartItems)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, CheckStockResponse{
		Success:          true,
		IsAvailable:      result.IsAvailable,
		UnavailableItems: result.UnavailableItems,
	}, nil, http.StatusOK)
}

// ConfirmPaymentHandler lida com a requisição POST /v1/checkout/confirm-payment.
// A rota usa autenticação opcional: com token válido o pedido é vinculado ao
// usuário; sem token a compra segue como convidado.
func (h *Handler) ConfirmPaymentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	// Resolve a identidade: sessão autenticada ou convidado (userID nil).
	var userID *string
	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		userID = &claims.UserID
		h.Logger.Info("Checkout autenticado.", map[string]interface{}{"user_id": claims.UserID})
	}

	response, err := h.Service.ConfirmPayment(ctx, req, userID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, response, nil, http.StatusCreated)
}
