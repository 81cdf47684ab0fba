package product

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
}

// Handler agrupa os métodos de Handler públicos do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListProductsHandler lida com a requisição GET /v1/products.
// A vitrine pública mostra apenas produtos ativos.
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	filter := domain.ProductFilter{
		Page:       page,
		Limit:      limit,
		Category:   query.Get("category"),
		ActiveOnly: true,
	}

	products, err := h.Service.ListProducts(r.Context(), filter)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respond.ServiceResponse(w, r, h.Logger, products, nil, http.StatusOK)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	// Extrai o ID do último segmento da URL: ["v1", "products", "<id>"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 3 || segments[2] == "" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	productID := segments[2]

	product, err := h.Service.GetProductByID(r.Context(), productID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, product, nil, http.StatusOK)
}
