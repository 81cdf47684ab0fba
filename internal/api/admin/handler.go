package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// CatalogService é o contrato administrativo de catálogo.
type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// OrderService é o contrato administrativo de pedidos.
type OrderService interface {
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (domain.Order, error)
}

// UserService é o contrato administrativo de usuários.
type UserService interface {
	ListUsers(ctx context.Context, page, limit int) ([]domain.User, error)
}

// ContactService é o contrato administrativo de mensagens de contato.
type ContactService interface {
	ListMessages(ctx context.Context, page, limit int) ([]domain.ContactMessage, error)
	MarkRead(ctx context.Context, id string) error
}

// SettingsService é o contrato administrativo de configurações do site.
type SettingsService interface {
	UpdateSetting(ctx context.Context, key, value string) (domain.Setting, error)
}

// UpdateStatusRequest é o payload do PUT /v1/admin/orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateSettingRequest é o payload do PUT /v1/admin/settings/{key}.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// Handler agrupa todos os métodos do back-office. Todas as rotas passam pelo
// middleware de autenticação + permissão de admin antes de chegar aqui.
type Handler struct {
	Catalog  CatalogService
	Orders   OrderService
	Users    UserService
	Contact  ContactService
	Settings SettingsService
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler administrativo.
func NewHandler(catalog CatalogService, orders OrderService, users UserService,
	contact ContactService, settings SettingsService, log logger.Logger) *Handler {
	return &Handler{
		Catalog:  catalog,
		Orders:   orders,
		Users:    users,
		Contact:  contact,
		Settings: settings,
		Logger:   log,
	}
}

// parsePagination lê page/limit da query string.
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

// ProductsHandler lida com GET (listagem completa, incluindo inativos) e
// POST (criação) em /v1/admin/products.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, limit := parsePagination(r)
		filter := domain.ProductFilter{
			Page:       page,
			Limit:      limit,
			Category:   r.URL.Query().Get("category"),
			ActiveOnly: false,
		}

		products, err := h.Catalog.ListProducts(r.Context(), filter)
		if err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		respond.ServiceResponse(w, r, h.Logger, products, nil, http.StatusOK)

	case http.MethodPost:
		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil,
				apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
			return
		}

		created, err := h.Catalog.CreateProduct(r.Context(), product)
		if err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusCreated)
			return
		}
		respond.ServiceResponse(w, r, h.Logger, created, nil, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ProductByIDHandler lida com PUT (atualização) e DELETE (desativação) em
// /v1/admin/products/{id}.
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	// ["v1", "admin", "products", "<id>"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 4 || segments[3] == "" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	productID := segments[3]

	switch r.Method {
	case http.MethodPut:
		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil,
				apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
			return
		}
		product.ID = productID

		if err := h.Catalog.UpdateProduct(r.Context(), product); err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
			return
		}
		respond.ServiceResponse(w, r, h.Logger, product, nil, http.StatusOK)

	case http.MethodDelete:
		if err := h.Catalog.DeleteProduct(r.Context(), productID); err != nil {
			respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
			return
		}
		respond.ServiceResponse(w, r, h.Logger, nil, nil, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// OrdersHandler lida com GET /v1/admin/orders (listagem com filtro de status).
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	page, limit := parsePagination(r)
	filter := domain.OrderFilter{
		Page:   page,
		Limit:  limit,
		Status: domain.OrderStatus(r.URL.Query().Get("status")),
	}

	orders, err := h.Orders.ListOrders(r.Context(), filter)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respond.ServiceResponse(w, r, h.Logger, orders, nil, http.StatusOK)
}

// OrderStatusHandler lida com PUT /v1/admin/orders/{id}/status.
func (h *Handler) OrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	// ["v1", "admin", "orders", "<id>", "status"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 5 || segments[3] == "" || segments[4] != "status" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	orderID := segments[3]

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	respond.ServiceResponse(w, r, h.Logger, order, nil, http.StatusOK)
}

// UsersHandler lida com GET /v1/admin/users.
func (h *Handler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	page, limit := parsePagination(r)
	users, err := h.Users.ListUsers(r.Context(), page, limit)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	respond.ServiceResponse(w, r, h.Logger, users, nil, http.StatusOK)
}

// ContactMessagesHandler lida com GET /v1/admin/contact-messages.
func (h *Handler) ContactMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	page, limit := parsePagination(r)
	messages, err := h.Contact.ListMessages(r.Context(), page, limit)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	if messages == nil {
		messages = []domain.ContactMessage{}
	}
	respond.ServiceResponse(w, r, h.Logger, messages, nil, http.StatusOK)
}

// ContactMarkReadHandler lida com PUT /v1/admin/contact-messages/{id}/read.
func (h *Handler) ContactMarkReadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	// ["v1", "admin", "contact-messages", "<id>", "read"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 5 || segments[3] == "" || segments[4] != "read" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}

	if err := h.Contact.MarkRead(r.Context(), segments[3]); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
		return
	}
	respond.ServiceResponse(w, r, h.Logger, nil, nil, http.StatusNoContent)
}

// SettingsHandler lida com PUT /v1/admin/settings/{key}.
// As chaves conhecidas são maintenance_mode, banner_enabled e banner_message.
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	// ["v1", "admin", "settings", "<key>"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 4 || segments[3] == "" {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Formato de URL inválido ou chave ausente."), http.StatusOK)
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	setting, err := h.Settings.UpdateSetting(r.Context(), segments[3], req.Value)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}
	respond.ServiceResponse(w, r, h.Logger, setting, nil, http.StatusOK)
}
