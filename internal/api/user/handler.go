package user

import (
	"context"
	"encoding/json"
	"net/http"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/middleware"
)

// UserService define o contrato para as operações de usuário.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, error)
	GetProfile(ctx context.Context, userID string) (domain.User, error)
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse é o corpo de resposta do login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// RegisterHandler lida com a requisição POST /v1/users/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var registration domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	user, err := h.Service.Register(r.Context(), registration)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, user, nil, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/users/login.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, LoginResponse{Token: token}, nil, http.StatusOK)
}

// ProfileHandler lida com a requisição GET /v1/users/me (rota autenticada).
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.Service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, user, nil, http.StatusOK)
}
