package contact

import (
	"context"
	"encoding/json"
	"net/http"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// ContactService define o contrato que o Handler espera da camada de Serviço.
type ContactService interface {
	Submit(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error)
}

// Handler agrupa os métodos de Handler do formulário de contato.
type Handler struct {
	Service ContactService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ContactService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// SubmitHandler lida com a requisição POST /v1/contact.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var msg domain.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil,
			apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	saved, err := h.Service.Submit(r.Context(), msg)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, saved, nil, http.StatusCreated)
}
