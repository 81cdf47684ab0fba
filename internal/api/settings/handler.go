package settings

import (
	"context"
	"net/http"

	"fuwari/internal/api/respond"
	"fuwari/internal/domain"
	"fuwari/internal/pkg/logger"
)

// SettingsService define o contrato público de configurações da vitrine.
type SettingsService interface {
	GetBanner(ctx context.Context) (domain.Banner, error)
}

// Handler agrupa os métodos de Handler públicos de configurações.
type Handler struct {
	Service SettingsService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SettingsService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// GetBannerHandler lida com a requisição GET /v1/settings/banner.
// A vitrine consulta este endpoint para exibir o banner de anúncio.
func (h *Handler) GetBannerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	banner, err := h.Service.GetBanner(r.Context())
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusOK)
		return
	}

	respond.ServiceResponse(w, r, h.Logger, banner, nil, http.StatusOK)
}
