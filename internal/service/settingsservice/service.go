package settingsservice

import (
	"context"
	"time"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/cache"
	"fuwari/internal/pkg/logger"
)

// Chave de cache para configurações do site.
const settingCacheKey = "setting:"

// SettingsRepository define o contrato que o Serviço de Configurações espera
// da camada de Persistência.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (domain.Setting, error)
	Upsert(ctx context.Context, key, value string) (domain.Setting, error)
}

// Service implementa as configurações do site com um cache de TTL curto:
// o gate de manutenção consulta este serviço em toda requisição pública,
// então o valor fica no Redis e o DB só é tocado quando o TTL expira.
type Service struct {
	repo     SettingsRepository
	cache    cache.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Configurações.
func NewService(repo SettingsRepository, cacheClient cache.Client, cacheTTL time.Duration, logger logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetValue busca o valor de uma chave, com a estratégia Cache-Aside.
// Chave inexistente resulta em valor vazio sem erro: configurações ausentes
// são tratadas como "desligadas" pelos chamadores.
func (s *Service) GetValue(ctx context.Context, key string) (string, error) {
	cacheKey := settingCacheKey + key

	// 1. Cache (Redis)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Falha ao ler configuração do cache. Seguindo para o DB.", map[string]interface{}{"key": key})
	}

	// 2. Banco de Dados
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if _, ok := err.(*apperror.NotFoundError); ok {
			// Ausência vira valor vazio; cacheia para não repetir a consulta.
			s.cache.Set(ctx, cacheKey, "", s.cacheTTL)
			return "", nil
		}
		return "", err
	}

	// 3. Popular o cache
	s.cache.Set(ctx, cacheKey, setting.Value, s.cacheTTL)

	return setting.Value, nil
}

// UpdateSetting grava uma configuração e invalida o cache (uso administrativo).
func (s *Service) UpdateSetting(ctx context.Context, key, value string) (domain.Setting, error) {
	if key == "" {
		return domain.Setting{}, apperror.NewValidationError("A chave da configuração é obrigatória.")
	}

	setting, err := s.repo.Upsert(ctx, key, value)
	if err != nil {
		return domain.Setting{}, err
	}

	// Invalidação explícita: a próxima leitura repopula o cache.
	s.cache.Delete(ctx, settingCacheKey+key)

	s.logger.Info("Configuração do site atualizada.", map[string]interface{}{"key": key})
	return setting, nil
}

// IsMaintenanceMode informa se o site está em modo manutenção.
// Qualquer falha de leitura resulta em false: uma indisponibilidade do
// Redis/DB não pode trancar a loja inteira.
func (s *Service) IsMaintenanceMode(ctx context.Context) bool {
	value, err := s.GetValue(ctx, domain.SettingMaintenanceMode)
	if err != nil {
		s.logger.Warn("Falha ao consultar modo manutenção. Assumindo loja aberta.", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return value == "true"
}

// GetBanner devolve o banner de anúncio público da vitrine.
func (s *Service) GetBanner(ctx context.Context) (domain.Banner, error) {
	enabled, err := s.GetValue(ctx, domain.SettingBannerEnabled)
	if err != nil {
		return domain.Banner{}, apperror.NewInternalError("Falha interna ao consultar o banner.", err)
	}
	if enabled != "true" {
		return domain.Banner{Enabled: false}, nil
	}

	message, err := s.GetValue(ctx, domain.SettingBannerMessage)
	if err != nil {
		return domain.Banner{}, apperror.NewInternalError("Falha interna ao consultar o banner.", err)
	}

	return domain.Banner{Enabled: true, Message: message}, nil
}
