package settingsservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/cache"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/service/settingsservice"
)

// MockSettingsRepository é uma implementação mock da interface SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (domain.Setting, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.Setting), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, key, value string) (domain.Setting, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(domain.Setting), args.Error(1)
}

// MockCacheClient é uma implementação mock da interface cache.Client
type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheClient) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

const testTTL = 30 * time.Second

// TestGetValue_CacheHit testa que um hit no cache não toca o banco.
func TestGetValue_CacheHit(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:maintenance_mode").
		Return("true", nil)

	value, err := svc.GetValue(context.Background(), domain.SettingMaintenanceMode)

	assert.NoError(t, err)
	assert.Equal(t, "true", value)
	mockRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

// TestGetValue_CacheMiss_PopulatesCache testa o caminho miss -> DB -> Set.
func TestGetValue_CacheMiss_PopulatesCache(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_message").
		Return("", cache.ErrCacheMiss)
	mockRepo.On("Get", mock.AnythingOfType("context.backgroundCtx"), domain.SettingBannerMessage).
		Return(domain.Setting{Key: domain.SettingBannerMessage, Value: "Promoção de outono!"}, nil)
	mockCache.On("Set", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_message", "Promoção de outono!", testTTL).
		Return(nil)

	value, err := svc.GetValue(context.Background(), domain.SettingBannerMessage)

	assert.NoError(t, err)
	assert.Equal(t, "Promoção de outono!", value)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestGetValue_MissingKeyIsEmptyValue testa que chave inexistente vira valor
// vazio sem erro, com o vazio também cacheado.
func TestGetValue_MissingKeyIsEmptyValue(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_enabled").
		Return("", cache.ErrCacheMiss)
	mockRepo.On("Get", mock.AnythingOfType("context.backgroundCtx"), domain.SettingBannerEnabled).
		Return(domain.Setting{}, apperror.NewNotFoundError("Configuração não encontrada."))
	mockCache.On("Set", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_enabled", "", testTTL).
		Return(nil)

	value, err := svc.GetValue(context.Background(), domain.SettingBannerEnabled)

	assert.NoError(t, err)
	assert.Equal(t, "", value)
	mockRepo.AssertExpectations(t)
}

// TestUpdateSetting_InvalidatesCache testa o upsert com invalidação explícita.
func TestUpdateSetting_InvalidatesCache(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockRepo.On("Upsert", mock.AnythingOfType("context.backgroundCtx"), domain.SettingMaintenanceMode, "true").
		Return(domain.Setting{Key: domain.SettingMaintenanceMode, Value: "true"}, nil)
	mockCache.On("Delete", mock.AnythingOfType("context.backgroundCtx"), "setting:maintenance_mode").
		Return(nil)

	setting, err := svc.UpdateSetting(context.Background(), domain.SettingMaintenanceMode, "true")

	assert.NoError(t, err)
	assert.Equal(t, "true", setting.Value)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestIsMaintenanceMode_TrueValue testa a interpretação do valor "true".
func TestIsMaintenanceMode_TrueValue(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:maintenance_mode").
		Return("true", nil)

	assert.True(t, svc.IsMaintenanceMode(context.Background()))
}

// TestIsMaintenanceMode_FailOpen testa que falha de leitura assume loja aberta.
func TestIsMaintenanceMode_FailOpen(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:maintenance_mode").
		Return("", errors.New("redis indisponível"))
	mockRepo.On("Get", mock.AnythingOfType("context.backgroundCtx"), domain.SettingMaintenanceMode).
		Return(domain.Setting{}, apperror.NewDBError("Falha de conexão", errors.New("timeout")))

	assert.False(t, svc.IsMaintenanceMode(context.Background()))
}

// TestGetBanner_Disabled testa o banner desligado sem buscar a mensagem.
func TestGetBanner_Disabled(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_enabled").
		Return("false", nil)

	banner, err := svc.GetBanner(context.Background())

	assert.NoError(t, err)
	assert.False(t, banner.Enabled)
	assert.Empty(t, banner.Message)
	mockCache.AssertNotCalled(t, "Get", mock.Anything, "setting:banner_message")
}

// TestGetBanner_Enabled testa o banner ligado com mensagem.
func TestGetBanner_Enabled(t *testing.T) {
	mockRepo := new(MockSettingsRepository)
	mockCache := new(MockCacheClient)
	mockLogger := logger.NewLogger("debug")

	svc := settingsservice.NewService(mockRepo, mockCache, testTTL, mockLogger)

	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_enabled").
		Return("true", nil)
	mockCache.On("Get", mock.AnythingOfType("context.backgroundCtx"), "setting:banner_message").
		Return("Frete grátis nesta semana!", nil)

	banner, err := svc.GetBanner(context.Background())

	assert.NoError(t, err)
	assert.True(t, banner.Enabled)
	assert.Equal(t, "Frete grátis nesta semana!", banner.Message)
}
