package settingsrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// SettingsRepository acessa a tabela key-value de configurações do site
// (modo manutenção, banner de anúncio, etc.).
type SettingsRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSettingsRepository cria uma nova instância do repositório de configurações.
func NewSettingsRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SettingsRepository {
	return &SettingsRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Get busca o valor de uma chave de configuração.
func (r *SettingsRepository) Get(ctx context.Context, key string) (domain.Setting, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT key, value, updated_at FROM site_settings WHERE key = $1`, key)

	var setting domain.Setting
	err := row.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Setting{}, apperror.NewNotFoundError(fmt.Sprintf("Configuração '%s' não existe.", key))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar configuração no DB.", err)
		return domain.Setting{}, apperror.NewDBError("Falha ao buscar configuração", err)
	}

	return setting, nil
}

// Upsert grava (ou sobrescreve) o valor de uma chave de configuração.
func (r *SettingsRepository) Upsert(ctx context.Context, key, value string) (domain.Setting, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const upsertSQL = `
        INSERT INTO site_settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
        RETURNING key, value, updated_at`

	var setting domain.Setting
	err := r.DB.QueryRowContext(ctxTimeout, upsertSQL, key, value).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		r.logger.Error("Falha ao gravar configuração no DB.", err)
		return domain.Setting{}, apperror.NewDBError("Falha ao gravar configuração", err)
	}

	r.logger.Info("Configuração atualizada.", map[string]interface{}{"key": key})
	return setting, nil
}
