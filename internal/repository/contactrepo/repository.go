package contactrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// ContactRepository persiste as mensagens do formulário de contato.
type ContactRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewContactRepository cria uma nova instância do repositório de contato.
func NewContactRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *ContactRepository {
	return &ContactRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova mensagem de contato.
func (r *ContactRepository) Save(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	msg.ID = uuid.NewString()
	msg.IsRead = false
	msg.CreatedAt = time.Now()

	const insertSQL = `
        INSERT INTO contact_messages (id, name, email, subject, message, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.IsRead, msg.CreatedAt)
	if err != nil {
		r.logger.Error("Falha ao inserir mensagem de contato no DB.", err)
		return domain.ContactMessage{}, apperror.NewDBError("Falha ao inserir mensagem de contato", err)
	}

	return msg, nil
}

// FindAll lista mensagens de contato, mais recentes primeiro (uso administrativo).
func (r *ContactRepository) FindAll(ctx context.Context, page, limit int) ([]domain.ContactMessage, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT id, name, email, subject, message, is_read, created_at
        FROM contact_messages ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.logger.Error("Falha ao listar mensagens de contato no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar mensagens de contato", err)
	}
	defer rows.Close()

	var messages []domain.ContactMessage
	for rows.Next() {
		var msg domain.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao ler mensagem de contato", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar mensagens de contato", err)
	}

	return messages, nil
}

// MarkRead marca uma mensagem como lida.
func (r *ContactRepository) MarkRead(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao marcar mensagem de contato como lida.", err)
		return apperror.NewDBError("Falha ao marcar mensagem como lida", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Mensagem %s não existe.", id))
	}

	return nil
}
