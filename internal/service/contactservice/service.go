package contactservice

import (
	"context"
	"strings"
	"time"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/queue"
)

// ContactRepository define o contrato que o Serviço de Contato espera da
// camada de Persistência.
type ContactRepository interface {
	Save(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error)
	FindAll(ctx context.Context, page, limit int) ([]domain.ContactMessage, error)
	MarkRead(ctx context.Context, id string) error
}

// Notifier define o contrato de publicação de eventos de contato.
type Notifier interface {
	PublishContactReceived(ctx context.Context, event queue.ContactReceivedEvent) error
}

// Service implementa o recebimento e a administração de mensagens de contato.
type Service struct {
	repo     ContactRepository
	notifier Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Contato.
func NewService(repo ContactRepository, notifier Notifier, logger logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Submit valida e persiste uma mensagem de contato, e publica a notificação.
func (s *Service) Submit(ctx context.Context, msg domain.ContactMessage) (domain.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return domain.ContactMessage{}, apperror.NewValidationError("Nome, email e mensagem são obrigatórios.")
	}
	if !strings.Contains(msg.Email, "@") {
		return domain.ContactMessage{}, apperror.NewValidationError("Email inválido.")
	}

	saved, err := s.repo.Save(ctx, msg)
	if err != nil {
		s.logger.Error("Falha ao salvar mensagem de contato.", err)
		return domain.ContactMessage{}, apperror.NewInternalError("Falha interna ao salvar mensagem.", err)
	}

	// Notificação best-effort: a mensagem já está persistida.
	event := queue.ContactReceivedEvent{
		MessageID: saved.ID,
		Name:      saved.Name,
		Email:     saved.Email,
		Subject:   saved.Subject,
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
	}
	if err := s.notifier.PublishContactReceived(ctx, event); err != nil {
		s.logger.Warn("Falha ao publicar evento de contato recebido.", map[string]interface{}{
			"message_id": saved.ID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("Mensagem de contato recebida.", map[string]interface{}{"message_id": saved.ID})
	return saved, nil
}

// ListMessages lista mensagens de contato (uso administrativo).
func (s *Service) ListMessages(ctx context.Context, page, limit int) ([]domain.ContactMessage, error) {
	messages, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Falha ao listar mensagens de contato.", err)
		return nil, apperror.NewInternalError("Falha interna ao listar mensagens.", err)
	}
	return messages, nil
}

// MarkRead marca uma mensagem como lida (uso administrativo).
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("ID da mensagem é obrigatório.")
	}
	return s.repo.MarkRead(ctx, id)
}
