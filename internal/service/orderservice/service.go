package orderservice

import (
	"context"
	"fmt"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// OrderRepository define o contrato de leitura/mutação de pedidos que este
// serviço consome.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
}

// StockService é o contrato mínimo de estoque: o cancelamento de um pedido
// devolve as quantidades via a mesma mutação compensatória do checkout.
type StockService interface {
	Rollback(ctx context.Context, lines []domain.StockLine) error
}

// Service implementa histórico, consulta e administração de pedidos.
type Service struct {
	repo   OrderRepository
	stock  StockService
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Pedidos.
func NewService(repo OrderRepository, stock StockService, logger logger.Logger) *Service {
	return &Service{repo: repo, stock: stock, logger: logger}
}

// validTransitions define a máquina de estados administrativa dos pedidos.
// O checkout cria pedidos em "paid"; "pending" existe para pedidos importados
// ou criados manualmente.
var validTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending: {domain.StatusPaid, domain.StatusCancelled},
	domain.StatusPaid:    {domain.StatusShipped, domain.StatusCancelled},
	domain.StatusShipped: {domain.StatusDelivered},
}

// canTransition informa se a mudança de status é permitida.
func canTransition(from, to domain.OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ListMyOrders lista o histórico do usuário autenticado.
func (s *Service) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, apperror.NewUnauthorizedError("Usuário não identificado.")
	}

	orders, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Falha ao listar pedidos do usuário.", err)
		return nil, apperror.NewInternalError("Falha interna ao listar pedidos.", err)
	}
	return orders, nil
}

// GetOrder busca um pedido. Somente o dono do pedido ou um admin pode vê-lo.
func (s *Service) GetOrder(ctx context.Context, orderID, requesterID string, requesterRole domain.UserRole) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, apperror.NewValidationError("ID do pedido é obrigatório.")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if requesterRole != domain.RoleAdmin {
		if order.UserID == nil || *order.UserID != requesterID {
			return domain.Order{}, apperror.NewForbiddenError("Este pedido pertence a outro usuário.")
		}
	}

	return order, nil
}

// ListOrders lista pedidos com filtros (uso administrativo).
func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar pedidos.", err)
		return nil, apperror.NewInternalError("Falha interna ao listar pedidos.", err)
	}
	return orders, nil
}

// UpdateStatus aplica uma transição de status administrativa. O cancelamento
// devolve as quantidades dos itens ao estoque.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, apperror.NewValidationError("ID do pedido é obrigatório.")
	}

	switch newStatus {
	case domain.StatusPending, domain.StatusPaid, domain.StatusShipped, domain.StatusDelivered, domain.StatusCancelled:
		// status conhecido
	default:
		return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Status '%s' não é válido.", newStatus))
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !canTransition(order.Status, newStatus) {
		return domain.Order{}, apperror.NewConflictError(
			fmt.Sprintf("Transição de status inválida: %s -> %s.", order.Status, newStatus))
	}

	// O UPDATE é condicionado ao status lido acima: se outra requisição mudou
	// o pedido no meio do caminho, o repositório devolve conflito e nada
	// abaixo (em particular a devolução de estoque) é executado.
	if err := s.repo.UpdateStatus(ctx, orderID, order.Status, newStatus); err != nil {
		s.logger.Error("Falha ao atualizar status do pedido.", err)
		return domain.Order{}, err
	}

	// Cancelamento devolve o estoque reservado pelo checkout. Só chega aqui a
	// requisição que venceu o UPDATE condicional, então as quantidades voltam
	// no máximo uma vez por pedido.
	if newStatus == domain.StatusCancelled {
		lines := make([]domain.StockLine, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, domain.StockLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Name:      item.Name,
			})
		}
		if len(lines) > 0 {
			if rollbackErr := s.stock.Rollback(ctx, lines); rollbackErr != nil {
				// O status já mudou; registramos a falha de devolução para
				// correção manual em vez de reverter o cancelamento.
				s.logger.Error("Falha ao devolver estoque de pedido cancelado.", rollbackErr)
			}
		}
	}

	order.Status = newStatus
	s.logger.Info("Status do pedido atualizado.", map[string]interface{}{
		"order_id": orderID,
		"status":   newStatus,
	})
	return order, nil
}
