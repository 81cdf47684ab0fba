package checkoutservice

import (
	"context"
	"math"
	"time"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/queue"
)

// StockService define o contrato de estoque que o orquestrador consome.
type StockService interface {
	CheckAvailability(ctx context.Context, lines []domain.StockLine) (domain.AvailabilityResult, error)
	Decrement(ctx context.Context, lines []domain.StockLine) error
	Rollback(ctx context.Context, lines []domain.StockLine) error
}

// OrderRepository define o contrato de persistência de pedidos que o
// orquestrador consome.
type OrderRepository interface {
	Save(ctx context.Context, order domain.Order) (domain.Order, error)
}

// Notifier define o contrato de publicação de eventos pós-checkout.
type Notifier interface {
	PublishOrderPlaced(ctx context.Context, event queue.OrderPlacedEvent) error
}

// CheckoutResponse é o corpo de sucesso do confirm-payment.
type CheckoutResponse struct {
	Success bool                `json:"success"`
	OrderID string              `json:"orderId"`
	Order   domain.OrderSummary `json:"order"`
}

// Service é o orquestrador de checkout: valida a requisição, resolve a
// identidade, decrementa o estoque, persiste o pedido e compensa o decremento
// se a persistência falhar.
//
// Máquina de estados por requisição:
//
//	Validating -> StockReserved -> OrderPersisted (sucesso terminal)
//
// Falha em Validating não tem efeito a desfazer; falha após StockReserved
// exige Rollback antes de terminar em erro.
type Service struct {
	stock    StockService
	orders   OrderRepository
	notifier Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do orquestrador de checkout.
func NewService(stock StockService, orders OrderRepository, notifier Notifier, logger logger.Logger) *Service {
	return &Service{
		stock:    stock,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
	}
}

// CheckStock valida o carrinho e delega a checagem de disponibilidade.
// Somente leitura.
func (s *Service) CheckStock(ctx context.Context, lines []domain.StockLine) (domain.AvailabilityResult, error) {
	if len(lines) == 0 {
		return domain.AvailabilityResult{}, apperror.NewValidationError("O carrinho não pode ser vazio.")
	}
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return domain.AvailabilityResult{}, apperror.NewValidationError("Item de carrinho inválido: id e quantidade positiva são obrigatórios.")
		}
	}

	return s.stock.CheckAvailability(ctx, lines)
}

// validate aplica o passo 1 da orquestração: presença da referência de
// pagamento, itens do carrinho, dados do cliente, totais e data de entrega.
func (s *Service) validate(req domain.CheckoutRequest) error {
	if req.PaymentIntentID == "" {
		return apperror.NewValidationError("Referência de pagamento (paymentIntentId) é obrigatória.")
	}
	if len(req.CartItems) == 0 {
		return apperror.NewValidationError("O carrinho não pode ser vazio.")
	}
	for _, line := range req.CartItems {
		if line.ProductID == "" || line.Quantity <= 0 {
			return apperror.NewValidationError("Item de carrinho inválido: id e quantidade positiva são obrigatórios.")
		}
	}
	if req.CustomerInfo.Name == "" || req.CustomerInfo.Email == "" || req.CustomerInfo.Address == "" {
		return apperror.NewValidationError("Dados do cliente incompletos: nome, email e endereço são obrigatórios.")
	}
	if req.Totals.Total <= 0 {
		return apperror.NewValidationError("Totais do pedido são obrigatórios.")
	}
	// O total deve fechar com as parcelas (tolerância de centavos por arredondamento).
	sum := req.Totals.Subtotal + req.Totals.Tax + req.Totals.Shipping
	if math.Abs(sum-req.Totals.Total) > 0.01 {
		return apperror.NewValidationError("Totais inconsistentes: subtotal + taxa + frete difere do total.")
	}
	if req.DeliveryDate == "" {
		return apperror.NewValidationError("Data de entrega é obrigatória.")
	}
	return nil
}

// ConfirmPayment executa a sequência completa do checkout.
// userID é nil para compras de convidado.
func (s *Service) ConfirmPayment(ctx context.Context, req domain.CheckoutRequest, userID *string) (CheckoutResponse, error) {
	// 1. Validação (sem efeitos colaterais)
	if err := s.validate(req); err != nil {
		return CheckoutResponse{}, err
	}

	s.logger.Info("Iniciando checkout.", map[string]interface{}{
		"payment_intent_id": req.PaymentIntentID,
		"item_count":        len(req.CartItems),
		"authenticated":     userID != nil,
	})

	// 2. Decremento atômico do estoque. Se falhar, nada foi escrito e não há
	// compensação a fazer; a requisição inteira é abortada.
	if err := s.stock.Decrement(ctx, req.CartItems); err != nil {
		s.logger.Error("Falha ao reservar estoque durante o checkout.", err)
		return CheckoutResponse{}, apperror.NewInternalError("Falha ao atualizar o estoque.", err)
	}

	// 3. Persistência do pedido.
	order := domain.Order{
		UserID:                userID,
		Totals:                req.Totals,
		Customer:              req.CustomerInfo,
		Status:                domain.StatusPaid,
		StripePaymentIntentID: req.PaymentIntentID,
		DeliveryDate:          req.DeliveryDate,
	}
	for _, line := range req.CartItems {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
		})
	}

	created, err := s.orders.Save(ctx, order)
	if err != nil {
		// 4. Compensação: devolve exatamente as linhas decrementadas no passo 2.
		// Falha do rollback não é recuperada: é registrada e a requisição
		// termina com o mesmo erro de servidor, sem retry.
		s.logger.Error("Falha ao persistir pedido. Executando rollback de estoque.", err)
		if rollbackErr := s.stock.Rollback(ctx, req.CartItems); rollbackErr != nil {
			s.logger.Error("Rollback de estoque falhou. Estoque pode estar inconsistente.", rollbackErr)
		}
		return CheckoutResponse{}, apperror.NewInternalError("Falha ao criar o pedido.", err)
	}

	// 5. Notificação best-effort: falha de publicação nunca derruba um
	// checkout já persistido.
	event := queue.OrderPlacedEvent{
		OrderID:       created.ID,
		UserID:        created.UserID,
		Total:         created.Totals.Total,
		ItemCount:     len(created.Items),
		CustomerEmail: created.Customer.Email,
		DeliveryDate:  created.DeliveryDate,
		CreatedAt:     created.CreatedAt.Format(time.RFC3339),
	}
	if err := s.notifier.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Warn("Falha ao publicar evento de pedido criado.", map[string]interface{}{
			"order_id": created.ID,
			"error":    err.Error(),
		})
	}

	s.logger.Info("Checkout concluído com sucesso.", map[string]interface{}{
		"order_id": created.ID,
		"total":    created.Totals.Total,
	})

	return CheckoutResponse{
		Success: true,
		OrderID: created.ID,
		Order: domain.OrderSummary{
			ID:        created.ID,
			Total:     created.Totals.Total,
			Status:    created.Status,
			CreatedAt: created.CreatedAt,
			ItemCount: len(created.Items),
		},
	}, nil
}
