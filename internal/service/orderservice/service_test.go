package orderservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/service/orderservice"
)

// MockOrderRepository é uma implementação mock da interface OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// MockStockService é uma implementação mock da interface StockService
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) Rollback(ctx context.Context, lines []domain.StockLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

// TestGetOrder_OwnerCanSee testa que o dono do pedido consegue vê-lo.
func TestGetOrder_OwnerCanSee(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	userID := uuid.New().String()
	order := domain.Order{ID: uuid.New().String(), UserID: &userID, Status: domain.StatusPaid}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)

	result, err := svc.GetOrder(context.Background(), order.ID, userID, domain.RoleUser)

	assert.NoError(t, err)
	assert.Equal(t, order.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

// TestGetOrder_OtherUserForbidden testa que um usuário comum não vê pedido alheio.
func TestGetOrder_OtherUserForbidden(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	ownerID := uuid.New().String()
	order := domain.Order{ID: uuid.New().String(), UserID: &ownerID, Status: domain.StatusPaid}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)

	_, err := svc.GetOrder(context.Background(), order.ID, uuid.New().String(), domain.RoleUser)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestGetOrder_AdminCanSeeAny testa que um admin vê pedidos de qualquer usuário,
// incluindo pedidos de convidado (userId nulo).
func TestGetOrder_AdminCanSeeAny(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	order := domain.Order{ID: uuid.New().String(), UserID: nil, Status: domain.StatusPaid}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)

	result, err := svc.GetOrder(context.Background(), order.ID, uuid.New().String(), domain.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, order.ID, result.ID)
	mockRepo.AssertExpectations(t)
}

// TestListMyOrders_Fail_NoUser testa a rejeição sem identidade.
func TestListMyOrders_Fail_NoUser(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	_, err := svc.ListMyOrders(context.Background(), "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockRepo.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
}

// TestUpdateStatus_ValidTransition testa uma transição permitida (paid -> shipped).
func TestUpdateStatus_ValidTransition(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	order := domain.Order{ID: uuid.New().String(), Status: domain.StatusPaid}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)
	mockRepo.On("UpdateStatus", mock.AnythingOfType("context.backgroundCtx"), order.ID, domain.StatusPaid, domain.StatusShipped).
		Return(nil)

	result, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusShipped)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, result.Status)
	mockStock.AssertNotCalled(t, "Rollback", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestUpdateStatus_Fail_InvalidTransition testa uma transição proibida
// (delivered não transita para nada).
func TestUpdateStatus_Fail_InvalidTransition(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	order := domain.Order{ID: uuid.New().String(), Status: domain.StatusDelivered}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)

	_, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateStatus_Fail_UnknownStatus testa a rejeição de um status desconhecido.
func TestUpdateStatus_Fail_UnknownStatus(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	_, err := svc.UpdateStatus(context.Background(), uuid.New().String(), domain.OrderStatus("exploded"))

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestUpdateStatus_CancelReturnsStock testa que o cancelamento devolve as
// quantidades dos itens ao estoque.
func TestUpdateStatus_CancelReturnsStock(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	productID := uuid.New().String()
	order := domain.Order{
		ID:     uuid.New().String(),
		Status: domain.StatusPaid,
		Items: []domain.OrderItem{
			{ProductID: productID, Name: "Mochi de Morango", Quantity: 2},
		},
	}
	expectedLines := []domain.StockLine{
		{ProductID: productID, Quantity: 2, Name: "Mochi de Morango"},
	}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)
	mockRepo.On("UpdateStatus", mock.AnythingOfType("context.backgroundCtx"), order.ID, domain.StatusPaid, domain.StatusCancelled).
		Return(nil)
	mockStock.On("Rollback", mock.AnythingOfType("context.backgroundCtx"), expectedLines).
		Return(nil)

	result, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, result.Status)
	mockStock.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestUpdateStatus_CancelRollbackFailureIsLoggedOnly testa que a falha da
// devolução de estoque não desfaz o cancelamento.
func TestUpdateStatus_CancelRollbackFailureIsLoggedOnly(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	order := domain.Order{
		ID:     uuid.New().String(),
		Status: domain.StatusPaid,
		Items:  []domain.OrderItem{{ProductID: uuid.New().String(), Quantity: 1}},
	}

	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil)
	mockRepo.On("UpdateStatus", mock.AnythingOfType("context.backgroundCtx"), order.ID, domain.StatusPaid, domain.StatusCancelled).
		Return(nil)
	mockStock.On("Rollback", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("[]domain.StockLine")).
		Return(errors.New("falha de conexão com o DB"))

	result, err := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, result.Status)
	mockStock.AssertExpectations(t)
}

// TestUpdateStatus_DoubleCancelReturnsStockOnce testa dois cancelamentos do
// mesmo pedido em que ambos leem o status "paid": o UPDATE condicional do
// repositório aceita apenas o primeiro; o segundo recebe conflito e o estoque
// é devolvido uma única vez.
func TestUpdateStatus_DoubleCancelReturnsStockOnce(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockStock := new(MockStockService)
	mockLogger := logger.NewLogger("debug")

	svc := orderservice.NewService(mockRepo, mockStock, mockLogger)

	order := domain.Order{
		ID:     uuid.New().String(),
		Status: domain.StatusPaid,
		Items:  []domain.OrderItem{{ProductID: uuid.New().String(), Name: "Dorayaki", Quantity: 3}},
	}

	// Ambas as requisições observam o pedido ainda em "paid".
	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), order.ID).
		Return(order, nil).Twice()
	// Só a primeira encontra status = "paid" no banco; a segunda afeta zero
	// linhas e volta como conflito.
	mockRepo.On("UpdateStatus", mock.AnythingOfType("context.backgroundCtx"), order.ID, domain.StatusPaid, domain.StatusCancelled).
		Return(nil).Once()
	mockRepo.On("UpdateStatus", mock.AnythingOfType("context.backgroundCtx"), order.ID, domain.StatusPaid, domain.StatusCancelled).
		Return(apperror.NewConflictError("O pedido não está mais em 'paid'.")).Once()
	mockStock.On("Rollback", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("[]domain.StockLine")).
		Return(nil)

	first, firstErr := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)
	_, secondErr := svc.UpdateStatus(context.Background(), order.ID, domain.StatusCancelled)

	assert.NoError(t, firstErr)
	assert.Equal(t, domain.StatusCancelled, first.Status)
	assert.Error(t, secondErr)
	assert.IsType(t, &apperror.ConflictError{}, secondErr)
	mockStock.AssertNumberOfCalls(t, "Rollback", 1)
	mockRepo.AssertExpectations(t)
}
