package stockservice_test

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
	"fuwari/internal/service/stockservice"
)

// MockStockRepository é uma implementação mock da interface StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) GetQuantities(ctx context.Context, productIDs []string) (map[string]int, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockStockRepository) Decrement(ctx context.Context, lines []domain.StockLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockStockRepository) Rollback(ctx context.Context, lines []domain.StockLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

// TestCheckAvailability_AllAvailable testa um carrinho totalmente disponível.
func TestCheckAvailability_AllAvailable(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	idA := uuid.New().String()
	idB := uuid.New().String()
	lines := []domain.StockLine{
		{ProductID: idA, Quantity: 2, Name: "Mochi de Morango"},
		{ProductID: idB, Quantity: 1, Name: "Dorayaki"},
	}

	mockRepo.On("GetQuantities", mock.AnythingOfType("context.backgroundCtx"), []string{idA, idB}).
		Return(map[string]int{idA: 10, idB: 5}, nil)

	result, err := svc.CheckAvailability(context.Background(), lines)

	assert.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Empty(t, result.UnavailableItems)
	mockRepo.AssertExpectations(t)
}

// TestCheckAvailability_InsufficientStock testa uma linha com estoque abaixo do pedido.
func TestCheckAvailability_InsufficientStock(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	idA := uuid.New().String()
	idB := uuid.New().String()
	lines := []domain.StockLine{
		{ProductID: idA, Quantity: 2, Name: "Mochi de Morango"},
		{ProductID: idB, Quantity: 4, Name: "Dorayaki"},
	}

	mockRepo.On("GetQuantities", mock.AnythingOfType("context.backgroundCtx"), []string{idA, idB}).
		Return(map[string]int{idA: 10, idB: 3}, nil)

	result, err := svc.CheckAvailability(context.Background(), lines)

	assert.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Len(t, result.UnavailableItems, 1)
	assert.Equal(t, idB, result.UnavailableItems[0].ProductID)
	mockRepo.AssertExpectations(t)
}

// TestCheckAvailability_MissingProduct testa um produto que não existe mais.
// A ausência do ID no mapa de quantidades conta como indisponível.
func TestCheckAvailability_MissingProduct(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	idA := uuid.New().String()
	idGone := uuid.New().String()
	lines := []domain.StockLine{
		{ProductID: idA, Quantity: 1},
		{ProductID: idGone, Quantity: 1},
	}

	mockRepo.On("GetQuantities", mock.AnythingOfType("context.backgroundCtx"), []string{idA, idGone}).
		Return(map[string]int{idA: 10}, nil)

	result, err := svc.CheckAvailability(context.Background(), lines)

	assert.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Len(t, result.UnavailableItems, 1)
	assert.Equal(t, idGone, result.UnavailableItems[0].ProductID)
	mockRepo.AssertExpectations(t)
}

// TestCheckAvailability_RepoError testa a tradução do erro do repositório.
func TestCheckAvailability_RepoError(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 1}}

	mockRepo.On("GetQuantities", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("[]string")).
		Return(nil, errors.New("falha de conexão com o DB"))

	_, err := svc.CheckAvailability(context.Background(), lines)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestDecrement_Success testa o decremento bem-sucedido do lote.
func TestDecrement_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 3}}

	mockRepo.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), lines).
		Return(nil)

	err := svc.Decrement(context.Background(), lines)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestDecrement_Fail_EmptyBatch testa a rejeição de um lote vazio antes do repositório.
func TestDecrement_Fail_EmptyBatch(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	err := svc.Decrement(context.Background(), []domain.StockLine{})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Decrement", mock.Anything, mock.Anything)
}

// TestDecrement_Fail_NonPositiveQuantity testa a rejeição de quantidade inválida.
func TestDecrement_Fail_NonPositiveQuantity(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 0}}

	err := svc.Decrement(context.Background(), lines)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Decrement", mock.Anything, mock.Anything)
}

// TestDecrement_Fail_InsufficientStock testa que o ConflictError do repositório
// (estoque insuficiente detectado pelo UPDATE condicional) preserva o tipo.
func TestDecrement_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 99}}

	mockRepo.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), lines).
		Return(apperror.NewConflictError("Estoque insuficiente para concluir a operação."))

	err := svc.Decrement(context.Background(), lines)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "insuficiente")
	mockRepo.AssertExpectations(t)
}

// TestDecrement_Fail_InternalError testa a conversão de erro genérico do repositório.
func TestDecrement_Fail_InternalError(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 1}}

	mockRepo.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), lines).
		Return(errors.New("falha de conexão com o DB"))

	err := svc.Decrement(context.Background(), lines)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestRollback_Success testa a devolução bem-sucedida do lote.
func TestRollback_Success(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 3}}

	mockRepo.On("Rollback", mock.AnythingOfType("context.backgroundCtx"), lines).
		Return(nil)

	err := svc.Rollback(context.Background(), lines)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestRollback_Fail_InternalError testa a conversão de erro do repositório no rollback.
func TestRollback_Fail_InternalError(t *testing.T) {
	mockRepo := new(MockStockRepository)
	mockLogger := logger.NewLogger("debug")

	svc := stockservice.NewService(mockRepo, mockLogger)

	lines := []domain.StockLine{{ProductID: uuid.New().String(), Quantity: 3}}

	mockRepo.On("Rollback", mock.AnythingOfType("context.backgroundCtx"), lines).
		Return(errors.New("falha de conexão com o DB"))

	err := svc.Rollback(context.Background(), lines)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertExpectations(t)
}
