package catalogservice_test

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
	"fuwari/internal/service/catalogservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TestCreateProduct_Success testa a criação bem-sucedida de um produto.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := catalogservice.NewService(mockRepo, mockLogger)

	product := domain.Product{
		Name:          "Mochi de Morango",
		NameJA:        "いちご大福",
		Price:         4.50,
		Category:      "mochi",
		StockQuantity: 20,
		IsActive:      true,
	}
	created := product
	created.ID = uuid.New().String()

	mockRepo.On("Save", mock.AnythingOfType("context.backgroundCtx"), product).
		Return(created, nil)

	result, err := svc.CreateProduct(context.Background(), product)

	assert.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
	assert.Equal(t, product.Name, result.Name)
	mockRepo.AssertExpectations(t)
}

// TestCreateProduct_Fail_Validation testa as rejeições de produto inválido.
func TestCreateProduct_Fail_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		product domain.Product
	}{
		{"sem nome", domain.Product{Price: 4.50, StockQuantity: 1}},
		{"preço zero", domain.Product{Name: "Dorayaki", Price: 0, StockQuantity: 1}},
		{"estoque negativo", domain.Product{Name: "Dorayaki", Price: 3.00, StockQuantity: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			mockLogger := logger.NewLogger("debug")

			svc := catalogservice.NewService(mockRepo, mockLogger)

			_, err := svc.CreateProduct(context.Background(), tc.product)

			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
			mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

// TestGetProductByID_NotFoundPassesThrough testa que o NotFoundError do
// repositório chega intacto ao chamador (o handler o mapeia para 404).
func TestGetProductByID_NotFoundPassesThrough(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := catalogservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	mockRepo.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), id).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado."))

	_, err := svc.GetProductByID(context.Background(), id)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestListProducts_RepoErrorBecomesInternal testa a tradução do erro de listagem.
func TestListProducts_RepoErrorBecomesInternal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := catalogservice.NewService(mockRepo, mockLogger)

	filter := domain.ProductFilter{ActiveOnly: true}
	mockRepo.On("FindAll", mock.AnythingOfType("context.backgroundCtx"), filter).
		Return(nil, errors.New("falha de conexão com o DB"))

	_, err := svc.ListProducts(context.Background(), filter)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdateProduct_Fail_MissingID testa a rejeição de atualização sem ID.
func TestUpdateProduct_Fail_MissingID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := catalogservice.NewService(mockRepo, mockLogger)

	err := svc.UpdateProduct(context.Background(), domain.Product{Name: "Dorayaki", Price: 3.00})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestDeleteProduct_SoftDelete testa que a exclusão delega para a desativação.
func TestDeleteProduct_SoftDelete(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := catalogservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	mockRepo.On("Deactivate", mock.AnythingOfType("context.backgroundCtx"), id).
		Return(nil)

	err := svc.DeleteProduct(context.Background(), id)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
