package catalogservice

import (
	"context"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// ProductRepository define o contrato que o Serviço de Catálogo espera da
// camada de Persistência.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
	Deactivate(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio do catálogo de doces.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// validateProduct aplica as regras mínimas de um produto do catálogo.
func validateProduct(product domain.Product) error {
	if product.Name == "" {
		return apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Price <= 0 {
		return apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if product.StockQuantity < 0 {
		return apperror.NewValidationError("A quantidade em estoque não pode ser negativa.")
	}
	return nil
}

// ListProducts lista o catálogo com filtros e paginação.
// A vitrine pública sempre chama com ActiveOnly = true.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar produtos no repositório.", err)
		return nil, apperror.NewInternalError("Falha interna ao listar produtos.", err)
	}
	return products, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, apperror.NewValidationError("ID do produto é obrigatório.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// NotFoundError passa adiante intacto; o handler o mapeia para 404.
		return domain.Product{}, err
	}
	return product, nil
}

// CreateProduct cria um novo produto no catálogo (uso administrativo).
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"name": product.Name})

	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao criar produto no repositório.", err)
		return domain.Product{}, apperror.NewInternalError("Falha interna ao criar produto.", err)
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"product_id": created.ID})
	return created, nil
}

// UpdateProduct atualiza um produto existente (uso administrativo).
func (s *Service) UpdateProduct(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return apperror.NewValidationError("ID do produto é obrigatório.")
	}
	if err := validateProduct(product); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.logger.Info("Produto atualizado com sucesso.", map[string]interface{}{"product_id": product.ID})
	return nil
}

// DeleteProduct desativa um produto (soft delete: pedidos históricos seguem
// referenciando o registro).
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("ID do produto é obrigatório.")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Produto desativado com sucesso.", map[string]interface{}{"product_id": id})
	return nil
}
