package stockservice

import (
	"context"
	"errors"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada
// de Persistência.
type StockRepository interface {
	GetQuantities(ctx context.Context, productIDs []string) (map[string]int, error)
	Decrement(ctx context.Context, lines []domain.StockLine) error
	Rollback(ctx context.Context, lines []domain.StockLine) error
}

// Service implementa o verificador de disponibilidade e o mutador de estoque.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CheckAvailability verifica, sem efeitos colaterais, quais linhas do carrinho
// não podem ser atendidas. Uma linha é indisponível quando a quantidade pedida
// excede o estoque atual ou quando o produto não existe mais.
// Entrada vazia é erro do chamador, rejeitado antes de chegar aqui.
func (s *Service) CheckAvailability(ctx context.Context, lines []domain.StockLine) (domain.AvailabilityResult, error) {
	s.logger.Debug("Iniciando checagem de disponibilidade.", map[string]interface{}{"line_count": len(lines)})

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	quantities, err := s.repo.GetQuantities(ctx, ids)
	if err != nil {
		s.logger.Error("Falha ao buscar quantidades para checagem de disponibilidade.", err)
		return domain.AvailabilityResult{}, apperror.NewInternalError("Falha interna ao verificar estoque.", err)
	}

	result := domain.AvailabilityResult{
		IsAvailable:      true,
		UnavailableItems: []domain.StockLine{},
	}

	for _, line := range lines {
		available, exists := quantities[line.ProductID]
		if !exists || line.Quantity > available {
			result.IsAvailable = false
			result.UnavailableItems = append(result.UnavailableItems, line)
		}
	}

	s.logger.Debug("Checagem de disponibilidade concluída.", map[string]interface{}{
		"is_available":      result.IsAvailable,
		"unavailable_count": len(result.UnavailableItems),
	})
	return result, nil
}

// Decrement aplica o decremento atômico do lote. O resultado é grosseiro:
// sucesso ou falha do lote inteiro, sem relatório por linha.
func (s *Service) Decrement(ctx context.Context, lines []domain.StockLine) error {
	if len(lines) == 0 {
		return apperror.NewValidationError("O lote de decremento não pode ser vazio.")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperror.NewValidationError("Quantidade de item deve ser positiva.")
		}
	}

	if err := s.repo.Decrement(ctx, lines); err != nil {
		s.logger.Error("Falha ao decrementar estoque no repositório.", err)
		var conflictErr *apperror.ConflictError
		if errors.As(err, &conflictErr) {
			return err // Estoque insuficiente: preserva o tipo para o chamador
		}
		return apperror.NewInternalError("Falha interna ao decrementar estoque.", err)
	}

	s.logger.Info("Estoque decrementado com sucesso.", map[string]interface{}{"line_count": len(lines)})
	return nil
}

// Rollback devolve as quantidades de um decremento anterior (ação compensatória).
func (s *Service) Rollback(ctx context.Context, lines []domain.StockLine) error {
	if len(lines) == 0 {
		return apperror.NewValidationError("O lote de rollback não pode ser vazio.")
	}

	if err := s.repo.Rollback(ctx, lines); err != nil {
		s.logger.Error("Falha ao devolver estoque no repositório.", err)
		return apperror.NewInternalError("Falha interna ao devolver estoque.", err)
	}

	s.logger.Info("Estoque devolvido com sucesso.", map[string]interface{}{"line_count": len(lines)})
	return nil
}
