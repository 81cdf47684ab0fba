package stockrepo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/logger"
)

// StockRepository concentra as leituras e mutações de estoque dos produtos.
// O decremento é atômico: checagem e mutação acontecem na mesma instrução SQL,
// dentro de uma única transação, para que dois checkouts concorrentes sobre o
// mesmo produto nunca levem o estoque a ficar negativo.
type StockRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// GetQuantities busca as quantidades em estoque dos produtos informados.
// Produtos inexistentes simplesmente não aparecem no mapa de retorno; o
// Serviço interpreta a ausência como indisponibilidade. Somente leitura.
func (r *StockRepository) GetQuantities(ctx context.Context, productIDs []string) (map[string]int, error) {
	if len(productIDs) == 0 {
		return map[string]int{}, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// Monta a lista de placeholders ($1,$2,...) para a cláusula IN.
	placeholders := make([]string, 0, len(productIDs))
	args := make([]interface{}, 0, len(productIDs))
	for i, id := range productIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	query := `SELECT id, stock_quantity FROM products WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao buscar quantidades de estoque no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar quantidades de estoque", err)
	}
	defer rows.Close()

	quantities := make(map[string]int, len(productIDs))
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, apperror.NewDBError("Falha ao ler quantidade de estoque", err)
		}
		quantities[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar quantidades de estoque", err)
	}

	return quantities, nil
}

// inLockOrder devolve uma cópia das linhas ordenada por ProductID. Os UPDATEs
// dentro da transação adquirem os row locks nessa ordem canônica: duas
// transações concorrentes sobre os mesmos produtos travam as linhas na mesma
// sequência, o que elimina o deadlock entre carrinhos com ordem invertida.
func inLockOrder(lines []domain.StockLine) []domain.StockLine {
	ordered := make([]domain.StockLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ProductID < ordered[j].ProductID
	})
	return ordered
}

// Decrement subtrai as quantidades das linhas do carrinho em uma única
// transação. O UPDATE é condicionado a stock_quantity >= quantidade pedida:
// se qualquer linha não puder ser atendida, nenhuma linha é aplicada (a
// transação inteira é desfeita). O resultado é propositalmente grosseiro
// (sucesso/falha do lote), sem relatório por linha.
func (r *StockRepository) Decrement(ctx context.Context, lines []domain.StockLine) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de decremento de estoque.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const decrementSQL = `
        UPDATE products
        SET stock_quantity = stock_quantity - $2, updated_at = NOW()
        WHERE id = $1 AND stock_quantity >= $2`

	for _, line := range inLockOrder(lines) {
		result, err := tx.ExecContext(ctxTimeout, decrementSQL, line.ProductID, line.Quantity)
		if err != nil {
			r.logger.Error("Falha ao decrementar estoque.", err)
			return apperror.NewDBError("Falha ao decrementar estoque", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected != 1 {
			// Produto inexistente ou estoque insuficiente: falha o lote inteiro.
			r.logger.Warn("Decremento de estoque rejeitado. Lote desfeito.", map[string]interface{}{
				"product_id": line.ProductID,
				"quantity":   line.Quantity,
			})
			return apperror.NewConflictError("Estoque insuficiente para atender o pedido.")
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar decremento de estoque.", err)
		return apperror.NewDBError("Falha ao commitar transação", err)
	}

	return nil
}

// Rollback devolve as quantidades previamente decrementadas. É a ação
// compensatória exata do Decrement: deve receber as mesmas linhas usadas no
// decremento para que rollback(decrement(lines)) restaure o estado anterior.
func (r *StockRepository) Rollback(ctx context.Context, lines []domain.StockLine) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de rollback de estoque.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const rollbackSQL = `
        UPDATE products
        SET stock_quantity = stock_quantity + $2, updated_at = NOW()
        WHERE id = $1`

	for _, line := range inLockOrder(lines) {
		if _, err := tx.ExecContext(ctxTimeout, rollbackSQL, line.ProductID, line.Quantity); err != nil {
			r.logger.Error("Falha ao devolver estoque.", err)
			return apperror.NewDBError("Falha ao devolver estoque", err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar rollback de estoque.", err)
		return apperror.NewDBError("Falha ao commitar transação", err)
	}

	return nil
}
