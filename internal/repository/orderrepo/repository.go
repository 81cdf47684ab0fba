package orderrepo

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

// OrderRepository persiste pedidos e seus itens. Independente do estoque:
// a compensação em caso de falha aqui é responsabilidade do orquestrador
// de checkout, não deste repositório.
type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório de Pedidos.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere o pedido e seus itens em uma única transação. O preço unitário
// de cada item é congelado a partir da tabela de produtos no momento da
// gravação (não confiamos no preço vindo do cliente).
func (r *OrderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	r.logger.Debug("Iniciando Save de pedido no repositório.", map[string]interface{}{
		"payment_intent_id": order.StripePaymentIntentID,
		"item_count":        len(order.Items),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de pedido.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	const orderSQL = `
        INSERT INTO orders (id, user_id, subtotal, tax, shipping, total,
                            customer_name, customer_email, customer_phone,
                            shipping_address, status, stripe_payment_intent_id,
                            delivery_date, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	shippingAddress := order.ShippingAddress
	if shippingAddress == "" {
		shippingAddress = fmt.Sprintf("%s, %s %s", order.Customer.Address, order.Customer.City, order.Customer.PostalCode)
	}

	_, err = tx.ExecContext(ctxTimeout, orderSQL,
		order.ID,
		order.UserID,
		order.Totals.Subtotal,
		order.Totals.Tax,
		order.Totals.Shipping,
		order.Totals.Total,
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		shippingAddress,
		order.Status,
		order.StripePaymentIntentID,
		order.DeliveryDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir pedido no DB.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao inserir pedido", err)
	}

	// O preço unitário vem da tabela de produtos, dentro da mesma transação.
	const itemSQL = `
        INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price)
        SELECT $1, $2, $3, $4, $5, price FROM products WHERE id = $3`

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.NewString()
		item.OrderID = order.ID

		result, err := tx.ExecContext(ctxTimeout, itemSQL,
			item.ID, item.OrderID, item.ProductID, item.Name, item.Quantity,
		)
		if err != nil {
			r.logger.Error("Falha ao inserir item do pedido no DB.", err)
			return domain.Order{}, apperror.NewDBError("Falha ao inserir item do pedido", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return domain.Order{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected != 1 {
			return domain.Order{}, apperror.NewDBError("Produto do item não existe mais",
				fmt.Errorf("product %s not found", item.ProductID))
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de pedido.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	order.ShippingAddress = shippingAddress
	r.logger.Info("Pedido salvo com sucesso no repositório.", map[string]interface{}{
		"order_id":   order.ID,
		"item_count": len(order.Items),
	})
	return order, nil
}

const orderColumns = `id, user_id, subtotal, tax, shipping, total,
       customer_name, customer_email, customer_phone, shipping_address,
       status, stripe_payment_intent_id, delivery_date, created_at, updated_at`

// scanOrder mapeia uma linha da tabela orders para a struct de domínio.
func scanOrder(scanner interface {
	Scan(dest ...interface{}) error
}) (domain.Order, error) {
	var o domain.Order
	err := scanner.Scan(
		&o.ID, &o.UserID,
		&o.Totals.Subtotal, &o.Totals.Tax, &o.Totals.Shipping, &o.Totals.Total,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.ShippingAddress,
		&o.Status, &o.StripePaymentIntentID, &o.DeliveryDate,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// FindByID busca um pedido pelo ID, incluindo seus itens.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return domain.Order{}, apperror.NewNotFoundError(fmt.Sprintf("Pedido %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar pedido no DB.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao buscar pedido", err)
	}

	items, err := r.findItems(ctxTimeout, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// findItems carrega os itens de um pedido.
func (r *OrderRepository) findItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const itemsSQL = `
        SELECT id, order_id, product_id, product_name, quantity, unit_price
        FROM order_items WHERE order_id = $1`

	rows, err := r.DB.QueryContext(ctx, itemsSQL, orderID)
	if err != nil {
		r.logger.Error("Falha ao buscar itens do pedido no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar itens do pedido", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, apperror.NewDBError("Falha ao ler item do pedido", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar itens do pedido", err)
	}
	return items, nil
}

// FindByUser lista o histórico de pedidos de um usuário, mais recentes primeiro.
func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		r.logger.Error("Falha ao buscar histórico de pedidos no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar histórico de pedidos", err)
	}
	defer rows.Close()

	return r.collectOrders(ctxTimeout, rows)
}

// FindAll lista pedidos com paginação e filtro opcional de status (admin).
func (r *OrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var rows *sql.Rows
	var err error
	if filter.Status != "" {
		rows, err = r.DB.QueryContext(ctxTimeout,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			filter.Status, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctxTimeout,
			`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		r.logger.Error("Falha ao listar pedidos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar pedidos", err)
	}
	defer rows.Close()

	return r.collectOrders(ctxTimeout, rows)
}

// collectOrders materializa as linhas e carrega os itens de cada pedido.
func (r *OrderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler pedido", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar pedidos", err)
	}

	for i := range orders {
		items, err := r.findItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// UpdateStatus muda o status de um pedido, condicionado ao status observado
// pela camada de Serviço. O mesmo UPDATE condicional usado no decremento de
// estoque: entre duas mutações concorrentes sobre o mesmo pedido, exatamente
// uma encontra o status esperado; a outra afeta zero linhas e recebe conflito.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		r.logger.Error("Falha ao atualizar status do pedido no DB.", err)
		return apperror.NewDBError("Falha ao atualizar status do pedido", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		// Pedido inexistente ou já mutado por outra requisição entre a
		// leitura e este UPDATE.
		r.logger.Warn("Atualização de status rejeitada: status atual divergente.", map[string]interface{}{
			"order_id": id,
			"from":     from,
			"to":       to,
		})
		return apperror.NewConflictError(fmt.Sprintf("O pedido %s não está mais em '%s'.", id, from))
	}

	return nil
}
