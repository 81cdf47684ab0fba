package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fuwari/internal/domain"
	apperror "fuwari/internal/errors"
	"fuwari/internal/pkg/cache"
	"fuwari/internal/pkg/logger"
)

// Chave de cache para produtos individuais (estratégia Cache-Aside).
const productCacheKey = "product:%s"

// ProductRepository contém as conexões necessárias para acessar os dados do catálogo.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

const productColumns = `id, name, name_ja, description, description_ja, price,
       image_url, category, stock_quantity, is_active, created_at, updated_at`

// scanProduct mapeia uma linha da tabela products para a struct de domínio.
func scanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (domain.Product, error) {
	var p domain.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.NameJA, &p.Description, &p.DescriptionJA, &p.Price,
		&p.ImageURL, &p.Category, &p.StockQuantity, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.ID = uuid.NewString()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	const productSQL = `
        INSERT INTO products (id, name, name_ja, description, description_ja, price,
                              image_url, category, stock_quantity, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.DB.ExecContext(ctxTimeout, productSQL,
		product.ID,
		product.Name,
		product.NameJA,
		product.Description,
		product.DescriptionJA,
		product.Price,
		product.ImageURL,
		product.Category,
		product.StockQuantity,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao inserir produto", err)
	}

	r.logger.Info("Produto salvo com sucesso no repositório.", map[string]interface{}{"product_id": product.ID})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// --- 1. Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, seguimos para o DB.
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos e seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis. Seguindo para o DB.", map[string]interface{}{"key": key})
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	row := r.DB.QueryRowContext(ctxTimeout, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err = scanProduct(row)
	if err == sql.ErrNoRows {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto", err)
	}

	// --- 3. Estratégia Cache-Aside (WRITE) ---
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll lista produtos com paginação e filtros de categoria/atividade.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
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

	// Monta o WHERE dinamicamente conforme os filtros presentes.
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.ActiveOnly {
		query += ` AND is_active = TRUE`
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argPos)
		args = append(args, filter.Category)
		argPos++
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler produto", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar produtos", err)
	}

	return products, nil
}

// Update atualiza os campos editáveis de um produto e invalida o cache.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `
        UPDATE products
        SET name = $1, name_ja = $2, description = $3, description_ja = $4,
            price = $5, image_url = $6, category = $7, stock_quantity = $8,
            is_active = $9, updated_at = NOW()
        WHERE id = $10`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		product.Name, product.NameJA, product.Description, product.DescriptionJA,
		product.Price, product.ImageURL, product.Category, product.StockQuantity,
		product.IsActive, product.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return apperror.NewDBError("Falha ao atualizar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", product.ID))
	}

	// Invalidação do cache após a escrita.
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, product.ID))

	return nil
}

// Deactivate faz o soft delete: o produto sai da vitrine mas permanece
// referenciável pelos pedidos históricos.
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao desativar produto no DB.", err)
		return apperror.NewDBError("Falha ao desativar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, id))

	return nil
}
