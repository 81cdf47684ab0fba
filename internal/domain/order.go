package domain

import "time"

// StockLine é uma linha de carrinho reduzida aos campos necessários para a
// matemática de estoque. Efêmera, construída por requisição.
type StockLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
}

// AvailabilityResult é a saída de uma checagem de disponibilidade.
// Nunca é persistido.
type AvailabilityResult struct {
	IsAvailable      bool        `json:"isAvailable"`
	UnavailableItems []StockLine `json:"unavailableItems"`
}

// OrderStatus é um tipo string para o estado do pedido.
type OrderStatus string

// Estados possíveis de um pedido. A criação no checkout ocorre sempre em
// StatusPaid (a confirmação de pagamento já aconteceu no gateway).
const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderTotals agrupa os valores monetários de um pedido.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// CustomerInfo são os dados do comprador informados no checkout.
type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// OrderItem é uma linha persistida do pedido. O preço unitário é congelado
// a partir da tabela de produtos no momento da gravação.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Order representa um pedido concluído no checkout. O ID é a identidade;
// imutável após a criação, exceto pelo Status (mutado apenas por admin).
type Order struct {
	ID                    string       `json:"id"`
	UserID                *string      `json:"userId"` // nil para checkout de convidado
	Items                 []OrderItem  `json:"items"`
	Totals                OrderTotals  `json:"totals"`
	Customer              CustomerInfo `json:"customer"`
	ShippingAddress       string       `json:"shippingAddress"`
	Status                OrderStatus  `json:"status"`
	StripePaymentIntentID string       `json:"stripePaymentIntentId"`
	DeliveryDate          string       `json:"deliveryDate"`
	CreatedAt             time.Time    `json:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

// CheckoutRequest é o payload de entrada do POST /v1/checkout/confirm-payment.
type CheckoutRequest struct {
	PaymentIntentID string       `json:"paymentIntentId"`
	CartItems       []StockLine  `json:"cartItems"`
	CustomerInfo    CustomerInfo `json:"customerInfo"`
	Totals          OrderTotals  `json:"totals"`
	DeliveryDate    string       `json:"deliveryDate"`
}

// OrderSummary é o recorte do pedido devolvido ao cliente após o checkout.
type OrderSummary struct {
	ID        string      `json:"id"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	ItemCount int         `json:"itemCount"`
}

// OrderFilter define os parâmetros de listagem administrativa de pedidos.
type OrderFilter struct {
	Page   int
	Limit  int
	Status OrderStatus
}
