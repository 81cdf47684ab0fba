package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"fuwari/internal/api/admin"
	"fuwari/internal/api/checkout"
	"fuwari/internal/api/contact"
	"fuwari/internal/api/order"
	"fuwari/internal/api/product"
	"fuwari/internal/api/settings"
	"fuwari/internal/api/user"
	"fuwari/internal/domain"
	"fuwari/internal/pkg/cache"
	"fuwari/internal/pkg/middleware"
)

// Handlers agrupa todos os Handlers que o roteador precisa receber por
// injeção de dependências.
type Handlers struct {
	Product  *product.Handler
	Checkout *checkout.Handler
	User     *user.Handler
	Order    *order.Handler
	Contact  *contact.Handler
	Settings *settings.Handler
	Admin    *admin.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
// Usamos o ServeMux padrão do net/http: as rotas são poucas e estáveis, e a
// extração de ID por segmento fica nos Handlers.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, maintenance middleware.MaintenanceChecker,
	cacheClient cache.Client, rateLimit int, rateWindow time.Duration) http.Handler {

	mux := http.NewServeMux()

	// Cadeias de middleware. A loja pública respeita o modo manutenção; o
	// login e o back-office ficam fora do gate para o admin conseguir entrar
	// e desligar a manutenção.
	gate := middleware.NewMaintenanceMiddleware(maintenance)
	optionalAuth := middleware.NewOptionalAuthMiddleware(tokenSvc)
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Health Check e Documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "docs/swagger.json")
	})
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 2. Vitrine Pública (v1) ---
	mux.HandleFunc("/v1/products", gate(h.Product.ListProductsHandler))
	mux.HandleFunc("/v1/products/", gate(h.Product.GetProductByIDHandler))
	mux.HandleFunc("/v1/settings/banner", h.Settings.GetBannerHandler)
	mux.HandleFunc("/v1/contact", gate(h.Contact.SubmitHandler))

	// --- 3. Checkout (v1) ---
	// Autenticação opcional: convidados compram sem token.
	mux.HandleFunc("/v1/checkout/check-stock", gate(optionalAuth(h.Checkout.CheckStockHandler)))
	mux.HandleFunc("/v1/checkout/confirm-payment", gate(optionalAuth(h.Checkout.ConfirmPaymentHandler)))

	// --- 4. Usuários (v1) ---
	mux.HandleFunc("/v1/users/register", h.User.RegisterHandler)
	mux.HandleFunc("/v1/users/login", h.User.LoginHandler)
	mux.HandleFunc("/v1/users/me", auth(h.User.ProfileHandler))

	// --- 5. Pedidos do Usuário (v1) ---
	mux.HandleFunc("/v1/orders", auth(h.Order.ListMyOrdersHandler))
	mux.HandleFunc("/v1/orders/", auth(h.Order.GetOrderHandler))

	// --- 6. Back-office (v1, somente admin) ---
	mux.HandleFunc("/v1/admin/products", auth(adminOnly(h.Admin.ProductsHandler)))
	mux.HandleFunc("/v1/admin/products/", auth(adminOnly(h.Admin.ProductByIDHandler)))
	mux.HandleFunc("/v1/admin/orders", auth(adminOnly(h.Admin.OrdersHandler)))
	mux.HandleFunc("/v1/admin/orders/", auth(adminOnly(h.Admin.OrderStatusHandler)))
	mux.HandleFunc("/v1/admin/users", auth(adminOnly(h.Admin.UsersHandler)))
	mux.HandleFunc("/v1/admin/contact-messages", auth(adminOnly(h.Admin.ContactMessagesHandler)))
	mux.HandleFunc("/v1/admin/contact-messages/", auth(adminOnly(h.Admin.ContactMarkReadHandler)))
	mux.HandleFunc("/v1/admin/settings/", auth(adminOnly(h.Admin.SettingsHandler)))

	// --- 7. Middlewares Globais ---
	// O rate limiter (contador no Redis por IP) envolve todas as rotas.
	return middleware.RateLimiter(cacheClient, rateLimit, rateWindow)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
