package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"fuwari/config"
	"fuwari/internal/pkg/cache"
	"fuwari/internal/pkg/database"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/queue"
	"fuwari/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"fuwari/internal/api/admin"
	"fuwari/internal/api/checkout"
	"fuwari/internal/api/contact"
	"fuwari/internal/api/order"
	"fuwari/internal/api/product"
	"fuwari/internal/api/router"
	"fuwari/internal/api/settings"
	"fuwari/internal/api/user"
	"fuwari/internal/repository/contactrepo"
	"fuwari/internal/repository/orderrepo"
	"fuwari/internal/repository/productrepo"
	"fuwari/internal/repository/settingsrepo"
	"fuwari/internal/repository/stockrepo"
	"fuwari/internal/repository/userrepo"
	"fuwari/internal/service/catalogservice"
	"fuwari/internal/service/checkoutservice"
	"fuwari/internal/service/contactservice"
	"fuwari/internal/service/orderservice"
	"fuwari/internal/service/settingsservice"
	"fuwari/internal/service/stockservice"
	"fuwari/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando backend da Fuwari Sweet Shop...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não houver, seguimos com as variáveis do ambiente do sistema (Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Mensageria (RabbitMQ)
	// O broker é opcional: sem ele a loja funciona, só perde as notificações.
	var notifier queue.Notifier
	rabbitNotifier, err := queue.NewRabbitMQNotifier(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
	if err != nil {
		log.Warn("RabbitMQ indisponível. Notificações desabilitadas.", map[string]interface{}{
			"error": err.Error(),
		})
		notifier = queue.NoopNotifier{}
	} else {
		notifier = rabbitNotifier
		defer rabbitNotifier.Close()
	}

	// D. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.ProductCacheTTL, log)
	stockRepo := stockrepo.NewStockRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	settingsRepo := settingsrepo.NewSettingsRepository(db, cfg.DBTimeout, log)
	contactRepo := contactrepo.NewContactRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	catalogSvc := catalogservice.NewService(productRepo, log)
	stockSvc := stockservice.NewService(stockRepo, log)
	checkoutSvc := checkoutservice.NewService(stockSvc, orderRepo, notifier, log)
	orderSvc := orderservice.NewService(orderRepo, stockSvc, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	settingsSvc := settingsservice.NewService(settingsRepo, cacheClient, cfg.SettingsCacheTTL, log)
	contactSvc := contactservice.NewService(contactRepo, notifier, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	handlers := router.Handlers{
		Product:  product.NewHandler(catalogSvc, log),
		Checkout: checkout.NewHandler(checkoutSvc, log),
		User:     user.NewHandler(userSvc, log),
		Order:    order.NewHandler(orderSvc, log),
		Contact:  contact.NewHandler(contactSvc, log),
		Settings: settings.NewHandler(settingsSvc, log),
		Admin:    admin.NewHandler(catalogSvc, orderSvc, userSvc, contactSvc, settingsSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, tokenSvc, settingsSvc, cacheClient,
		cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor Fuwari ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
