package main

import (
	"encoding/json"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fuwari/config"
	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/queue"
)

// handleOrderPlaced processa um evento de pedido concluído. A entrega em si
// (e-mail, painel) acontece fora deste processo; o worker confirma o consumo
// e deixa o rastro estruturado no log.
// Payload inválido é descartado (retorno nil): devolvê-lo à fila só geraria
// um loop de reentrega da mesma mensagem envenenada.
func handleOrderPlaced(log logger.Logger) func([]byte) error {
	return func(body []byte) error {
		var event queue.OrderPlacedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("Payload inválido na fila de pedidos. Mensagem descartada.", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}

		log.Info("Notificação de pedido concluído recebida.", map[string]interface{}{
			"order_id":   event.OrderID,
			"total":      event.Total,
			"item_count": event.ItemCount,
			"email":      event.CustomerEmail,
		})
		return nil
	}
}

// handleContactReceived processa um evento de mensagem de contato recebida.
func handleContactReceived(log logger.Logger) func([]byte) error {
	return func(body []byte) error {
		var event queue.ContactReceivedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("Payload inválido na fila de contato. Mensagem descartada.", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}

		log.Info("Notificação de mensagem de contato recebida.", map[string]interface{}{
			"message_id": event.MessageID,
			"email":      event.Email,
			"subject":    event.Subject,
		})
		return nil
	}
}

func main() {
	stdlog.Println("⚡ Inicializando worker de notificações da Fuwari...")

	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)

	// Diferente da API, o worker não tem utilidade sem o broker: falha na
	// conexão encerra o processo.
	notifier, err := queue.NewRabbitMQNotifier(cfg.RabbitMQURL, cfg.RabbitMQExchange, log)
	if err != nil {
		log.Fatal("Falha ao conectar ao RabbitMQ.", err)
	}
	defer notifier.Close()

	if err := notifier.Consume(queue.OrderPlacedQueue, handleOrderPlaced(log)); err != nil {
		log.Fatal("Falha ao iniciar consumo da fila de pedidos.", err)
	}
	if err := notifier.Consume(queue.ContactReceivedQueue, handleContactReceived(log)); err != nil {
		log.Fatal("Falha ao iniciar consumo da fila de contato.", err)
	}

	log.Info("Worker de notificações ouvindo as filas.", map[string]interface{}{
		"queues": []string{queue.OrderPlacedQueue, queue.ContactReceivedQueue},
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando worker...", nil)
}
