package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fuwari/internal/pkg/logger"
)

// Nomes de filas, exchange e routing keys usados pelas notificações da loja.
const (
	OrderPlacedQueue     = "fuwari.order_placed"
	ContactReceivedQueue = "fuwari.contact_received"

	OrderPlacedRoutingKey     = "order.placed"
	ContactReceivedRoutingKey = "contact.received"
)

// OrderPlacedEvent é o payload publicado após um checkout concluído.
type OrderPlacedEvent struct {
	OrderID       string  `json:"orderId"`
	UserID        *string `json:"userId"`
	Total         float64 `json:"total"`
	ItemCount     int     `json:"itemCount"`
	CustomerEmail string  `json:"customerEmail"`
	DeliveryDate  string  `json:"deliveryDate"`
	CreatedAt     string  `json:"createdAt"`
}

// ContactReceivedEvent é o payload publicado quando uma mensagem de contato chega.
type ContactReceivedEvent struct {
	MessageID string `json:"messageId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
}

// Notifier define o contrato de publicação que os Serviços consomem.
// A entrega em si (e-mail, painel, etc.) é responsabilidade dos consumidores
// da fila, fora deste processo.
type Notifier interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	PublishContactReceived(ctx context.Context, event ContactReceivedEvent) error
	Close() error
}

// NoopNotifier descarta todos os eventos. Usado quando o broker não está
// configurado: a loja funciona sem notificações.
type NoopNotifier struct{}

func (NoopNotifier) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	return nil
}

func (NoopNotifier) PublishContactReceived(ctx context.Context, event ContactReceivedEvent) error {
	return nil
}

func (NoopNotifier) Close() error { return nil }

// RabbitMQNotifier é a implementação concreta do Notifier sobre RabbitMQ.
type RabbitMQNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   logger.Logger
}

// NewRabbitMQNotifier conecta ao broker (com retry e backoff), declara o
// exchange topic durável e as filas de notificação, e retorna o Notifier.
func NewRabbitMQNotifier(url, exchange string, log logger.Logger) (*RabbitMQNotifier, error) {
	if exchange == "" {
		return nil, fmt.Errorf("nome do exchange não pode ser vazio")
	}

	var conn *amqp.Connection
	var err error

	// Retry de conexão: até 5 tentativas com backoff quadrático.
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		retryTime := time.Duration(i*i)*time.Second + time.Second
		log.Warn("Falha ao conectar ao RabbitMQ. Tentando novamente.", map[string]interface{}{
			"retry_in": retryTime.String(),
			"attempt":  i + 1,
		})
		time.Sleep(retryTime)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao RabbitMQ após retries: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	// Declara o exchange (topic permite roteamento por padrão de chave)
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar exchange %s: %w", exchange, err)
	}

	// Pré-declara as filas conhecidas e faz o bind com as routing keys.
	queues := []string{OrderPlacedQueue, ContactReceivedQueue}
	routingKeys := []string{OrderPlacedRoutingKey, ContactReceivedRoutingKey}

	for i, queueName := range queues {
		q, err := channel.QueueDeclare(
			queueName, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("falha ao declarar fila %s: %w", queueName, err)
		}

		if err := channel.QueueBind(q.Name, routingKeys[i], exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("falha ao fazer bind da fila %s: %w", queueName, err)
		}
	}

	log.Info("Conexão RabbitMQ estabelecida e filas declaradas.", map[string]interface{}{"exchange": exchange})

	return &RabbitMQNotifier{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   log,
	}, nil
}

// publish serializa a mensagem como JSON persistente e a envia ao exchange.
func (n *RabbitMQNotifier) publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("falha ao serializar mensagem: %w", err)
	}

	err = n.channel.PublishWithContext(
		ctx,
		n.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar em %s (%s): %w", n.exchange, routingKey, err)
	}

	n.logger.Debug("Mensagem publicada no broker.", map[string]interface{}{
		"exchange":    n.exchange,
		"routing_key": routingKey,
	})
	return nil
}

// PublishOrderPlaced publica o evento de pedido concluído.
func (n *RabbitMQNotifier) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	return n.publish(ctx, OrderPlacedRoutingKey, event)
}

// PublishContactReceived publica o evento de mensagem de contato recebida.
func (n *RabbitMQNotifier) PublishContactReceived(ctx context.Context, event ContactReceivedEvent) error {
	return n.publish(ctx, ContactReceivedRoutingKey, event)
}

// Close fecha o canal e a conexão com o broker.
func (n *RabbitMQNotifier) Close() error {
	if n.channel != nil {
		if err := n.channel.Close(); err != nil {
			return err
		}
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// Consume registra um consumidor com ack manual para a fila informada.
// Mensagens cujo handler retorna erro recebem Nack com requeue.
// Usado pelo worker de notificações (cmd/worker).
func (n *RabbitMQNotifier) Consume(queueName string, handler func([]byte) error) error {
	if err := n.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("falha ao configurar QoS: %w", err)
	}

	msgs, err := n.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao iniciar consumo da fila %s: %w", queueName, err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				n.logger.Error("Falha ao processar mensagem da fila. Reenfileirando.", err)
				msg.Nack(false, true)
			} else {
				msg.Ack(false)
			}
		}
	}()

	return nil
}
