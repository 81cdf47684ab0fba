package main

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fuwari/internal/pkg/logger"
	"fuwari/internal/pkg/queue"
)

// TestHandleOrderPlaced_ValidEvent testa o consumo de um evento de pedido bem
// formado (retorno nil confirma a mensagem na fila).
func TestHandleOrderPlaced_ValidEvent(t *testing.T) {
	log := logger.NewLogger("debug")

	body, err := json.Marshal(queue.OrderPlacedEvent{
		OrderID:       uuid.New().String(),
		Total:         38.00,
		ItemCount:     2,
		CustomerEmail: "hanako@example.com",
	})
	assert.NoError(t, err)

	assert.NoError(t, handleOrderPlaced(log)(body))
}

// TestHandleOrderPlaced_MalformedPayloadIsDiscarded testa que um payload
// inválido é descartado em vez de devolvido à fila: retornar erro causaria
// Nack com requeue e um loop infinito de reentrega da mesma mensagem.
func TestHandleOrderPlaced_MalformedPayloadIsDiscarded(t *testing.T) {
	log := logger.NewLogger("debug")

	assert.NoError(t, handleOrderPlaced(log)([]byte("{nope")))
}

// TestHandleContactReceived_ValidEvent testa o consumo de um evento de
// mensagem de contato bem formado.
func TestHandleContactReceived_ValidEvent(t *testing.T) {
	log := logger.NewLogger("debug")

	body, err := json.Marshal(queue.ContactReceivedEvent{
		MessageID: uuid.New().String(),
		Name:      "Hanako",
		Email:     "hanako@example.com",
		Subject:   "Encomenda especial",
	})
	assert.NoError(t, err)

	assert.NoError(t, handleContactReceived(log)(body))
}

// TestHandleContactReceived_MalformedPayloadIsDiscarded testa o descarte de
// payload inválido na fila de contato.
func TestHandleContactReceived_MalformedPayloadIsDiscarded(t *testing.T) {
	log := logger.NewLogger("debug")

	assert.NoError(t, handleContactReceived(log)([]byte("not json")))
}
