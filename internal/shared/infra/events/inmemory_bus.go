package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
)

// InMemoryEventBus implementa un bus de eventos para UN solo topic.
// Es el sustituto de Kafka en despliegues locales y tests.
type InMemoryEventBus struct {
	subscribers []chan interface{}
	mu          sync.RWMutex
	stop        chan struct{}
	once        sync.Once
	topic       string
}

// Verifica en tiempo de compilación que cumple la interfaz
var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan interface{}, 0),
		stop:        make(chan struct{}),
		topic:       topic,
	}
}

// Publish envía un evento a todos los suscriptores de este bus.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	select {
	case <-b.stop:
		return fmt.Errorf("event bus %q closed", b.topic)
	default:
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	payloadBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Entrega no bloqueante bajo el RLock: Close toma el lock de escritura,
	// así que nunca se envía sobre un canal ya cerrado. Un suscriptor con el
	// buffer lleno pierde el evento en vez de frenar al publicador.
	for _, subChan := range b.subscribers {
		select {
		case subChan <- payloadBytes:
		default:
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan interface{}, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// Close cierra los canales de los suscriptores. Idempotente.
func (b *InMemoryEventBus) Close() {
	b.once.Do(func() {
		close(b.stop)

		b.mu.Lock()
		defer b.mu.Unlock()
		for _, subChan := range b.subscribers {
			close(subChan)
		}
		b.subscribers = nil
	})
}
