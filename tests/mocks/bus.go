package mocks

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
)

// DummyPublisher guarda los eventos publicados como JSON para inspección.
type DummyPublisher struct {
	Published []string
	mu        sync.Mutex
}

func (p *DummyPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, _ := json.Marshal(event)
	p.Published = append(p.Published, string(data))
	return nil
}

var _ sharedBus.EventPublisher = (*DummyPublisher)(nil)
