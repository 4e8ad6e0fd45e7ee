package mocks

import (
	"context"
	"encoding/json"
	"sync"

	sharedCache "github.com/posalpro/posalpro/shared/platform/cache"
)

// DummyCache simula una cache en memoria serializando a JSON, igual que los
// adaptadores reales. Sirve para cualquier entidad.
type DummyCache struct {
	store map[string][]byte
	mu    sync.Mutex
}

// NewDummyCache crea un DummyCache inicializado
func NewDummyCache() *DummyCache {
	return &DummyCache{
		store: make(map[string][]byte),
	}
}

// SetForTest precarga una clave sin pasar por la serialización asíncrona.
func (c *DummyCache) SetForTest(key string, val interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := json.Marshal(val)
	c.store[key] = data
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.store[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// Has indica si una clave está presente (solo para asserts de tests).
func (c *DummyCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

var _ sharedCache.Cache = (*DummyCache)(nil)
