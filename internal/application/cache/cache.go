// Package cache implementa un cache en memoria con TTL para agregados de
// lectura. Es un componente explícito con reloj inyectable e invalidación
// explícita: las mutaciones de stock invalidan de forma determinista cualquier
// lectura cacheada del producto afectado.
package cache

import (
	"strings"
	"sync"
	"time"
)

// StockKey clave de cache para la lectura de stock de un producto.
func StockKey(companyID, productID string) string {
	return "stock:" + companyID + ":" + productID
}

// Clock abstrae time.Now para que los tests controlen la expiración.
type Clock func() time.Time

type item struct {
	value     any
	expiresAt time.Time
}

// Cache cache en memoria con TTL por entrada. Seguro para uso concurrente.
// La expiración es perezosa: se verifica en Get, sin timers de fondo.
type Cache struct {
	mu         sync.RWMutex
	items      map[string]item
	defaultTTL time.Duration
	clock      Clock
}

// New construye el cache. Si clock es nil se usa time.Now.
func New(defaultTTL time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		items:      make(map[string]item),
		defaultTTL: defaultTTL,
		clock:      clock,
	}
}

// Set guarda un valor con el TTL por defecto.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL guarda un valor con un TTL específico.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiresAt: c.clock().Add(ttl)}
}

// Get devuelve el valor si existe y no expiró.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock().After(it.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return it.value, true
}

// Delete invalida una entrada.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeletePrefix invalida todas las entradas cuya clave empieza con prefix.
func (c *Cache) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

// Clear vacía el cache completo.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}
