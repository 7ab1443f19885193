package realtime

import (
	"sync"

	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// Event es el mensaje que viaja por el hub: el canal lógico al que se
// publicó y el payload listo para serializar.
type Event struct {
	Channel string `json:"channel"`
	Payload any    `json:"payload"`
}

// Hub es un pub/sub en memoria por canal lógico. Los publishers nunca se
// bloquean: si el buffer de un suscriptor está lleno, el evento se descarta
// para ese suscriptor y se registra un warning.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
	log  *logger.Logger

	bufferSize int
}

// NewHub construye el hub. bufferSize es el tamaño del buffer de cada
// suscripción; con <= 0 se usa 16.
func NewHub(log *logger.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subs:       make(map[string]map[chan Event]struct{}),
		log:        log,
		bufferSize: bufferSize,
	}
}

// Subscribe registra un suscriptor en uno o más canales lógicos y devuelve
// el canal de entrega. Llamar a Unsubscribe con el mismo canal al terminar.
func (h *Hub) Subscribe(channels ...string) chan Event {
	ch := make(chan Event, h.bufferSize)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, name := range channels {
		if h.subs[name] == nil {
			h.subs[name] = make(map[chan Event]struct{})
		}
		h.subs[name][ch] = struct{}{}
	}
	return ch
}

// Unsubscribe retira el suscriptor de todos los canales y cierra su canal
// de entrega.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var found bool
	for name, set := range h.subs {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			found = true
			if len(set) == 0 {
				delete(h.subs, name)
			}
		}
	}
	if found {
		close(ch)
	}
}

// Publish entrega el evento a todos los suscriptores del canal lógico.
// Envío no bloqueante: un suscriptor lento pierde eventos, nunca frena al
// publisher.
func (h *Hub) Publish(channel string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[channel] {
		select {
		case ch <- Event{Channel: channel, Payload: payload}:
		default:
			if h.log != nil {
				h.log.Warn().Str("channel", channel).Msg("suscriptor lento, evento descartado")
			}
		}
	}
}

// SubscriberCount devuelve cuántos suscriptores tiene un canal lógico.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}
