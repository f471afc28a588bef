package sqlite

import (
	"context"
	"log/slog"
	"sync"

	"lotocontrol/internal/models"
)

// hub fans a change signal out to watchers. Each subscriber gets a
// one-slot channel, so a burst of mutations coalesces into a single
// pending signal.
type hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan struct{})}
}

func (h *hub) subscribe() (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return id, ch
}

func (h *hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *hub) notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending
		}
	}
}

// WatchClients emits the current client list immediately, then a fresh
// list after every mutation. The channel holds only the newest
// snapshot; a slow consumer skips intermediate states.
func (s *SQLiteStore) WatchClients(ctx context.Context) <-chan []models.Client {
	out := make(chan []models.Client, 1)
	id, signal := s.clientsHub.subscribe()

	go func() {
		defer close(out)
		defer s.clientsHub.unsubscribe(id)
		for {
			clients, err := s.ListClients(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("WatchClients: requery failed", "error", err)
			} else {
				// Replace any undelivered snapshot with the newest one.
				select {
				case <-out:
				default:
				}
				out <- clients
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return out
}

// WatchSettings emits the current settings snapshot immediately (nil
// while no draw is configured), then again after every settings write.
func (s *SQLiteStore) WatchSettings(ctx context.Context) <-chan *models.LotterySettings {
	out := make(chan *models.LotterySettings, 1)
	id, signal := s.settingsHub.subscribe()

	go func() {
		defer close(out)
		defer s.settingsHub.unsubscribe(id)
		for {
			settings, err := s.GetSettings(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("WatchSettings: requery failed", "error", err)
			} else {
				select {
				case <-out:
				default:
				}
				out <- settings
			}

			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return out
}
