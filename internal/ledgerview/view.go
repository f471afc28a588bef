// Package ledgerview maintains a live, derived view of the ledger: it
// joins the client list feed with the settings feed and republishes a
// recomputed snapshot whenever either one changes.
package ledgerview

import (
	"context"
	"sync"
	"time"

	"lotocontrol/internal/calculator"
	"lotocontrol/internal/models"
	"lotocontrol/internal/storage"
)

// Snapshot is one merged, fully derived state of the ledger.
type Snapshot struct {
	// Clients with balances, in store order (by name).
	Clients []calculator.ClientBalance `json:"clients"`

	// Summary aggregates, debtors first.
	Summary calculator.Summary `json:"summary"`

	// DrawDate and TicketPrice of the active draw. Zero values while no
	// draw is configured.
	DrawDate    time.Time `json:"drawDate"`
	TicketPrice float64   `json:"ticketPrice"`
}

// View subscribes to both store feeds and keeps the latest merged
// snapshot. It uses the most recent value of each feed, so it stays
// correct no matter which one emits first.
type View struct {
	store storage.Store

	mu    sync.Mutex
	cur   Snapshot
	ready bool
	subs  map[int]chan Snapshot
	next  int
}

// New creates a View over the given store. Call Run to start it.
func New(store storage.Store) *View {
	return &View{
		store: store,
		subs:  make(map[int]chan Snapshot),
	}
}

// Run consumes both feeds until ctx ends. Each store emission
// recomputes and publishes a snapshot built from the latest known
// value of the other feed; a not-yet-emitted settings feed counts as a
// zero ticket price.
func (v *View) Run(ctx context.Context) {
	clientsCh := v.store.WatchClients(ctx)
	settingsCh := v.store.WatchSettings(ctx)

	var clients []models.Client
	var settings *models.LotterySettings

	for clientsCh != nil || settingsCh != nil {
		select {
		case <-ctx.Done():
			return
		case cs, ok := <-clientsCh:
			if !ok {
				clientsCh = nil
				continue
			}
			clients = cs
		case st, ok := <-settingsCh:
			if !ok {
				settingsCh = nil
				continue
			}
			settings = st
		}
		v.publish(clients, settings)
	}
}

// Current returns the latest snapshot; ok is false before the first
// feed emission.
func (v *View) Current() (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.ready
}

// Subscribe registers a consumer of snapshot updates. The current
// snapshot, if any, is delivered immediately. Each subscriber holds
// only the newest undelivered snapshot; intermediate ones may be
// skipped. The subscription ends with ctx.
func (v *View) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = ch
	if v.ready {
		ch <- v.cur
	}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}()

	return ch
}

func (v *View) publish(clients []models.Client, settings *models.LotterySettings) {
	snap := Snapshot{
		Clients: calculator.WithBalances(clients, settings),
		Summary: calculator.Summarize(clients, settings),
	}
	if settings != nil {
		snap.DrawDate = settings.DrawDate
		snap.TicketPrice = settings.TicketPrice
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = snap
	v.ready = true
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
