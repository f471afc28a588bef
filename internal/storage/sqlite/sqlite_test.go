package sqlite

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lotocontrol/internal/models"
	"lotocontrol/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "lotocontrol-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreClients(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("InsertClient generates ID", func(t *testing.T) {
		client := &models.Client{Name: "Ana", TicketsDelivered: 10}
		if err := store.InsertClient(ctx, client); err != nil {
			t.Fatalf("InsertClient failed: %v", err)
		}
		if client.ID == "" {
			t.Error("Expected client ID to be generated")
		}
	})

	t.Run("GetClient retrieves the full record", func(t *testing.T) {
		original := &models.Client{
			Name:             "Luis",
			TicketsDelivered: 5,
			TicketsReturned:  2,
			AmountPaid:       4.5,
			PreviousDebt:     3.0,
		}
		if err := store.InsertClient(ctx, original); err != nil {
			t.Fatalf("InsertClient failed: %v", err)
		}

		retrieved, err := store.GetClient(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if *retrieved != *original {
			t.Errorf("retrieved client mismatch: got %+v, want %+v", retrieved, original)
		}
	})

	t.Run("GetClient unknown ID is ErrNotFound", func(t *testing.T) {
		_, err := store.GetClient(ctx, "no-such-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListClients orders by name", func(t *testing.T) {
		clients, err := store.ListClients(ctx)
		if err != nil {
			t.Fatalf("ListClients failed: %v", err)
		}
		if len(clients) != 2 {
			t.Fatalf("expected 2 clients, got %d", len(clients))
		}
		if clients[0].Name != "Ana" || clients[1].Name != "Luis" {
			t.Errorf("unexpected order: %s, %s", clients[0].Name, clients[1].Name)
		}
	})

	t.Run("ListClientsByPrefix filters", func(t *testing.T) {
		clients, err := store.ListClientsByPrefix(ctx, "Lu")
		if err != nil {
			t.Fatalf("ListClientsByPrefix failed: %v", err)
		}
		if len(clients) != 1 || clients[0].Name != "Luis" {
			t.Errorf("expected only Luis, got %+v", clients)
		}
	})

	t.Run("UpdateClient persists changes", func(t *testing.T) {
		clients, _ := store.ListClients(ctx)
		client := clients[0]
		client.TicketsReturned = 3
		client.AmountPaid = 10.0

		if err := store.UpdateClient(ctx, &client); err != nil {
			t.Fatalf("UpdateClient failed: %v", err)
		}

		retrieved, err := store.GetClient(ctx, client.ID)
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if retrieved.TicketsReturned != 3 || math.Abs(retrieved.AmountPaid-10.0) > 0.001 {
			t.Errorf("update not persisted: %+v", retrieved)
		}
	})

	t.Run("invalid records are rejected at the data layer", func(t *testing.T) {
		err := store.InsertClient(ctx, &models.Client{Name: "Eva", TicketsDelivered: 2, TicketsReturned: 5})
		if !errors.Is(err, models.ErrInvalidRecord) {
			t.Errorf("insert: expected ErrInvalidRecord, got %v", err)
		}

		clients, _ := store.ListClients(ctx)
		bad := clients[0]
		bad.TicketsReturned = bad.TicketsDelivered + 1
		if err := store.UpdateClient(ctx, &bad); !errors.Is(err, models.ErrInvalidRecord) {
			t.Errorf("update: expected ErrInvalidRecord, got %v", err)
		}
	})

	t.Run("DeleteClient removes the row", func(t *testing.T) {
		client := &models.Client{Name: "Marta"}
		if err := store.InsertClient(ctx, client); err != nil {
			t.Fatalf("InsertClient failed: %v", err)
		}
		if err := store.DeleteClient(ctx, client.ID); err != nil {
			t.Fatalf("DeleteClient failed: %v", err)
		}
		if _, err := store.GetClient(ctx, client.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteClient(ctx, client.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("double delete: expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStoreSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("absent settings yield nil", func(t *testing.T) {
		settings, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if settings != nil {
			t.Errorf("expected nil settings, got %+v", settings)
		}
	})

	t.Run("UpsertSettings replaces the singleton", func(t *testing.T) {
		first := models.LotterySettings{
			DrawDate:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			TicketPrice: 2.5,
		}
		if err := store.UpsertSettings(ctx, first); err != nil {
			t.Fatalf("UpsertSettings failed: %v", err)
		}

		second := models.LotterySettings{
			DrawDate:    time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC),
			TicketPrice: 3.0,
		}
		if err := store.UpsertSettings(ctx, second); err != nil {
			t.Fatalf("UpsertSettings (replace) failed: %v", err)
		}

		settings, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if !settings.DrawDate.Equal(second.DrawDate) || math.Abs(settings.TicketPrice-3.0) > 0.001 {
			t.Errorf("settings not replaced: %+v", settings)
		}
	})
}

func TestImportBatch(t *testing.T) {
	ctx := context.Background()
	settings := models.LotterySettings{
		DrawDate:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		TicketPrice: 2.5,
	}

	t.Run("applies settings and all clients", func(t *testing.T) {
		store := newTestStore(t)
		clients := []models.Client{
			{Name: "Ana", TicketsDelivered: 10},
			{Name: "Luis", TicketsDelivered: 5, PreviousDebt: 3.0},
		}

		if err := store.ImportBatch(ctx, clients, settings); err != nil {
			t.Fatalf("ImportBatch failed: %v", err)
		}

		stored, err := store.ListClients(ctx)
		if err != nil {
			t.Fatalf("ListClients failed: %v", err)
		}
		if len(stored) != 2 {
			t.Fatalf("expected 2 clients, got %d", len(stored))
		}
		got, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if !got.DrawDate.Equal(settings.DrawDate) {
			t.Errorf("DrawDate = %v, want %v", got.DrawDate, settings.DrawDate)
		}
	})

	t.Run("all-or-nothing on a poisoned batch", func(t *testing.T) {
		store := newTestStore(t)
		clients := []models.Client{
			{Name: "Ana", TicketsDelivered: 10},
			{Name: "", TicketsDelivered: 5}, // fails validation mid-batch
		}

		if err := store.ImportBatch(ctx, clients, settings); err == nil {
			t.Fatal("expected ImportBatch to fail")
		}

		stored, err := store.ListClients(ctx)
		if err != nil {
			t.Fatalf("ListClients failed: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("expected no clients after rollback, got %d", len(stored))
		}
		got, err := store.GetSettings(ctx)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected settings rollback, got %+v", got)
		}
	})
}

func TestWatchClients(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := store.WatchClients(ctx)

	// Initial snapshot: empty ledger.
	select {
	case clients := <-ch:
		if len(clients) != 0 {
			t.Fatalf("initial snapshot: expected 0 clients, got %d", len(clients))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	if err := store.InsertClient(ctx, &models.Client{Name: "Ana"}); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case clients := <-ch:
			if len(clients) == 1 && clients[0].Name == "Ana" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for mutation snapshot")
		}
	}
}

func TestWatchSettings(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := store.WatchSettings(ctx)

	select {
	case settings := <-ch:
		if settings != nil {
			t.Fatalf("initial snapshot: expected nil settings, got %+v", settings)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	want := models.LotterySettings{
		DrawDate:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		TicketPrice: 2.5,
	}
	if err := store.UpsertSettings(ctx, want); err != nil {
		t.Fatalf("UpsertSettings failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case settings := <-ch:
			if settings != nil && settings.DrawDate.Equal(want.DrawDate) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for settings snapshot")
		}
	}
}
