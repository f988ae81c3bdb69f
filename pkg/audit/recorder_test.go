package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingStore blocks every Store call until release is closed.
type blockingStore struct {
	*MemoryStore
	release chan struct{}
}

func (b *blockingStore) Store(ctx context.Context, r *Record) error {
	<-b.release
	return b.MemoryStore.Store(ctx, r)
}

type failingStore struct {
	*MemoryStore
}

func (failingStore) Store(context.Context, *Record) error {
	return errors.New("disk full")
}

func TestRecorder_WritesAndDrains(t *testing.T) {
	store := NewMemoryStore(0)
	rec := NewRecorder(store, RecorderConfig{Buffer: 16})

	for i := range 10 {
		rec.Record(&Record{SessionID: "sess", Outcome: "completed", StartedAt: baseTime.Add(time.Duration(i) * time.Second)})
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	n, _ := store.Count(context.Background())
	if n != 10 {
		t.Errorf("stored %d records, want 10", n)
	}

	got, _ := store.Query(context.Background(), &Query{Limit: 1})
	if got[0].ID == "" {
		t.Error("recorder did not assign an ID")
	}
}

func TestRecorder_AssignsUniqueIDs(t *testing.T) {
	store := NewMemoryStore(0)
	rec := NewRecorder(store, RecorderConfig{})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record(&Record{SessionID: "sess"})
		}()
	}
	wg.Wait()
	_ = rec.Close()

	all, _ := store.Query(context.Background(), &Query{Limit: MaxQueryLimit})
	seen := make(map[string]bool)
	for _, r := range all {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
		if r.StartedAt.IsZero() {
			t.Error("StartedAt not set")
		}
	}
	if len(seen) != 50 {
		t.Errorf("stored %d records, want 50", len(seen))
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStore{MemoryStore: NewMemoryStore(0), release: make(chan struct{})}
	rec := NewRecorder(store, RecorderConfig{Buffer: 1})

	// The worker takes one record and blocks; one more fits in the buffer.
	for range 5 {
		rec.Record(&Record{SessionID: "sess"})
		time.Sleep(5 * time.Millisecond)
	}

	if rec.Dropped() == 0 {
		t.Error("Record() blocked or buffered past capacity instead of dropping")
	}

	close(store.release)
	_ = rec.Close()
}

func TestRecorder_CountsStoreFailures(t *testing.T) {
	rec := NewRecorder(failingStore{NewMemoryStore(0)}, RecorderConfig{})

	rec.Record(&Record{SessionID: "sess"})
	_ = rec.Close()

	if rec.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", rec.Failed())
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	store := NewMemoryStore(0)
	rec := NewRecorder(store, RecorderConfig{})
	_ = rec.Close()
	_ = rec.Close()

	rec.Record(&Record{SessionID: "sess"})

	if n, _ := store.Count(context.Background()); n != 0 {
		t.Errorf("record written after Close")
	}
}
