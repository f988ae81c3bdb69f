package audit

import (
	"context"
	"testing"
	"time"

	"agentic/gateway/pkg/config"
)

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name          string
		retentionDays int
		wantDeleted   int64
	}{
		{"retention disabled", 0, 0},
		{"seven days", 7, 2},
		{"long retention", 365, 0},
	}

	now := baseTime
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore(0)
			for i, age := range []time.Duration{time.Hour, 3 * 24 * time.Hour, 10 * 24 * time.Hour, 40 * 24 * time.Hour} {
				r := testRecord(i, "sess")
				r.StartedAt = now.Add(-age)
				_ = store.Store(ctx, r)
			}

			p := NewPruner(store, RetentionConfig{RetentionDays: tt.retentionDays})
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(ctx)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := NewPruner(NewMemoryStore(0), RetentionConfig{RetentionDays: 30})
	s := NewScheduler(p, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler not running")
	}
	if next := s.NextRun(); next == nil || next.Hour() != 3 {
		t.Errorf("NextRun() = %v", next)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start() succeeded")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
	s.Stop()
}

func TestScheduler_Disabled(t *testing.T) {
	tests := []struct {
		name      string
		retention int
		schedule  string
	}{
		{"no retention", 0, "0 3 * * *"},
		{"no schedule", 30, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(NewPruner(NewMemoryStore(0), RetentionConfig{RetentionDays: tt.retention}), tt.schedule)
			if err := s.Start(context.Background()); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if s.IsRunning() {
				t.Error("disabled scheduler is running")
			}
		})
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(NewPruner(NewMemoryStore(0), RetentionConfig{RetentionDays: 1}), "whenever")
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() accepted an invalid cron expression")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler(NewPruner(NewMemoryStore(0), RetentionConfig{RetentionDays: 1}), "@every 1h")
	ctx, cancel := context.WithCancel(context.Background())

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}

func TestOpen(t *testing.T) {
	mem, err := Open(config.AuditConfig{Backend: "memory", MaxRecords: 5})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Errorf("memory backend = %T", mem)
	}

	if _, err := Open(config.AuditConfig{Backend: "postgres"}); err == nil {
		t.Error("Open() accepted an unknown backend")
	}
}
