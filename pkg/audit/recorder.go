package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the Recorder.
type RecorderConfig struct {
	// Buffer is the number of records that may wait for the writer.
	// Default: 1000
	Buffer int

	// WriteTimeout bounds each storage write.
	// Default: 5s
	WriteTimeout time.Duration
}

// Recorder writes audit records to a Store from a background worker.
type Recorder struct {
	store   Store
	config  RecorderConfig
	records chan *Record
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewRecorder starts a recorder writing to store.
func NewRecorder(store Store, config RecorderConfig) *Recorder {
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		store:   store,
		config:  config,
		records: make(chan *Record, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record enqueues a record. It assigns an ID and start time when they are
// missing, and never blocks: when the buffer is full the record is dropped.
func (r *Recorder) Record(record *Record) {
	if record == nil || r.closed.Load() {
		return
	}
	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		record.ID = id.String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}

	select {
	case r.records <- record:
	default:
		r.dropped.Add(1)
		r.logger.Warn("audit buffer full, dropping record",
			"record_id", record.ID,
			"session_id", record.SessionID,
			"buffer", r.config.Buffer,
		)
	}
}

// Dropped returns the number of records dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Failed returns the number of records the store rejected.
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}

// Store returns the underlying store, for queries.
func (r *Recorder) Store() Store {
	return r.store
}

// Close drains pending records and stops the worker. It does not close the
// store.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.write(record)

		case <-r.done:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.store.Store(ctx, record); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to write audit record",
			"record_id", record.ID,
			"error", err,
		)
	}
}
