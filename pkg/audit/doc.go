// Package audit keeps a metadata-only trail of chat exchanges.
//
// Each exchange handled by the gateway produces one Record: which session
// and transport it used, which provider and model served it, how it ended,
// how long it took, and how much was relayed. Message content and
// credentials are never recorded.
//
// # Storage Backends
//
//   - MemoryStore: bounded in-process ring, the default
//   - SQLiteStore: a database file, using either the pure-Go driver
//     ("sqlite", modernc.org/sqlite) or the cgo driver ("sqlite3",
//     github.com/mattn/go-sqlite3)
//
// # Recording
//
// Recorder writes records from a background worker so request handlers
// never wait on storage. When its buffer is full, records are dropped and
// counted rather than blocking a stream.
//
// # Retention
//
// Pruner deletes records older than the retention period; Scheduler runs it
// on a cron schedule:
//
//	pruner := audit.NewPruner(store, audit.RetentionConfig{RetentionDays: 30})
//	scheduler := audit.NewScheduler(pruner, "0 3 * * *")
//	scheduler.Start(ctx)
package audit
