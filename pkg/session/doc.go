// Package session holds the gateway's server-side conversation state.
//
// A Store maps opaque session identifiers to Sessions. Each Session owns the
// caller's provider credential and a ConversationLog of user and assistant
// turns. The Store's map is guarded by a read/write lock that covers only its
// structure; every Session carries its own mutex, so appends to one
// conversation never wait on traffic for another.
//
// # Lifecycle
//
// Sessions are created explicitly with Store.Create and removed either by
// Store.Delete or by SweepExpired once they have been idle longer than the
// configured timeout. A Sweeper runs SweepExpired on a cron schedule:
//
//	store := session.NewStore(session.WithIdleTimeout(30 * time.Minute))
//	sweeper := session.NewSweeper(store, time.Minute)
//	if err := sweeper.Start(ctx); err != nil {
//	    return err
//	}
//	defer sweeper.Stop()
//
// # Races with deletion
//
// A handler that looked a session up may find it gone by the time it appends.
// AppendTurn reports ErrSessionNotFound in that case and the caller must treat
// it as terminal for the in-flight request.
package session
