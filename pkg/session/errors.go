package session

import "errors"

// ErrSessionNotFound is returned when a session id is unknown, deleted or
// expired. The three cases are deliberately indistinguishable.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidTurn is returned when a turn has a role outside the closed set.
var ErrInvalidTurn = errors.New("invalid turn")
