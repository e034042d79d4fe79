package engine

import "errors"

// Validation failures. All are local and recoverable: the operation reports
// the error synchronously and leaves the state untouched.
var (
	ErrInvalidPhase       = errors.New("invalid phase")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrIndexOutOfRange    = errors.New("card index out of range")
	ErrActionAlreadyTaken = errors.New("action already taken")
)
