package services

import (
	"errors"
)

// Failure taxonomy surfaced to handlers. Preconditions are checked
// before any mutation; the first violation rolls the transaction back,
// so none of these ever leave partial effects behind.
var (
	ErrNotFound                = errors.New("not found")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrInvalidTokenType        = errors.New("invalid token type")
	ErrInvalidOutcome          = errors.New("invalid outcome")
	ErrMarketClosed            = errors.New("market is closed")
	ErrEventHasStarted         = errors.New("event has started")
	ErrNoActiveStake           = errors.New("no active stake found")
	ErrStakePeriodNotCompleted = errors.New("stake period not completed")
	ErrInvalidDuration         = errors.New("invalid staking duration")
	ErrInvalidTransition       = errors.New("status transition not allowed")
	ErrNFTNotListed            = errors.New("nft not listed for sale")
	ErrOwnNFT                  = errors.New("cannot buy your own nft")
	ErrTournamentFull          = errors.New("tournament is full")
	ErrAlreadyRegistered       = errors.New("already registered")
	ErrTournamentStarted       = errors.New("tournament has already started")
)
