package game

import (
	"errors"
	"fmt"
)

// Reason identifies why an action request was rejected.
type Reason string

const (
	ReasonNoActionsRemaining    Reason = "no_actions_remaining"
	ReasonWrongPhase            Reason = "wrong_phase"
	ReasonOutOfRange            Reason = "out_of_range"
	ReasonTargetNotFound        Reason = "target_not_found"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonNoLootable            Reason = "no_lootable"
	ReasonInvalidMove           Reason = "invalid_move"
	ReasonBlocked               Reason = "blocked"
	ReasonNoCamp                Reason = "no_camp"
	ReasonUnknownAction         Reason = "unknown_action"
)

// RejectedError reports a request the current state does not allow. A
// rejected request never changes state, and repeating it in the same state
// is rejected the same way.
type RejectedError struct {
	Reason Reason
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return "action rejected: " + string(e.Reason)
	}
	return fmt.Sprintf("action rejected: %s: %s", e.Reason, e.Detail)
}

// Is matches any RejectedError with the same reason, so callers can compare
// against the sentinels below regardless of detail.
func (e *RejectedError) Is(target error) bool {
	var t *RejectedError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrNoActionsRemaining    = &RejectedError{Reason: ReasonNoActionsRemaining}
	ErrWrongPhase            = &RejectedError{Reason: ReasonWrongPhase}
	ErrOutOfRange            = &RejectedError{Reason: ReasonOutOfRange}
	ErrTargetNotFound        = &RejectedError{Reason: ReasonTargetNotFound}
	ErrInsufficientResources = &RejectedError{Reason: ReasonInsufficientResources}
	ErrNoLootable            = &RejectedError{Reason: ReasonNoLootable}
	ErrInvalidMove           = &RejectedError{Reason: ReasonInvalidMove}
	ErrBlocked               = &RejectedError{Reason: ReasonBlocked}
	ErrNoCamp                = &RejectedError{Reason: ReasonNoCamp}
	ErrUnknownAction         = &RejectedError{Reason: ReasonUnknownAction}
)

// ErrGameOver is returned for every request once the player has died.
var ErrGameOver = errors.New("game over")

func reject(reason Reason, format string, args ...any) error {
	return &RejectedError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// RejectionReason extracts the rejection reason from err, if it is one.
func RejectionReason(err error) (Reason, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
