// Package dashboard holds the admin console controllers: list fetches with
// stale-result protection, editors with confirmation-gated deletes, and the
// moderation queues. Every user action tracks its own request state.
package dashboard

import (
	"errors"
	"sync"

	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

// Phase is the lifecycle stage of one user action.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// RequestState reports the outcome of the latest attempt of an action.
// Reason is set only when Phase is failed.
type RequestState struct {
	Phase  Phase  `json:"phase"`
	Reason string `json:"reason,omitempty"`
}

// Idle is the state before any attempt.
func Idle() RequestState { return RequestState{Phase: PhaseIdle} }

// Pending marks an attempt in flight.
func Pending() RequestState { return RequestState{Phase: PhasePending} }

// Succeeded marks a completed attempt.
func Succeeded() RequestState { return RequestState{Phase: PhaseSucceeded} }

// Failed marks an attempt that ended with err.
func Failed(err error) RequestState {
	return RequestState{Phase: PhaseFailed, Reason: reasonOf(err)}
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// ErrInFlight is returned when an action is started while its previous
// attempt is still pending.
var ErrInFlight = errors.New("operation already in progress")

// operation serialises attempts of one action and records their state.
type operation struct {
	mu    sync.Mutex
	state RequestState
}

func (o *operation) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase == PhasePending {
		return ErrInFlight
	}
	o.state = Pending()
	return nil
}

func (o *operation) finish(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = Failed(err)
		return
	}
	o.state = Succeeded()
}

func (o *operation) State() RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase == "" {
		return Idle()
	}
	return o.state
}
