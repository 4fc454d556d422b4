// Package flow implements the order dialog state machine and its state
// management interfaces.
package flow

import (
	"context"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
)

// StateManager defines the interface for managing flow state. The engine
// follows a load-before/save-after discipline: it loads both per-turn records
// at the start of a turn, mutates local copies, and saves them together only
// after the turn's side effects succeed.
type StateManager interface {
	// LoadTurn retrieves the flow state and profile for a participant.
	// Either value is nil when no record exists yet.
	LoadTurn(ctx context.Context, participantID string, flowType models.FlowType) (*models.FlowState, *models.Profile, error)

	// SaveTurn persists the flow state and profile of one completed turn
	// atomically: both records are durably updated or neither is.
	SaveTurn(ctx context.Context, state *models.FlowState, profile *models.Profile) error

	// GetCurrentState retrieves the current state for a participant in a flow.
	// Returns the empty state when no flow state exists.
	GetCurrentState(ctx context.Context, participantID string, flowType models.FlowType) (models.StateType, error)

	// ResetState removes all flow state for a participant.
	ResetState(ctx context.Context, participantID string, flowType models.FlowType) error
}
