// Package flow provides concrete implementations of state management.
package flow

import (
	"context"
	"log/slog"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/store"
)

// StoreBasedStateManager implements StateManager using a Store backend.
type StoreBasedStateManager struct {
	store store.Store
}

// NewStoreBasedStateManager creates a new StateManager backed by a Store.
func NewStoreBasedStateManager(st store.Store) *StoreBasedStateManager {
	slog.Debug("Creating StoreBasedStateManager")
	return &StoreBasedStateManager{store: st}
}

// LoadTurn retrieves the flow state and profile for a participant.
func (sm *StoreBasedStateManager) LoadTurn(ctx context.Context, participantID string, flowType models.FlowType) (*models.FlowState, *models.Profile, error) {
	slog.Debug("StateManager LoadTurn", "participantID", participantID, "flowType", flowType)

	state, err := sm.store.GetFlowState(participantID, string(flowType))
	if err != nil {
		slog.Error("StateManager LoadTurn flow state error", "error", err, "participantID", participantID, "flowType", flowType)
		return nil, nil, err
	}

	profile, err := sm.store.GetProfile(participantID)
	if err != nil {
		slog.Error("StateManager LoadTurn profile error", "error", err, "participantID", participantID)
		return nil, nil, err
	}

	slog.Debug("StateManager LoadTurn succeeded", "participantID", participantID, "flowType", flowType,
		"state_found", state != nil, "profile_found", profile != nil)
	return state, profile, nil
}

// SaveTurn persists the flow state and profile of one turn atomically.
func (sm *StoreBasedStateManager) SaveTurn(ctx context.Context, state *models.FlowState, profile *models.Profile) error {
	slog.Debug("StateManager SaveTurn", "participantID", state.ParticipantID, "flowType", state.FlowType, "state", state.CurrentState)

	if err := sm.store.SaveFlowStateAndProfile(*state, *profile); err != nil {
		slog.Error("StateManager SaveTurn failed", "error", err, "participantID", state.ParticipantID, "flowType", state.FlowType)
		return err
	}

	slog.Debug("StateManager SaveTurn succeeded", "participantID", state.ParticipantID, "flowType", state.FlowType, "state", state.CurrentState)
	return nil
}

// GetCurrentState retrieves the current state for a participant in a flow.
func (sm *StoreBasedStateManager) GetCurrentState(ctx context.Context, participantID string, flowType models.FlowType) (models.StateType, error) {
	slog.Debug("StateManager GetCurrentState", "participantID", participantID, "flowType", flowType)

	state, err := sm.store.GetFlowState(participantID, string(flowType))
	if err != nil {
		slog.Error("StateManager GetCurrentState error", "error", err, "participantID", participantID, "flowType", flowType)
		return "", err
	}
	if state == nil {
		slog.Debug("StateManager GetCurrentState not found", "participantID", participantID, "flowType", flowType)
		return "", nil
	}

	slog.Debug("StateManager GetCurrentState found", "participantID", participantID, "flowType", flowType, "state", state.CurrentState)
	return state.CurrentState, nil
}

// ResetState removes all state data for a participant in a flow.
func (sm *StoreBasedStateManager) ResetState(ctx context.Context, participantID string, flowType models.FlowType) error {
	slog.Debug("StateManager ResetState", "participantID", participantID, "flowType", flowType)

	if err := sm.store.DeleteFlowState(participantID, string(flowType)); err != nil {
		slog.Error("StateManager ResetState error", "error", err, "participantID", participantID, "flowType", flowType)
		return err
	}

	slog.Info("StateManager ResetState succeeded", "participantID", participantID, "flowType", flowType)
	return nil
}
