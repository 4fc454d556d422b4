// Package models defines state management structures for dialog flows.
package models

import "time"

// FlowState represents the current state of a participant in a flow.
// StateData is the accumulating slot map; it only grows until the flow resets.
type FlowState struct {
	ParticipantID string             `json:"participant_id"`
	FlowType      FlowType           `json:"flow_type"`
	CurrentState  StateType          `json:"current_state"`
	StateData     map[DataKey]string `json:"state_data,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewOrderFlowState returns the default flow state for a conversation's first
// turn: the item question pending and no slots filled.
func NewOrderFlowState(participantID string) *FlowState {
	now := time.Now()
	return &FlowState{
		ParticipantID: participantID,
		FlowType:      FlowTypeOrder,
		CurrentState:  StateItem,
		StateData:     make(map[DataKey]string),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Reset returns the flow to the dormant state with no slots filled, ready for
// a new order cycle in the same conversation.
func (s *FlowState) Reset() {
	s.CurrentState = StateNone
	s.StateData = make(map[DataKey]string)
	s.UpdatedAt = time.Now()
}

// StateTransition represents a transition between states in a flow.
type StateTransition struct {
	FromState StateType `json:"from_state"`
	ToState   StateType `json:"to_state"`
}
