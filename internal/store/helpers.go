package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
)

// execer abstracts *sql.DB and *sql.Tx for shared upsert statements.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nilIfZero returns nil if n is zero, otherwise returns n.
// Used for nullable integer columns.
func nilIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// scanFlowState scans a FlowState from a single sql.Row, decoding the JSON
// slot data column.
func scanFlowState(row *sql.Row) (*models.FlowState, error) {
	var state models.FlowState
	var flowType, currentState string
	var stateDataJSON sql.NullString
	err := row.Scan(&state.ParticipantID, &flowType, &currentState,
		&stateDataJSON, &state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		return nil, err
	}
	state.FlowType = models.FlowType(flowType)
	state.CurrentState = models.StateType(currentState)
	if stateDataJSON.String != "" {
		state.StateData = make(map[models.DataKey]string)
		if err := json.Unmarshal([]byte(stateDataJSON.String), &state.StateData); err != nil {
			slog.Error("Flow state JSON unmarshal failed", "error", err, "participantID", state.ParticipantID)
			// Continue with empty map rather than failing
			state.StateData = make(map[models.DataKey]string)
		}
	} else {
		state.StateData = make(map[models.DataKey]string)
	}
	return &state, nil
}

// scanProfile scans a Profile from a single sql.Row with nullable name/age.
func scanProfile(row *sql.Row) (*models.Profile, error) {
	var profile models.Profile
	var name sql.NullString
	var age sql.NullInt64
	err := row.Scan(&profile.ParticipantID, &name, &age, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	profile.Name = name.String
	profile.Age = int(age.Int64)
	return &profile, nil
}
