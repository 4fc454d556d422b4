// Package store provides storage backends for the Yo-Yo Pizza assistant.
//
// This file implements an SQLite-backed store for flow state, profiles, and orders.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func sqliteUpsertFlowState(ex execer, state models.FlowState) error {
	stateDataJSON, err := encodeStateData(state.StateData)
	if err != nil {
		slog.Error("SQLiteStore flow state JSON marshal failed", "error", err, "participantID", state.ParticipantID)
		return err
	}
	_, err = ex.Exec(`
		INSERT OR REPLACE INTO flow_states (participant_id, flow_type, current_state, state_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		state.ParticipantID, string(state.FlowType), string(state.CurrentState),
		stateDataJSON, state.CreatedAt, state.UpdatedAt)
	return err
}

func sqliteUpsertProfile(ex execer, profile models.Profile) error {
	_, err := ex.Exec(`
		INSERT OR REPLACE INTO profiles (participant_id, name, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		profile.ParticipantID, nilIfEmpty(profile.Name), nilIfZero(profile.Age),
		profile.CreatedAt, profile.UpdatedAt)
	return err
}

// SaveFlowState stores or updates flow state for a participant.
func (s *SQLiteStore) SaveFlowState(state models.FlowState) error {
	if err := sqliteUpsertFlowState(s.db, state); err != nil {
		slog.Error("SQLiteStore SaveFlowState failed", "error", err, "participantID", state.ParticipantID, "flowType", state.FlowType)
		return err
	}
	slog.Debug("SQLiteStore SaveFlowState succeeded", "participantID", state.ParticipantID, "flowType", state.FlowType, "state", state.CurrentState)
	return nil
}

// GetFlowState retrieves flow state for a participant.
func (s *SQLiteStore) GetFlowState(participantID, flowType string) (*models.FlowState, error) {
	row := s.db.QueryRow(`SELECT participant_id, flow_type, current_state, state_data, created_at, updated_at
		FROM flow_states WHERE participant_id = ? AND flow_type = ?`, participantID, flowType)

	state, err := scanFlowState(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetFlowState not found", "participantID", participantID, "flowType", flowType)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return nil, err
	}
	slog.Debug("SQLiteStore GetFlowState found", "participantID", participantID, "flowType", flowType, "state", state.CurrentState)
	return state, nil
}

// DeleteFlowState removes flow state for a participant.
func (s *SQLiteStore) DeleteFlowState(participantID, flowType string) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE participant_id = ? AND flow_type = ?`, participantID, flowType)
	if err != nil {
		slog.Error("SQLiteStore DeleteFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return err
	}
	slog.Debug("SQLiteStore DeleteFlowState succeeded", "participantID", participantID, "flowType", flowType)
	return nil
}

// SaveProfile stores or updates a participant profile.
func (s *SQLiteStore) SaveProfile(profile models.Profile) error {
	if err := sqliteUpsertProfile(s.db, profile); err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "participantID", profile.ParticipantID)
		return err
	}
	slog.Debug("SQLiteStore SaveProfile succeeded", "participantID", profile.ParticipantID)
	return nil
}

// GetProfile retrieves a participant profile.
func (s *SQLiteStore) GetProfile(participantID string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT participant_id, name, age, created_at, updated_at
		FROM profiles WHERE participant_id = ?`, participantID)

	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found", "participantID", participantID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "participantID", participantID)
		return nil, err
	}
	return profile, nil
}

// SaveFlowStateAndProfile persists a turn's flow state and profile in one
// transaction, so a crash never leaves a half-applied transition behind.
func (s *SQLiteStore) SaveFlowStateAndProfile(state models.FlowState, profile models.Profile) error {
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("SQLiteStore SaveFlowStateAndProfile begin failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	if err := sqliteUpsertFlowState(tx, state); err != nil {
		tx.Rollback()
		slog.Error("SQLiteStore SaveFlowStateAndProfile flow state failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to save flow state: %w", err)
	}
	if err := sqliteUpsertProfile(tx, profile); err != nil {
		tx.Rollback()
		slog.Error("SQLiteStore SaveFlowStateAndProfile profile failed", "error", err, "participantID", profile.ParticipantID)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		slog.Error("SQLiteStore SaveFlowStateAndProfile commit failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to commit turn transaction: %w", err)
	}
	slog.Debug("SQLiteStore SaveFlowStateAndProfile succeeded", "participantID", state.ParticipantID, "state", state.CurrentState)
	return nil
}

// CreateOrder persists an order and assigns its generated identifier.
func (s *SQLiteStore) CreateOrder(order models.Order) (models.Order, error) {
	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	_, err := s.db.Exec(`INSERT INTO orders (id, item_number, name, age, address, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.ItemNumber, order.Name, order.Age, order.Address, order.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateOrder failed", "error", err, "itemNumber", order.ItemNumber)
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	slog.Info("SQLiteStore CreateOrder succeeded", "orderID", order.ID, "itemNumber", order.ItemNumber)
	return order, nil
}

// GetOrder retrieves a committed order by ID.
func (s *SQLiteStore) GetOrder(id string) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT id, item_number, name, age, address, created_at FROM orders WHERE id = ?`, id)
	var o models.Order
	err := row.Scan(&o.ID, &o.ItemNumber, &o.Name, &o.Age, &o.Address, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetOrder failed", "error", err, "orderID", id)
		return nil, err
	}
	return &o, nil
}

// GetOrders returns all committed orders.
func (s *SQLiteStore) GetOrders() ([]models.Order, error) {
	rows, err := s.db.Query(`SELECT id, item_number, name, age, address, created_at FROM orders ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore GetOrders query failed", "error", err)
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.ItemNumber, &o.Name, &o.Age, &o.Address, &o.CreatedAt); err != nil {
			slog.Error("SQLiteStore GetOrders scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore GetOrders rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}
	slog.Debug("SQLiteStore GetOrders succeeded", "count", len(orders))
	return orders, nil
}

// AddResponse records an inbound message.
func (s *SQLiteStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES (?, ?, ?)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	slog.Debug("SQLiteStore AddResponse succeeded", "from", r.From)
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *SQLiteStore) GetResponses() ([]models.Response, error) {
	rows, err := s.db.Query(`SELECT sender, body, time FROM responses`)
	if err != nil {
		slog.Error("SQLiteStore GetResponses query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.From, &r.Body, &r.Time); err != nil {
			slog.Error("SQLiteStore GetResponses scan failed", "error", err)
			return nil, err
		}
		responses = append(responses, r)
	}
	slog.Debug("SQLiteStore GetResponses succeeded", "count", len(responses))
	return responses, rows.Err()
}

// AddReceipt records an outbound delivery receipt.
func (s *SQLiteStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES (?, ?, ?)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	slog.Debug("SQLiteStore AddReceipt succeeded", "to", r.To, "status", r.Status)
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *SQLiteStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts`)
	if err != nil {
		slog.Error("SQLiteStore GetReceipts query failed", "error", err)
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.To, &r.Status, &r.Time); err != nil {
			slog.Error("SQLiteStore GetReceipts scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	slog.Debug("SQLiteStore GetReceipts succeeded", "count", len(receipts))
	return receipts, rows.Err()
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// encodeStateData converts the slot map to its JSON column representation.
func encodeStateData(data map[models.DataKey]string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}
