// Package store provides storage backends for the Yo-Yo Pizza assistant.
//
// This file implements a PostgreSQL-backed store with the same schema as the
// SQLite backend.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func postgresUpsertFlowState(ex execer, state models.FlowState) error {
	stateDataJSON, err := encodeStateData(state.StateData)
	if err != nil {
		slog.Error("PostgresStore flow state JSON marshal failed", "error", err, "participantID", state.ParticipantID)
		return err
	}
	_, err = ex.Exec(`
		INSERT INTO flow_states (participant_id, flow_type, current_state, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (participant_id, flow_type) DO UPDATE
		SET current_state = EXCLUDED.current_state,
		    state_data = EXCLUDED.state_data,
		    updated_at = EXCLUDED.updated_at`,
		state.ParticipantID, string(state.FlowType), string(state.CurrentState),
		stateDataJSON, state.CreatedAt, state.UpdatedAt)
	return err
}

func postgresUpsertProfile(ex execer, profile models.Profile) error {
	_, err := ex.Exec(`
		INSERT INTO profiles (participant_id, name, age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (participant_id) DO UPDATE
		SET name = EXCLUDED.name,
		    age = EXCLUDED.age,
		    updated_at = EXCLUDED.updated_at`,
		profile.ParticipantID, nilIfEmpty(profile.Name), nilIfZero(profile.Age),
		profile.CreatedAt, profile.UpdatedAt)
	return err
}

// SaveFlowState stores or updates flow state for a participant.
func (s *PostgresStore) SaveFlowState(state models.FlowState) error {
	if err := postgresUpsertFlowState(s.db, state); err != nil {
		slog.Error("PostgresStore SaveFlowState failed", "error", err, "participantID", state.ParticipantID, "flowType", state.FlowType)
		return err
	}
	slog.Debug("PostgresStore SaveFlowState succeeded", "participantID", state.ParticipantID, "flowType", state.FlowType, "state", state.CurrentState)
	return nil
}

// GetFlowState retrieves flow state for a participant.
func (s *PostgresStore) GetFlowState(participantID, flowType string) (*models.FlowState, error) {
	row := s.db.QueryRow(`SELECT participant_id, flow_type, current_state, state_data, created_at, updated_at
		FROM flow_states WHERE participant_id = $1 AND flow_type = $2`, participantID, flowType)

	state, err := scanFlowState(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetFlowState not found", "participantID", participantID, "flowType", flowType)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return nil, err
	}
	return state, nil
}

// DeleteFlowState removes flow state for a participant.
func (s *PostgresStore) DeleteFlowState(participantID, flowType string) error {
	_, err := s.db.Exec(`DELETE FROM flow_states WHERE participant_id = $1 AND flow_type = $2`, participantID, flowType)
	if err != nil {
		slog.Error("PostgresStore DeleteFlowState failed", "error", err, "participantID", participantID, "flowType", flowType)
		return err
	}
	return nil
}

// SaveProfile stores or updates a participant profile.
func (s *PostgresStore) SaveProfile(profile models.Profile) error {
	if err := postgresUpsertProfile(s.db, profile); err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "participantID", profile.ParticipantID)
		return err
	}
	return nil
}

// GetProfile retrieves a participant profile.
func (s *PostgresStore) GetProfile(participantID string) (*models.Profile, error) {
	row := s.db.QueryRow(`SELECT participant_id, name, age, created_at, updated_at
		FROM profiles WHERE participant_id = $1`, participantID)

	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "participantID", participantID)
		return nil, err
	}
	return profile, nil
}

// SaveFlowStateAndProfile persists a turn's flow state and profile in one
// transaction.
func (s *PostgresStore) SaveFlowStateAndProfile(state models.FlowState, profile models.Profile) error {
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("PostgresStore SaveFlowStateAndProfile begin failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	if err := postgresUpsertFlowState(tx, state); err != nil {
		tx.Rollback()
		slog.Error("PostgresStore SaveFlowStateAndProfile flow state failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to save flow state: %w", err)
	}
	if err := postgresUpsertProfile(tx, profile); err != nil {
		tx.Rollback()
		slog.Error("PostgresStore SaveFlowStateAndProfile profile failed", "error", err, "participantID", profile.ParticipantID)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		slog.Error("PostgresStore SaveFlowStateAndProfile commit failed", "error", err, "participantID", state.ParticipantID)
		return fmt.Errorf("failed to commit turn transaction: %w", err)
	}
	return nil
}

// CreateOrder persists an order and assigns its generated identifier.
func (s *PostgresStore) CreateOrder(order models.Order) (models.Order, error) {
	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	_, err := s.db.Exec(`INSERT INTO orders (id, item_number, name, age, address, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.ItemNumber, order.Name, order.Age, order.Address, order.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore CreateOrder failed", "error", err, "itemNumber", order.ItemNumber)
		return models.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	slog.Info("PostgresStore CreateOrder succeeded", "orderID", order.ID, "itemNumber", order.ItemNumber)
	return order, nil
}

// GetOrder retrieves a committed order by ID.
func (s *PostgresStore) GetOrder(id string) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT id, item_number, name, age, address, created_at FROM orders WHERE id = $1`, id)
	var o models.Order
	err := row.Scan(&o.ID, &o.ItemNumber, &o.Name, &o.Age, &o.Address, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetOrder failed", "error", err, "orderID", id)
		return nil, err
	}
	return &o, nil
}

// GetOrders returns all committed orders.
func (s *PostgresStore) GetOrders() ([]models.Order, error) {
	rows, err := s.db.Query(`SELECT id, item_number, name, age, address, created_at FROM orders ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore GetOrders query failed", "error", err)
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.ItemNumber, &o.Name, &o.Age, &o.Address, &o.CreatedAt); err != nil {
			slog.Error("PostgresStore GetOrders scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// AddResponse records an inbound message.
func (s *PostgresStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES ($1, $2, $3)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *PostgresStore) GetResponses() ([]models.Response, error) {
	rows, err := s.db.Query(`SELECT sender, body, time FROM responses`)
	if err != nil {
		slog.Error("PostgresStore GetResponses query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.From, &r.Body, &r.Time); err != nil {
			slog.Error("PostgresStore GetResponses scan failed", "error", err)
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// AddReceipt records an outbound delivery receipt.
func (s *PostgresStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES ($1, $2, $3)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *PostgresStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts`)
	if err != nil {
		slog.Error("PostgresStore GetReceipts query failed", "error", err)
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.To, &r.Status, &r.Time); err != nil {
			slog.Error("PostgresStore GetReceipts scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
