// Package store provides storage backends for the Yo-Yo Pizza assistant.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends for persistent flow state, profiles, and orders.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence boundary consumed by the dialog engine and the
// messaging layer.
type Store interface {
	// Flow state, keyed by participant and flow type.
	SaveFlowState(state models.FlowState) error
	GetFlowState(participantID, flowType string) (*models.FlowState, error)
	DeleteFlowState(participantID, flowType string) error

	// Profiles, keyed by participant.
	SaveProfile(profile models.Profile) error
	GetProfile(participantID string) (*models.Profile, error)

	// SaveFlowStateAndProfile persists both records of one turn atomically:
	// either both are durably updated or neither is.
	SaveFlowStateAndProfile(state models.FlowState, profile models.Profile) error

	// Orders. CreateOrder assigns the generated identifier.
	CreateOrder(order models.Order) (models.Order, error)
	GetOrder(id string) (*models.Order, error)
	GetOrders() ([]models.Order, error)

	// Message logs.
	AddResponse(response models.Response) error
	GetResponses() ([]models.Response, error)
	AddReceipt(receipt models.Receipt) error
	GetReceipts() ([]models.Receipt, error)

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for file paths.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a Store kept entirely in process memory. Used by tests and
// as a fallback when no database DSN is configured.
type InMemoryStore struct {
	mu         sync.RWMutex
	flowStates map[string]models.FlowState
	profiles   map[string]models.Profile
	orders     []models.Order
	responses  []models.Response
	receipts   []models.Receipt

	// failCreateOrder, when set, makes CreateOrder fail. Used by tests to
	// exercise the persistence-failure path of the dialog engine.
	failCreateOrder error
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		flowStates: make(map[string]models.FlowState),
		profiles:   make(map[string]models.Profile),
	}
}

func flowStateKey(participantID, flowType string) string {
	return participantID + "|" + flowType
}

// SaveFlowState stores or replaces flow state for a participant.
func (s *InMemoryStore) SaveFlowState(state models.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flowStates[flowStateKey(state.ParticipantID, string(state.FlowType))] = cloneFlowState(state)
	return nil
}

// GetFlowState retrieves flow state for a participant, or nil when absent.
func (s *InMemoryStore) GetFlowState(participantID, flowType string) (*models.FlowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.flowStates[flowStateKey(participantID, flowType)]
	if !ok {
		return nil, nil
	}
	cloned := cloneFlowState(state)
	return &cloned, nil
}

// DeleteFlowState removes flow state for a participant.
func (s *InMemoryStore) DeleteFlowState(participantID, flowType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flowStates, flowStateKey(participantID, flowType))
	return nil
}

// SaveProfile stores or replaces a participant profile.
func (s *InMemoryStore) SaveProfile(profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ParticipantID] = profile
	return nil
}

// GetProfile retrieves a participant profile, or nil when absent.
func (s *InMemoryStore) GetProfile(participantID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[participantID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// SaveFlowStateAndProfile updates both records under one lock.
func (s *InMemoryStore) SaveFlowStateAndProfile(state models.FlowState, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flowStates[flowStateKey(state.ParticipantID, string(state.FlowType))] = cloneFlowState(state)
	s.profiles[profile.ParticipantID] = profile
	return nil
}

// CreateOrder persists an order, assigning its identifier and creation time.
func (s *InMemoryStore) CreateOrder(order models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateOrder != nil {
		return models.Order{}, s.failCreateOrder
	}
	order.ID = uuid.NewString()
	order.CreatedAt = time.Now()
	s.orders = append(s.orders, order)
	return order, nil
}

// GetOrder retrieves a committed order by ID, or nil when absent.
func (s *InMemoryStore) GetOrder(id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, nil
}

// GetOrders returns all committed orders.
func (s *InMemoryStore) GetOrders() ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]models.Order, len(s.orders))
	copy(orders, s.orders)
	return orders, nil
}

// AddResponse records an inbound message.
func (s *InMemoryStore) AddResponse(response models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, response)
	return nil
}

// GetResponses returns all recorded inbound messages.
func (s *InMemoryStore) GetResponses() ([]models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	responses := make([]models.Response, len(s.responses))
	copy(responses, s.responses)
	return responses, nil
}

// AddReceipt records an outbound delivery receipt.
func (s *InMemoryStore) AddReceipt(receipt models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, receipt)
	return nil
}

// GetReceipts returns all recorded receipts.
func (s *InMemoryStore) GetReceipts() ([]models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipts := make([]models.Receipt, len(s.receipts))
	copy(receipts, s.receipts)
	return receipts, nil
}

// FailNextCreateOrder makes subsequent CreateOrder calls fail with err.
// Passing nil restores normal behavior.
func (s *InMemoryStore) FailNextCreateOrder(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreateOrder = err
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

func cloneFlowState(state models.FlowState) models.FlowState {
	if state.StateData != nil {
		data := make(map[models.DataKey]string, len(state.StateData))
		for k, v := range state.StateData {
			data[k] = v
		}
		state.StateData = data
	}
	return state
}
