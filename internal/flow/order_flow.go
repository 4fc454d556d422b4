package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/menu"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/recognize"
)

// TrackKeyword is the stateless command that returns the order status without
// touching the dialog flow.
const TrackKeyword = "track"

// Message texts for the order dialog.
const (
	MsgInvalidItem      = "Please enter valid input"
	MsgNamePrompt       = "Please enter your name?"
	MsgNameConfirmFmt   = "I have your name as %s."
	MsgNameReject       = "Please enter a name that contains at least one character."
	MsgAgePrompt        = "How old are you?"
	MsgAgeConfirmFmt    = "I have your age as %d."
	MsgAgeReject        = "Please enter an age between 18 and 120."
	MsgAgeNotRecognized = "I'm sorry, I could not interpret that as an age. Please enter an age between 18 and 120."
	MsgAddressPrompt    = "Enter your delivery address"
	MsgOrderPlacedFmt   = "Your Order of %s is Placed with id %s, will be ready in 30min."
	MsgClosing          = "Thanks for choosing us!, Enjoy your food, please enter 'track' if you want to check your food status."
	MsgWelcome          = "Hello and welcome!"
	MsgMenuHeader       = "Please checkout our Menu for your delicious food!"
	MsgItemPromptFmt    = "Please enter number to place your Order(%s)"
)

// OrderStatusPhrases is the fixed set of status replies for the track command.
var OrderStatusPhrases = []string{
	"your order is being prepared",
	"your order is in your way",
}

// StatusPhrase returns one of the fixed status phrases, chosen uniformly
// pseudorandomly per invocation.
func StatusPhrase() string {
	return OrderStatusPhrases[rand.IntN(len(OrderStatusPhrases))]
}

// MessagingService is the outbound messaging surface the engine depends on.
// The handler canonicalizes participant ids before they reach the engine.
type MessagingService interface {
	SendMessage(ctx context.Context, to, message string) error
}

// OrderStore is the persistence surface for committing completed orders.
type OrderStore interface {
	CreateOrder(order models.Order) (models.Order, error)
}

// OrderFlow drives the slot-filling order dialog. One call to ProcessResponse
// consumes one turn: it validates the answer for the pending question, either
// re-prompts in place or advances the state machine, and commits the order on
// the terminal transition.
type OrderFlow struct {
	stateManager StateManager
	orders       OrderStore
	msgService   MessagingService
	recognizer   recognize.Recognizer
	catalog      menu.Catalog
}

// NewOrderFlow creates the order dialog engine with its collaborators.
func NewOrderFlow(stateManager StateManager, orders OrderStore, msgService MessagingService, recognizer recognize.Recognizer, catalog menu.Catalog) *OrderFlow {
	return &OrderFlow{
		stateManager: stateManager,
		orders:       orders,
		msgService:   msgService,
		recognizer:   recognizer,
		catalog:      catalog,
	}
}

// ProcessResponse handles one incoming turn for a participant.
//
// Validation rejections send a re-prompt and leave flow state and slot data
// untouched. Accepted answers advance the pending question and persist both
// flow state and profile atomically after all outbound sends succeed. A
// persistence failure during order commit fails the turn with the flow still
// at the address question, so retrying the same turn is safe.
func (f *OrderFlow) ProcessResponse(ctx context.Context, participantID, response string) error {
	slog.Debug("OrderFlow ProcessResponse", "participantID", participantID, "response_length", len(response))

	// Stateless command path: status tracking bypasses the form entirely.
	if strings.EqualFold(strings.TrimSpace(response), TrackKeyword) {
		slog.Debug("OrderFlow handling track command", "participantID", participantID)
		return f.msgService.SendMessage(ctx, participantID, StatusPhrase())
	}

	state, profile, err := f.stateManager.LoadTurn(ctx, participantID, models.FlowTypeOrder)
	if err != nil {
		return fmt.Errorf("failed to load turn state: %w", err)
	}
	if state == nil {
		// First turn of the conversation: the item question is pending.
		state = models.NewOrderFlowState(participantID)
	}
	if profile == nil {
		now := time.Now()
		profile = &models.Profile{ParticipantID: participantID, CreatedAt: now, UpdatedAt: now}
	}

	var replies []string

	switch state.CurrentState {
	case models.StateNone:
		// Dialog complete, awaiting a new order: any new input starts the
		// next cycle by re-asking the item question.
		slog.Info("OrderFlow starting new order cycle", "participantID", participantID)
		state.CurrentState = models.StateItem
		state.StateData = make(map[models.DataKey]string)
		replies = append(replies, fmt.Sprintf(MsgItemPromptFmt, f.catalog.PromptHint()))

	case models.StateItem:
		itemNumber, err := ValidateItem(response, f.catalog)
		if err != nil {
			return f.reject(ctx, participantID, MsgInvalidItem)
		}
		state.StateData[models.DataKeyItemNumber] = strconv.Itoa(itemNumber)
		state.CurrentState = models.StateName
		replies = append(replies, MsgNamePrompt)

	case models.StateName:
		name, err := ValidateName(response)
		if err != nil {
			return f.reject(ctx, participantID, MsgNameReject)
		}
		state.StateData[models.DataKeyName] = name
		state.CurrentState = models.StateAge
		profile.Name = name
		profile.UpdatedAt = time.Now()
		replies = append(replies, fmt.Sprintf(MsgNameConfirmFmt, name), MsgAgePrompt)

	case models.StateAge:
		age, err := ValidateAge(ctx, f.recognizer, response)
		if err != nil {
			if errors.Is(err, models.ErrAgeNotRecognized) {
				return f.reject(ctx, participantID, MsgAgeNotRecognized)
			}
			return f.reject(ctx, participantID, MsgAgeReject)
		}
		state.StateData[models.DataKeyAge] = strconv.Itoa(age)
		state.CurrentState = models.StateAddress
		profile.Age = age
		profile.UpdatedAt = time.Now()
		replies = append(replies, fmt.Sprintf(MsgAgeConfirmFmt, age), MsgAddressPrompt)

	case models.StateAddress:
		// The address is accepted verbatim; this is the terminal transition.
		state.StateData[models.DataKeyAddress] = response
		order, err := f.commitOrder(*state)
		if err != nil {
			// Fatal to the turn. The stored state is still at ADDRESS
			// (uncommitted), so the same turn can be retried.
			slog.Error("OrderFlow order commit failed", "error", err, "participantID", participantID)
			return fmt.Errorf("order commit failed: %w", err)
		}
		item, _ := f.catalog.Lookup(order.ItemNumber)
		replies = append(replies,
			fmt.Sprintf(MsgOrderPlacedFmt, item.Name, order.ID),
			MsgClosing)
		state.Reset()

	default:
		return fmt.Errorf("unsupported order flow state %q", state.CurrentState)
	}

	if err := f.sendAll(ctx, participantID, replies); err != nil {
		return err
	}

	state.UpdatedAt = time.Now()
	if err := f.stateManager.SaveTurn(ctx, state, profile); err != nil {
		return fmt.Errorf("failed to persist turn: %w", err)
	}
	slog.Debug("OrderFlow turn completed", "participantID", participantID, "state", state.CurrentState)
	return nil
}

// HandleJoin greets a newly joined participant with the menu and explicitly
// resets the flow to the item question.
func (f *OrderFlow) HandleJoin(ctx context.Context, participantID string) error {
	slog.Info("OrderFlow handling join", "participantID", participantID)

	_, profile, err := f.stateManager.LoadTurn(ctx, participantID, models.FlowTypeOrder)
	if err != nil {
		return fmt.Errorf("failed to load join state: %w", err)
	}
	if profile == nil {
		now := time.Now()
		profile = &models.Profile{ParticipantID: participantID, CreatedAt: now, UpdatedAt: now}
	}

	replies := []string{MsgWelcome, MsgMenuHeader}
	replies = append(replies, f.catalog.Listing()...)
	replies = append(replies, fmt.Sprintf(MsgItemPromptFmt, f.catalog.PromptHint()))
	if err := f.sendAll(ctx, participantID, replies); err != nil {
		return err
	}

	// The welcome forces the item question; any in-progress flow is replaced.
	state := models.NewOrderFlowState(participantID)
	if err := f.stateManager.SaveTurn(ctx, state, profile); err != nil {
		return fmt.Errorf("failed to persist join state: %w", err)
	}
	return nil
}

// commitOrder builds the order from the accumulated slots and persists it.
func (f *OrderFlow) commitOrder(state models.FlowState) (models.Order, error) {
	itemNumber, _ := strconv.Atoi(state.StateData[models.DataKeyItemNumber])
	age, _ := strconv.Atoi(state.StateData[models.DataKeyAge])
	order := models.Order{
		ItemNumber: itemNumber,
		Name:       state.StateData[models.DataKeyName],
		Age:        age,
		Address:    state.StateData[models.DataKeyAddress],
	}
	if err := order.Validate(); err != nil {
		return models.Order{}, err
	}
	return f.orders.CreateOrder(order)
}

// sendAll delivers the turn's replies in order; a failed send aborts the turn.
func (f *OrderFlow) sendAll(ctx context.Context, participantID string, replies []string) error {
	for _, reply := range replies {
		if err := f.msgService.SendMessage(ctx, participantID, reply); err != nil {
			slog.Error("OrderFlow send failed", "error", err, "participantID", participantID)
			return fmt.Errorf("failed to send reply: %w", err)
		}
	}
	return nil
}

// reject sends a rejection message and leaves all state untouched, so the
// same question is pending on the next turn.
func (f *OrderFlow) reject(ctx context.Context, participantID, message string) error {
	slog.Debug("OrderFlow rejecting input", "participantID", participantID)
	return f.msgService.SendMessage(ctx, participantID, message)
}
