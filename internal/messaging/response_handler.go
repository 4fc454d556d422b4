// Package messaging provides response handling functionality for stateful interactions.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/util"
)

// processingErrorMessage is sent to the participant when their turn fails.
const processingErrorMessage = "⚠️ We encountered an issue processing your response. Please try again or contact support."

// DialogFlow is the dialog engine surface the handler routes events into.
type DialogFlow interface {
	// ProcessResponse consumes one inbound turn for a participant.
	ProcessResponse(ctx context.Context, participantID, response string) error
	// HandleJoin greets a participant who just joined the channel.
	HandleJoin(ctx context.Context, participantID string) error
}

// EventStore records the message traffic the handler observes.
type EventStore interface {
	AddResponse(response models.Response) error
	AddReceipt(receipt models.Receipt) error
}

// ResponseHandler routes the transport's event channels into the order
// dialog: every inbound message becomes one dialog turn, joins produce the
// menu greeting, and all traffic is recorded in the store.
type ResponseHandler struct {
	msgService Service
	dialog     DialogFlow
	events     EventStore
}

// NewResponseHandler creates a new ResponseHandler with the given
// collaborators.
func NewResponseHandler(msgService Service, dialog DialogFlow, events EventStore) *ResponseHandler {
	return &ResponseHandler{
		msgService: msgService,
		dialog:     dialog,
		events:     events,
	}
}

// Run consumes the transport's channels until the context is cancelled.
// Each event is handled inline; the dialog engine serializes per-participant
// state through the store, and dropped channel events only cost a greeting
// or a re-prompt, never stored order data.
func (rh *ResponseHandler) Run(ctx context.Context) {
	slog.Info("ResponseHandler run loop starting")
	for {
		select {
		case <-ctx.Done():
			slog.Info("ResponseHandler run loop stopping", "reason", ctx.Err())
			return
		case response, ok := <-rh.msgService.Responses():
			if !ok {
				slog.Info("ResponseHandler responses channel closed")
				return
			}
			if err := rh.ProcessResponse(ctx, response); err != nil {
				slog.Error("ResponseHandler response processing failed", "error", err, "from", response.From)
			}
		case join, ok := <-rh.msgService.Joins():
			if !ok {
				slog.Info("ResponseHandler joins channel closed")
				return
			}
			if err := rh.ProcessJoin(ctx, join); err != nil {
				slog.Error("ResponseHandler join processing failed", "error", err, "participant", join.ParticipantID)
			}
		case receipt, ok := <-rh.msgService.Receipts():
			if !ok {
				slog.Info("ResponseHandler receipts channel closed")
				return
			}
			rh.recordReceipt(receipt)
		}
	}
}

// ProcessResponse records an inbound message and runs it through the dialog
// engine as one turn. A failed turn produces an apology reply; the recorded
// response is kept either way.
func (rh *ResponseHandler) ProcessResponse(ctx context.Context, response models.Response) error {
	canonicalFrom, err := rh.msgService.ValidateAndCanonicalizeRecipient(response.From)
	if err != nil {
		slog.Error("ResponseHandler ProcessResponse validation failed", "error", err, "from", response.From)
		return fmt.Errorf("invalid sender: %w", err)
	}

	turnID := util.GenerateTurnID()
	slog.Debug("ResponseHandler processing response", "turnID", turnID, "from", canonicalFrom, "body_length", len(response.Body))

	response.From = canonicalFrom
	if err := rh.events.AddResponse(response); err != nil {
		slog.Error("ResponseHandler failed to record response", "error", err, "turnID", turnID, "from", canonicalFrom)
		// Recording is best effort; the turn still runs.
	}

	if err := rh.dialog.ProcessResponse(ctx, canonicalFrom, response.Body); err != nil {
		slog.Error("ResponseHandler dialog turn failed", "error", err, "turnID", turnID, "from", canonicalFrom)
		if sendErr := rh.msgService.SendMessage(ctx, canonicalFrom, processingErrorMessage); sendErr != nil {
			slog.Error("ResponseHandler failed to send error message", "error", sendErr, "turnID", turnID, "from", canonicalFrom)
		}
		return fmt.Errorf("dialog turn failed: %w", err)
	}

	slog.Info("ResponseHandler turn completed", "turnID", turnID, "from", canonicalFrom)
	return nil
}

// ProcessJoin greets a newly joined participant with the welcome and menu.
func (rh *ResponseHandler) ProcessJoin(ctx context.Context, join models.JoinEvent) error {
	canonical, err := rh.msgService.ValidateAndCanonicalizeRecipient(join.ParticipantID)
	if err != nil {
		slog.Error("ResponseHandler ProcessJoin validation failed", "error", err, "participant", join.ParticipantID)
		return fmt.Errorf("invalid participant: %w", err)
	}

	slog.Debug("ResponseHandler processing join", "participant", canonical)
	if err := rh.dialog.HandleJoin(ctx, canonical); err != nil {
		slog.Error("ResponseHandler join greeting failed", "error", err, "participant", canonical)
		return fmt.Errorf("join greeting failed: %w", err)
	}

	slog.Info("ResponseHandler join handled", "participant", canonical)
	return nil
}

func (rh *ResponseHandler) recordReceipt(receipt models.Receipt) {
	if err := rh.events.AddReceipt(receipt); err != nil {
		slog.Error("ResponseHandler failed to record receipt", "error", err, "to", receipt.To)
		return
	}
	slog.Debug("ResponseHandler receipt recorded", "to", receipt.To, "status", receipt.Status)
}
