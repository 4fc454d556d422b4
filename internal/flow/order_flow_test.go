package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/menu"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/recognize"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/store"
)

// mockMessagingService records outbound messages and can fail on demand.
type mockMessagingService struct {
	sent    []string
	sendErr error
}

func (m *mockMessagingService) SendMessage(ctx context.Context, to, message string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, message)
	return nil
}

func (m *mockMessagingService) lastSent(t *testing.T) string {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return m.sent[len(m.sent)-1]
}

func newTestFlow(t *testing.T) (*OrderFlow, *mockMessagingService, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	msgService := &mockMessagingService{}
	f := NewOrderFlow(NewStoreBasedStateManager(st), st, msgService, recognize.NewEnglishRecognizer(), menu.Default())
	return f, msgService, st
}

func mustState(t *testing.T, st *store.InMemoryStore, participantID string) models.StateType {
	t.Helper()
	state, err := st.GetFlowState(participantID, string(models.FlowTypeOrder))
	if err != nil {
		t.Fatalf("GetFlowState error: %v", err)
	}
	if state == nil {
		t.Fatal("no flow state stored")
	}
	return state.CurrentState
}

func TestOrderFlowHappyPath(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15551234567"

	// Item selection.
	if err := f.ProcessResponse(ctx, participant, "2"); err != nil {
		t.Fatalf("item turn failed: %v", err)
	}
	if got := msgService.lastSent(t); got != MsgNamePrompt {
		t.Errorf("after item turn sent %q, want %q", got, MsgNamePrompt)
	}
	if got := mustState(t, st, participant); got != models.StateName {
		t.Errorf("state = %q, want %q", got, models.StateName)
	}

	// Name.
	if err := f.ProcessResponse(ctx, participant, "Alice"); err != nil {
		t.Fatalf("name turn failed: %v", err)
	}
	wantConfirm := fmt.Sprintf(MsgNameConfirmFmt, "Alice")
	if got := msgService.sent[len(msgService.sent)-2]; got != wantConfirm {
		t.Errorf("name confirmation = %q, want %q", got, wantConfirm)
	}
	if got := msgService.lastSent(t); got != MsgAgePrompt {
		t.Errorf("after name turn sent %q, want %q", got, MsgAgePrompt)
	}

	// Age, spelled out.
	if err := f.ProcessResponse(ctx, participant, "I am twenty five"); err != nil {
		t.Fatalf("age turn failed: %v", err)
	}
	wantConfirm = fmt.Sprintf(MsgAgeConfirmFmt, 25)
	if got := msgService.sent[len(msgService.sent)-2]; got != wantConfirm {
		t.Errorf("age confirmation = %q, want %q", got, wantConfirm)
	}
	if got := msgService.lastSent(t); got != MsgAddressPrompt {
		t.Errorf("after age turn sent %q, want %q", got, MsgAddressPrompt)
	}

	// Address commits the order.
	if err := f.ProcessResponse(ctx, participant, "12 Baker Street"); err != nil {
		t.Fatalf("address turn failed: %v", err)
	}
	if got := msgService.lastSent(t); got != MsgClosing {
		t.Errorf("closing message = %q, want %q", got, MsgClosing)
	}
	placed := msgService.sent[len(msgService.sent)-2]
	if !strings.Contains(placed, "Your Order of Veg Pizza is Placed with id ") {
		t.Errorf("order confirmation = %q, want Veg Pizza placement", placed)
	}

	orders, err := st.GetOrders()
	if err != nil {
		t.Fatalf("GetOrders error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	order := orders[0]
	if order.ItemNumber != 2 || order.Name != "Alice" || order.Age != 25 || order.Address != "12 Baker Street" {
		t.Errorf("order = %+v, want item 2, Alice, 25, 12 Baker Street", order)
	}
	if order.ID == "" {
		t.Error("order ID not assigned")
	}

	if got := mustState(t, st, participant); got != models.StateNone {
		t.Errorf("final state = %q, want %q", got, models.StateNone)
	}

	profile, err := st.GetProfile(participant)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if profile == nil || profile.Name != "Alice" || profile.Age != 25 {
		t.Errorf("profile = %+v, want Alice aged 25", profile)
	}
}

func TestOrderFlowInvalidItemReprompts(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000001"

	for _, input := range []string{"7", "pizza", ""} {
		if err := f.ProcessResponse(ctx, participant, input); err != nil {
			t.Fatalf("ProcessResponse(%q) failed: %v", input, err)
		}
		if got := msgService.lastSent(t); got != MsgInvalidItem {
			t.Errorf("ProcessResponse(%q) sent %q, want %q", input, got, MsgInvalidItem)
		}
	}

	// Rejected turns persist nothing; the item question is still pending.
	state, err := st.GetFlowState(participant, string(models.FlowTypeOrder))
	if err != nil {
		t.Fatalf("GetFlowState error: %v", err)
	}
	if state != nil {
		t.Errorf("rejected turns stored state %+v, want none", state)
	}

	// A valid answer then advances as usual.
	if err := f.ProcessResponse(ctx, participant, "1"); err != nil {
		t.Fatalf("valid item turn failed: %v", err)
	}
	if got := mustState(t, st, participant); got != models.StateName {
		t.Errorf("state = %q, want %q", got, models.StateName)
	}
}

func TestOrderFlowNameRejection(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000002"

	if err := f.ProcessResponse(ctx, participant, "1"); err != nil {
		t.Fatalf("item turn failed: %v", err)
	}
	if err := f.ProcessResponse(ctx, participant, "   "); err != nil {
		t.Fatalf("name turn failed: %v", err)
	}
	if got := msgService.lastSent(t); got != MsgNameReject {
		t.Errorf("sent %q, want %q", got, MsgNameReject)
	}
	if got := mustState(t, st, participant); got != models.StateName {
		t.Errorf("state = %q, want %q (rejection must not advance)", got, models.StateName)
	}
}

func TestOrderFlowAgeRejections(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000003"

	if err := f.ProcessResponse(ctx, participant, "1"); err != nil {
		t.Fatalf("item turn failed: %v", err)
	}
	if err := f.ProcessResponse(ctx, participant, "Bob"); err != nil {
		t.Fatalf("name turn failed: %v", err)
	}

	// Recognized but out of range.
	if err := f.ProcessResponse(ctx, participant, "12"); err != nil {
		t.Fatalf("age turn failed: %v", err)
	}
	if got := msgService.lastSent(t); got != MsgAgeReject {
		t.Errorf("out-of-range age sent %q, want %q", got, MsgAgeReject)
	}

	// Not recognizable as a number at all.
	if err := f.ProcessResponse(ctx, participant, "none of your business"); err != nil {
		t.Fatalf("age turn failed: %v", err)
	}
	if got := msgService.lastSent(t); got != MsgAgeNotRecognized {
		t.Errorf("unrecognized age sent %q, want %q", got, MsgAgeNotRecognized)
	}

	if got := mustState(t, st, participant); got != models.StateAge {
		t.Errorf("state = %q, want %q (rejections must not advance)", got, models.StateAge)
	}

	// The slot is still fillable.
	if err := f.ProcessResponse(ctx, participant, "44"); err != nil {
		t.Fatalf("age turn failed: %v", err)
	}
	if got := mustState(t, st, participant); got != models.StateAddress {
		t.Errorf("state = %q, want %q", got, models.StateAddress)
	}
}

func TestOrderFlowTrackCommand(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000004"

	if err := f.ProcessResponse(ctx, participant, "1"); err != nil {
		t.Fatalf("item turn failed: %v", err)
	}

	for _, input := range []string{"track", "TRACK", "  Track  "} {
		if err := f.ProcessResponse(ctx, participant, input); err != nil {
			t.Fatalf("track turn failed: %v", err)
		}
		got := msgService.lastSent(t)
		known := false
		for _, phrase := range OrderStatusPhrases {
			if got == phrase {
				known = true
			}
		}
		if !known {
			t.Errorf("track reply %q is not a known status phrase", got)
		}
	}

	// The track command never touches the dialog state.
	if got := mustState(t, st, participant); got != models.StateName {
		t.Errorf("state = %q, want %q after track commands", got, models.StateName)
	}
}

func TestOrderFlowRestartAfterCompletion(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000005"

	for _, input := range []string{"3", "Carol", "30", "5 High Street"} {
		if err := f.ProcessResponse(ctx, participant, input); err != nil {
			t.Fatalf("ProcessResponse(%q) failed: %v", input, err)
		}
	}
	if got := mustState(t, st, participant); got != models.StateNone {
		t.Fatalf("state after completion = %q, want %q", got, models.StateNone)
	}

	// Any new input restarts the cycle at the item question.
	if err := f.ProcessResponse(ctx, participant, "hello again"); err != nil {
		t.Fatalf("restart turn failed: %v", err)
	}
	if got := msgService.lastSent(t); !strings.HasPrefix(got, "Please enter number to place your Order(") {
		t.Errorf("restart sent %q, want item prompt", got)
	}
	state, err := st.GetFlowState(participant, string(models.FlowTypeOrder))
	if err != nil {
		t.Fatalf("GetFlowState error: %v", err)
	}
	if state.CurrentState != models.StateItem {
		t.Errorf("state = %q, want %q", state.CurrentState, models.StateItem)
	}
	if len(state.StateData) != 0 {
		t.Errorf("restart kept slot data %v, want empty", state.StateData)
	}

	// A second complete pass produces a second order.
	for _, input := range []string{"1", "Carol", "30", "5 High Street"} {
		if err := f.ProcessResponse(ctx, participant, input); err != nil {
			t.Fatalf("second pass ProcessResponse(%q) failed: %v", input, err)
		}
	}
	orders, err := st.GetOrders()
	if err != nil {
		t.Fatalf("GetOrders error: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("got %d orders, want 2", len(orders))
	}
}

func TestOrderFlowCommitFailureKeepsAddressState(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000006"

	for _, input := range []string{"2", "Dave", "50"} {
		if err := f.ProcessResponse(ctx, participant, input); err != nil {
			t.Fatalf("ProcessResponse(%q) failed: %v", input, err)
		}
	}

	st.FailNextCreateOrder(errors.New("disk full"))
	sentBefore := len(msgService.sent)
	if err := f.ProcessResponse(ctx, participant, "9 Low Street"); err == nil {
		t.Fatal("expected commit failure, got nil")
	}
	if len(msgService.sent) != sentBefore {
		t.Errorf("failed commit sent %d messages, want none", len(msgService.sent)-sentBefore)
	}
	if got := mustState(t, st, participant); got != models.StateAddress {
		t.Errorf("state after failed commit = %q, want %q", got, models.StateAddress)
	}

	// Retrying the same turn succeeds.
	st.FailNextCreateOrder(nil)
	if err := f.ProcessResponse(ctx, participant, "9 Low Street"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := mustState(t, st, participant); got != models.StateNone {
		t.Errorf("state after retry = %q, want %q", got, models.StateNone)
	}
	orders, err := st.GetOrders()
	if err != nil {
		t.Fatalf("GetOrders error: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("got %d orders, want 1", len(orders))
	}
}

func TestOrderFlowSendFailureSkipsSave(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000007"

	msgService.sendErr = errors.New("connection reset")
	if err := f.ProcessResponse(ctx, participant, "1"); err == nil {
		t.Fatal("expected send failure, got nil")
	}

	state, err := st.GetFlowState(participant, string(models.FlowTypeOrder))
	if err != nil {
		t.Fatalf("GetFlowState error: %v", err)
	}
	if state != nil {
		t.Errorf("failed turn stored state %+v, want none", state)
	}
}

func TestOrderFlowHandleJoin(t *testing.T) {
	f, msgService, st := newTestFlow(t)
	ctx := context.Background()
	const participant = "+15550000008"

	// A join mid-dialog discards progress and restarts at the item question.
	if err := f.ProcessResponse(ctx, participant, "1"); err != nil {
		t.Fatalf("item turn failed: %v", err)
	}
	if err := f.HandleJoin(ctx, participant); err != nil {
		t.Fatalf("HandleJoin failed: %v", err)
	}

	joined := msgService.sent[1:] // skip the name prompt from the first turn
	if joined[0] != MsgWelcome {
		t.Errorf("first join message = %q, want %q", joined[0], MsgWelcome)
	}
	if joined[1] != MsgMenuHeader {
		t.Errorf("second join message = %q, want %q", joined[1], MsgMenuHeader)
	}
	listing := menu.Default().Listing()
	for i, line := range listing {
		if joined[2+i] != line {
			t.Errorf("menu line %d = %q, want %q", i, joined[2+i], line)
		}
	}
	last := joined[len(joined)-1]
	if !strings.HasPrefix(last, "Please enter number to place your Order(") {
		t.Errorf("last join message = %q, want item prompt", last)
	}

	state, err := st.GetFlowState(participant, string(models.FlowTypeOrder))
	if err != nil {
		t.Fatalf("GetFlowState error: %v", err)
	}
	if state.CurrentState != models.StateItem {
		t.Errorf("state after join = %q, want %q", state.CurrentState, models.StateItem)
	}
	if len(state.StateData) != 0 {
		t.Errorf("join kept slot data %v, want empty", state.StateData)
	}
}
