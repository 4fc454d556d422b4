package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/store"
)

// mockService implements Service with recorded sends and injectable channels.
type mockService struct {
	sent      []string
	sendErr   error
	receipts  chan models.Receipt
	responses chan models.Response
	joins     chan models.JoinEvent
}

func newMockService() *mockService {
	return &mockService{
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
		responses: make(chan models.Response, DefaultChannelBufferSize),
		joins:     make(chan models.JoinEvent, DefaultChannelBufferSize),
	}
}

func (m *mockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhoneNumber(recipient)
}

func (m *mockService) SendMessage(ctx context.Context, to, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, body)
	return nil
}

func (m *mockService) Start(ctx context.Context) error   { return nil }
func (m *mockService) Stop() error                       { return nil }
func (m *mockService) Receipts() <-chan models.Receipt   { return m.receipts }
func (m *mockService) Responses() <-chan models.Response { return m.responses }
func (m *mockService) Joins() <-chan models.JoinEvent    { return m.joins }

// mockDialog records dialog calls and can fail turns. Guarded by a mutex so
// the run-loop test can poll from the test goroutine.
type mockDialog struct {
	mu      sync.Mutex
	turns   []string
	joins   []string
	turnErr error
}

func (d *mockDialog) ProcessResponse(ctx context.Context, participantID, response string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.turnErr != nil {
		return d.turnErr
	}
	d.turns = append(d.turns, participantID+":"+response)
	return nil
}

func (d *mockDialog) HandleJoin(ctx context.Context, participantID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.joins = append(d.joins, participantID)
	return nil
}

func (d *mockDialog) snapshot() (turns, joins []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.turns...), append([]string(nil), d.joins...)
}

func TestResponseHandlerProcessResponse(t *testing.T) {
	svc := newMockService()
	dialog := &mockDialog{}
	st := store.NewInMemoryStore()
	rh := NewResponseHandler(svc, dialog, st)

	response := models.Response{From: "+1 (555) 123-4567", Body: "2", Time: time.Now().Unix()}
	if err := rh.ProcessResponse(context.Background(), response); err != nil {
		t.Fatalf("ProcessResponse error: %v", err)
	}

	turns, _ := dialog.snapshot()
	if len(turns) != 1 || turns[0] != "15551234567:2" {
		t.Errorf("dialog turns = %v, want one canonicalized turn", turns)
	}

	recorded, err := st.GetResponses()
	if err != nil {
		t.Fatalf("GetResponses error: %v", err)
	}
	if len(recorded) != 1 || recorded[0].From != "15551234567" || recorded[0].Body != "2" {
		t.Errorf("recorded responses = %+v", recorded)
	}
}

func TestResponseHandlerInvalidSender(t *testing.T) {
	svc := newMockService()
	dialog := &mockDialog{}
	rh := NewResponseHandler(svc, dialog, store.NewInMemoryStore())

	response := models.Response{From: "not a number", Body: "2", Time: time.Now().Unix()}
	if err := rh.ProcessResponse(context.Background(), response); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if turns, _ := dialog.snapshot(); len(turns) != 0 {
		t.Errorf("invalid sender reached the dialog: %v", turns)
	}
}

func TestResponseHandlerTurnFailureSendsApology(t *testing.T) {
	svc := newMockService()
	dialog := &mockDialog{turnErr: errors.New("commit failed")}
	st := store.NewInMemoryStore()
	rh := NewResponseHandler(svc, dialog, st)

	response := models.Response{From: "15551234567", Body: "9 Low Street", Time: time.Now().Unix()}
	if err := rh.ProcessResponse(context.Background(), response); err == nil {
		t.Fatal("expected turn failure, got nil")
	}

	if len(svc.sent) != 1 || svc.sent[0] != processingErrorMessage {
		t.Errorf("sent = %v, want apology message", svc.sent)
	}

	// The inbound message is still recorded.
	recorded, err := st.GetResponses()
	if err != nil {
		t.Fatalf("GetResponses error: %v", err)
	}
	if len(recorded) != 1 {
		t.Errorf("recorded %d responses, want 1", len(recorded))
	}
}

func TestResponseHandlerProcessJoin(t *testing.T) {
	svc := newMockService()
	dialog := &mockDialog{}
	rh := NewResponseHandler(svc, dialog, store.NewInMemoryStore())

	join := models.JoinEvent{ParticipantID: "+15559998888", Time: time.Now().Unix()}
	if err := rh.ProcessJoin(context.Background(), join); err != nil {
		t.Fatalf("ProcessJoin error: %v", err)
	}
	if _, joins := dialog.snapshot(); len(joins) != 1 || joins[0] != "15559998888" {
		t.Errorf("dialog joins = %v", joins)
	}
}

func TestResponseHandlerRunConsumesChannels(t *testing.T) {
	svc := newMockService()
	dialog := &mockDialog{}
	st := store.NewInMemoryStore()
	rh := NewResponseHandler(svc, dialog, st)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rh.Run(ctx)
		close(done)
	}()

	svc.responses <- models.Response{From: "15551230001", Body: "1", Time: time.Now().Unix()}
	svc.joins <- models.JoinEvent{ParticipantID: "15551230002", Time: time.Now().Unix()}
	svc.receipts <- models.Receipt{To: "15551230001", Status: models.MessageStatusSent, Time: time.Now().Unix()}

	deadline := time.After(2 * time.Second)
	for {
		receipts, err := st.GetReceipts()
		if err != nil {
			t.Fatalf("GetReceipts error: %v", err)
		}
		turns, joins := dialog.snapshot()
		if len(turns) == 1 && len(joins) == 1 && len(receipts) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("run loop did not consume events: turns=%v joins=%v receipts=%d",
				turns, joins, len(receipts))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop on context cancellation")
	}
}
