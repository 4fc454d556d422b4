package recognize

import (
	"context"
	"errors"
	"testing"
)

// mockChatClient returns a scripted reply for GeneratePrompt.
type mockChatClient struct {
	reply string
	err   error
}

func (m *mockChatClient) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.reply, m.err
}

func TestGenAIRecognizer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{name: "plain array", reply: "[25]", want: []string{"25"}},
		{name: "multiple values keep order", reply: "[150, 30, 40]", want: []string{"150", "30", "40"}},
		{name: "fenced payload", reply: "```json\n[25]\n```", want: []string{"25"}},
		{name: "fractional values truncate", reply: "[25.5]", want: []string{"25"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewGenAIRecognizer(&mockChatClient{reply: tt.reply})
			got, err := rec.RecognizeNumber(ctx, "whatever", CultureEnglish)
			if err != nil {
				t.Fatalf("RecognizeNumber error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("RecognizeNumber = %v, want %v", got, tt.want)
			}
			for i, res := range got {
				if res.Value != tt.want[i] {
					t.Errorf("resolution %d = %q, want %q", i, res.Value, tt.want[i])
				}
			}
		})
	}
}

func TestGenAIRecognizerEmptyArray(t *testing.T) {
	rec := NewGenAIRecognizer(&mockChatClient{reply: "[]"})
	if _, err := rec.RecognizeNumber(context.Background(), "no idea", CultureEnglish); err == nil {
		t.Error("empty array accepted, want error")
	}
}

func TestGenAIRecognizerUnparseableReply(t *testing.T) {
	rec := NewGenAIRecognizer(&mockChatClient{reply: "I think the answer is 25"})
	if _, err := rec.RecognizeNumber(context.Background(), "25", CultureEnglish); err == nil {
		t.Error("unparseable reply accepted, want error")
	}
}

func TestGenAIRecognizerCompletionFailure(t *testing.T) {
	rec := NewGenAIRecognizer(&mockChatClient{err: errors.New("rate limited")})
	if _, err := rec.RecognizeNumber(context.Background(), "25", CultureEnglish); err == nil {
		t.Error("completion failure not propagated")
	}
}

func TestGenAIRecognizerRejectsUnknownCulture(t *testing.T) {
	rec := NewGenAIRecognizer(&mockChatClient{reply: "[25]"})
	if _, err := rec.RecognizeNumber(context.Background(), "25", "fr-fr"); err == nil {
		t.Error("unknown culture accepted, want error")
	}
}
