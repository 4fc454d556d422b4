package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/genai"
)

// genaiSystemPrompt instructs the model to behave as a number extractor.
const genaiSystemPrompt = "You extract numeric values from short English phrases. " +
	"Reply with only a JSON array containing every number expressed in the text, " +
	"in the order it appears. Interpret spelled-out and idiomatic quantities " +
	"(\"twelve\", \"a dozen\", \"mid twenties\") as numbers. Reply with [] when " +
	"the text contains no number."

// GenAIRecognizer resolves numbers with an OpenAI chat model. It augments the
// offline recognizer with looser phrasing ("around thirty", "mid twenties").
type GenAIRecognizer struct {
	client genai.ClientInterface
}

// NewGenAIRecognizer creates a recognizer backed by the given GenAI client.
func NewGenAIRecognizer(client genai.ClientInterface) *GenAIRecognizer {
	return &GenAIRecognizer{client: client}
}

// RecognizeNumber asks the model for every number in the text and returns the
// parsed candidates in the model's order.
func (r *GenAIRecognizer) RecognizeNumber(ctx context.Context, text, culture string) ([]Resolution, error) {
	if culture != CultureEnglish {
		return nil, fmt.Errorf("unsupported culture %q", culture)
	}

	reply, err := r.client.GeneratePrompt(ctx, genaiSystemPrompt, text)
	if err != nil {
		slog.Error("GenAIRecognizer completion failed", "error", err)
		return nil, fmt.Errorf("number recognition failed: %w", err)
	}

	values, err := parseNumberArray(reply)
	if err != nil {
		slog.Error("GenAIRecognizer unparseable reply", "error", err, "reply_length", len(reply))
		return nil, fmt.Errorf("number recognition returned unparseable reply: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no numeric value recognized")
	}

	resolutions := make([]Resolution, 0, len(values))
	for _, v := range values {
		resolutions = append(resolutions, Resolution{Value: strconv.Itoa(int(v))})
	}
	return resolutions, nil
}

// parseNumberArray decodes a JSON number array, tolerating markdown code
// fences around the payload.
func parseNumberArray(reply string) ([]float64, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var values []float64
	if err := json.Unmarshal([]byte(cleaned), &values); err != nil {
		return nil, err
	}
	return values, nil
}
