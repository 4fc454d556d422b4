// Package recognize provides natural-language number recognition for dialog
// validators.
//
// It interprets both digit strings ("12") and spelled-out or approximate
// phrases ("twelve", "a dozen") as candidate numeric values. Recognition
// failure is reported as an error; callers at the validation boundary are
// expected to convert it into a rejection rather than propagate it.
package recognize

import "context"

// Culture constants for recognition. Only English is supported.
const (
	CultureEnglish = "en-us"
)

// Resolution is one candidate numeric interpretation of the input text.
// Value holds the processed numeric string.
type Resolution struct {
	Value string `json:"value"`
}

// Recognizer resolves free text into candidate numeric values.
// Implementations must return candidates in a deterministic order (order of
// appearance in the input) so that callers can apply a first-match policy.
type Recognizer interface {
	RecognizeNumber(ctx context.Context, text, culture string) ([]Resolution, error)
}
