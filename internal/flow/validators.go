package flow

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/menu"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/recognize"
)

// ValidateItem parses the input as an integer and checks that it is a key in
// the catalog. It returns models.ErrInvalidItem for anything else; callers
// reply with a generic rejection and do not explain which check failed.
func ValidateItem(input string, catalog menu.Catalog) (int, error) {
	number, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, models.ErrInvalidItem
	}
	if _, ok := catalog.Lookup(number); !ok {
		return 0, models.ErrInvalidItem
	}
	return number, nil
}

// ValidateName trims surrounding whitespace and accepts any non-empty result,
// returning the trimmed value exactly. Whitespace-only input counts as empty.
func ValidateName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return "", models.ErrEmptyName
	}
	return name, nil
}

// ValidateAge resolves the input through the number recognizer and accepts
// the first candidate, in the recognizer's returned order, whose integer
// value lies in [MinAge, MaxAge]. Recognition failure is converted into a
// rejection and never propagated.
func ValidateAge(ctx context.Context, recognizer recognize.Recognizer, input string) (int, error) {
	resolutions, err := recognizer.RecognizeNumber(ctx, input, recognize.CultureEnglish)
	if err != nil {
		slog.Debug("ValidateAge recognition failed", "error", err)
		return 0, models.ErrAgeNotRecognized
	}

	for _, res := range resolutions {
		age, err := parseIntValue(res.Value)
		if err != nil {
			continue
		}
		if age >= models.MinAge && age <= models.MaxAge {
			return age, nil
		}
	}
	return 0, models.ErrAgeOutOfRange
}

// parseIntValue parses a candidate value, truncating fractional resolutions.
func parseIntValue(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
