package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// EnglishRecognizer is a deterministic, offline number recognizer for English.
// It handles digit literals, spelled-out numbers ("twelve", "twenty one",
// "one hundred five") and common idioms ("a dozen", "a couple").
type EnglishRecognizer struct{}

// NewEnglishRecognizer creates a new offline English recognizer.
func NewEnglishRecognizer() *EnglishRecognizer {
	return &EnglishRecognizer{}
}

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// multiplierWords scale the accumulated value; a bare article before them
// counts as one ("a dozen" = 12, "a hundred" = 100).
var multiplierWords = map[string]int{
	"dozen":    12,
	"couple":   2,
	"hundred":  100,
	"thousand": 1000,
}

// RecognizeNumber scans the text for numeric values and returns them in order
// of appearance. It fails when the culture is unsupported or no number is
// found.
func (r *EnglishRecognizer) RecognizeNumber(ctx context.Context, text, culture string) ([]Resolution, error) {
	if culture != CultureEnglish {
		return nil, fmt.Errorf("unsupported culture %q", culture)
	}

	var resolutions []Resolution
	// Accumulator for a run of number words.
	var acc int
	inNumber := false

	flush := func() {
		if inNumber {
			resolutions = append(resolutions, Resolution{Value: strconv.Itoa(acc)})
		}
		acc = 0
		inNumber = false
	}

	for _, raw := range strings.Fields(strings.ToLower(text)) {
		for _, tok := range strings.Split(raw, "-") {
			tok = strings.Trim(tok, ".,!?;:\"'()")
			if tok == "" {
				continue
			}

			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				flush()
				resolutions = append(resolutions, Resolution{Value: strconv.Itoa(int(v))})
				continue
			}

			switch {
			case tok == "a" || tok == "an":
				// Only meaningful directly before a multiplier ("a dozen").
				flush()
			case tok == "and" && inNumber:
				// "one hundred and five" stays one number.
			case unitWords[tok] != 0 || tok == "zero":
				acc += unitWords[tok]
				inNumber = true
			case tensWords[tok] != 0:
				acc += tensWords[tok]
				inNumber = true
			case multiplierWords[tok] != 0:
				// A bare or article-prefixed multiplier counts as one unit:
				// "dozen" and "a dozen" both mean 12.
				if acc == 0 {
					acc = 1
				}
				acc *= multiplierWords[tok]
				inNumber = true
			default:
				flush()
			}
		}
	}
	flush()

	if len(resolutions) == 0 {
		slog.Debug("EnglishRecognizer found no numeric value", "text_length", len(text))
		return nil, fmt.Errorf("no numeric value recognized")
	}
	return resolutions, nil
}
