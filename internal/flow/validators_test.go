package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/menu"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/models"
	"github.com/AmritaSarjana/Yo-Yo-Pizza-Assistant/internal/recognize"
)

// fakeRecognizer returns scripted resolutions for age validation tests.
type fakeRecognizer struct {
	resolutions []recognize.Resolution
	err         error
}

func (r *fakeRecognizer) RecognizeNumber(ctx context.Context, text, culture string) ([]recognize.Resolution, error) {
	return r.resolutions, r.err
}

func TestValidateItem(t *testing.T) {
	catalog := menu.Default()

	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "first item", input: "1", want: 1, ok: true},
		{name: "last item", input: "3", want: 3, ok: true},
		{name: "surrounding whitespace", input: "  2  ", want: 2, ok: true},
		{name: "not in catalog", input: "4", ok: false},
		{name: "zero", input: "0", ok: false},
		{name: "negative", input: "-1", ok: false},
		{name: "word", input: "one", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateItem(tt.input, catalog)
			if tt.ok {
				if err != nil {
					t.Fatalf("ValidateItem(%q) unexpected error: %v", tt.input, err)
				}
				if got != tt.want {
					t.Errorf("ValidateItem(%q) = %d, want %d", tt.input, got, tt.want)
				}
				return
			}
			if !errors.Is(err, models.ErrInvalidItem) {
				t.Errorf("ValidateItem(%q) error = %v, want ErrInvalidItem", tt.input, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "plain", input: "Alice", want: "Alice", ok: true},
		{name: "trims whitespace", input: "  Bob  ", want: "Bob", ok: true},
		{name: "single character", input: "x", want: "x", ok: true},
		{name: "empty", input: "", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if tt.ok {
				if err != nil {
					t.Fatalf("ValidateName(%q) unexpected error: %v", tt.input, err)
				}
				if got != tt.want {
					t.Errorf("ValidateName(%q) = %q, want %q", tt.input, got, tt.want)
				}
				return
			}
			if !errors.Is(err, models.ErrEmptyName) {
				t.Errorf("ValidateName(%q) error = %v, want ErrEmptyName", tt.input, err)
			}
		})
	}
}

func TestValidateAge(t *testing.T) {
	ctx := context.Background()

	t.Run("english digits", func(t *testing.T) {
		age, err := ValidateAge(ctx, recognize.NewEnglishRecognizer(), "25")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if age != 25 {
			t.Errorf("age = %d, want 25", age)
		}
	})

	t.Run("english words", func(t *testing.T) {
		age, err := ValidateAge(ctx, recognize.NewEnglishRecognizer(), "I am twenty five years old")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if age != 25 {
			t.Errorf("age = %d, want 25", age)
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		for _, input := range []string{"18", "120"} {
			if _, err := ValidateAge(ctx, recognize.NewEnglishRecognizer(), input); err != nil {
				t.Errorf("ValidateAge(%q) unexpected error: %v", input, err)
			}
		}
		for _, input := range []string{"17", "121"} {
			if _, err := ValidateAge(ctx, recognize.NewEnglishRecognizer(), input); !errors.Is(err, models.ErrAgeOutOfRange) {
				t.Errorf("ValidateAge(%q) error = %v, want ErrAgeOutOfRange", input, err)
			}
		}
	})

	t.Run("recognition failure maps to not recognized", func(t *testing.T) {
		rec := &fakeRecognizer{err: errors.New("no numbers found")}
		if _, err := ValidateAge(ctx, rec, "no idea"); !errors.Is(err, models.ErrAgeNotRecognized) {
			t.Errorf("error = %v, want ErrAgeNotRecognized", err)
		}
	})

	t.Run("first in-range candidate wins", func(t *testing.T) {
		rec := &fakeRecognizer{resolutions: []recognize.Resolution{
			{Value: "150"},
			{Value: "30"},
			{Value: "40"},
		}}
		age, err := ValidateAge(ctx, rec, "150 or 30 or 40")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if age != 30 {
			t.Errorf("age = %d, want 30 (first in-range candidate)", age)
		}
	})

	t.Run("fractional resolution truncates", func(t *testing.T) {
		rec := &fakeRecognizer{resolutions: []recognize.Resolution{{Value: "25.9"}}}
		age, err := ValidateAge(ctx, rec, "25.9")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if age != 25 {
			t.Errorf("age = %d, want 25", age)
		}
	})

	t.Run("all candidates out of range", func(t *testing.T) {
		rec := &fakeRecognizer{resolutions: []recognize.Resolution{{Value: "5"}, {Value: "200"}}}
		if _, err := ValidateAge(ctx, rec, "5 or 200"); !errors.Is(err, models.ErrAgeOutOfRange) {
			t.Errorf("error = %v, want ErrAgeOutOfRange", err)
		}
	})
}
