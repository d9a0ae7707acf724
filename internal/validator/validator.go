// Package validator checks that an edited text is still written in the
// language of the text it was edited from.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/aclarador/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// ErrLanguageDrift is returned when an edit changed the language of the text.
var ErrLanguageDrift = errors.New("language drift")

// Validator checks the language of edited text.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator. A nil detector builds the default one.
func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.New()
	}
	return &Validator{det: det}
}

// Language returns the ISO 639-1 code of text when it is long enough to be
// detected reliably.
func (v *Validator) Language(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minValidationLength {
		return "", false
	}
	return v.det.DetectISO(text)
}

// IsValid returns true when text appears to be written in lang.
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// from lang the returned error wraps ErrLanguageDrift and names both codes.
func (v *Validator) IsValid(text, lang string) (bool, error) {
	if lang == "" {
		return true, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, fmt.Errorf("text is empty")
	}

	detected, ok := v.Language(text)
	if !ok {
		// Too short or ambiguous; cannot validate, pass through.
		return true, nil
	}

	if !strings.EqualFold(detected, lang) {
		return false, fmt.Errorf("%w: expected %s but detected %s", ErrLanguageDrift, strings.ToLower(lang), detected)
	}

	return true, nil
}

// CheckDrift compares the detected languages of original and edited. It
// returns nil when either side cannot be detected.
func (v *Validator) CheckDrift(original, edited string) error {
	lang, ok := v.Language(original)
	if !ok {
		return nil
	}
	_, err := v.IsValid(edited, lang)
	return err
}
