package validator

import (
	"errors"
	"testing"

	"github.com/valpere/aclarador/internal/detector"
)

var shared = New(detector.New())

func TestIsValid_EmptyLang(t *testing.T) {
	valid, err := shared.IsValid("Some edited text", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for empty lang")
	}
}

func TestIsValid_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   "} {
		valid, err := shared.IsValid(text, "es")
		if err == nil {
			t.Errorf("expected error for empty text %q", text)
		}
		if valid {
			t.Errorf("expected valid=false for empty text %q", text)
		}
	}
}

func TestIsValid_ShortText(t *testing.T) {
	shortText := "Hola" // Less than minValidationLength (20 chars)
	valid, err := shared.IsValid(shortText, "en")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for short text (below threshold)")
	}
}

func TestIsValid_SameLanguage(t *testing.T) {
	text := "El informe fue revisado por el equipo antes de la reunión del lunes."
	valid, err := shared.IsValid(text, "ES")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true when detecting Spanish as Spanish")
	}
}

func TestIsValid_MismatchedLanguage(t *testing.T) {
	englishText := "This is a longer piece of text that should be detected as English."
	valid, err := shared.IsValid(englishText, "es")
	if !errors.Is(err, ErrLanguageDrift) {
		t.Errorf("expected ErrLanguageDrift, got %v", err)
	}
	if valid {
		t.Error("expected valid=false when detecting English but expecting Spanish")
	}
}

func TestCheckDrift(t *testing.T) {
	spanish := "El informe fue revisado por el equipo antes de la reunión del lunes."
	edited := "El equipo revisó el informe antes de la reunión del lunes."
	english := "The team reviewed the report before the meeting on Monday morning."

	if err := shared.CheckDrift(spanish, edited); err != nil {
		t.Errorf("unexpected drift for same-language edit: %v", err)
	}
	if err := shared.CheckDrift(spanish, english); !errors.Is(err, ErrLanguageDrift) {
		t.Errorf("expected ErrLanguageDrift, got %v", err)
	}
	if err := shared.CheckDrift("Hola", english); err != nil {
		t.Errorf("short original should not be checked: %v", err)
	}
}

func TestNew_NilDetector(t *testing.T) {
	if v := New(nil); v.det == nil {
		t.Error("expected default detector")
	}
}
