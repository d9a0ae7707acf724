package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text untouched", "El informe está listo.", "El informe está listo."},
		{"surrounding whitespace", "\n  El informe está listo. \n", "El informe está listo."},
		{
			name:     "reasoning, lead-in and quotes",
			input:    "<think>plan the edit</think>\nHere is the revised text:\n\"El plazo vence el lunes.\"",
			expected: "El plazo vence el lunes.",
		},
		{
			name:     "spanish lead-in",
			input:    "Aquí tienes el texto corregido: El plazo vence el lunes.",
			expected: "El plazo vence el lunes.",
		},
		{
			name:     "fenced answer",
			input:    "```text\nUno.\n\nDos.\n```",
			expected: "Uno.\n\nDos.",
		},
		{
			name:     "trailing change notes",
			input:    "Uno.\n\nDos.\n\n**Cambios realizados:**\n- se eliminó una repetición",
			expected: "Uno.\n\nDos.",
		},
		{
			name:     "lead-in then fence",
			input:    "Sure! Here's your edited version:\n```\nUno.\n```",
			expected: "Uno.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"closed block", "Some text<thinking>Voy a simplificar esto</thinking>More text", "Some textMore text"},
		{"each tag", "<think>a</think>1<reasoning>b</reasoning>2<reflection>c</reflection>3", "123"},
		{"case-insensitive, multiline", "<THINKING>a\nb</THINKING>Texto", "Texto"},
		{"several blocks", "<thinking>First</thinking>middle<thinking>Second</thinking>", "middle"},
		{"unclosed block runs to the end", "Antes<thinking>Edición en curso", "Antes"},
		{"mismatched tags are unclosed", "Antes<think>a</thinking>después", "Antes"},
		{"no tags", "Texto normal.", "Texto normal."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripReasoning(tt.input); got != tt.expected {
				t.Errorf("stripReasoning(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripLeadIn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"here is the text", "Here is the text: Hola", "Hola"},
		{"here's the clarified version", "Here's the clarified version:\nHola", "Hola"},
		{"certainly", "Certainly, here is the simplified text: Hola", "Hola"},
		{"bare label", "Revised text: Hola", "Hola"},
		{"spanish label", "Texto simplificado: Hola", "Hola"},
		{"spanish with courtesy", "Claro, aquí está el texto: Hola", "Hola"},
		{"repeated lead-ins", "The revised text: Here is the text: Hola", "Hola"},
		{"no colon is content", "The edited text was sent to the board.", "The edited text was sent to the board."},
		{"only at the start", "Hola. Here is the text: adiós", "Hola. Here is the text: adiós"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLeadIn(tt.input); got != tt.expected {
				t.Errorf("stripLeadIn(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"with language", "```markdown\n# Título\n```", "# Título"},
		{"without language", "```\nUno\n```", "Uno"},
		{"fence inside text is content", "Usa esto:\n```\ncode\n```", "Usa esto:\n```\ncode\n```"},
		{"inline backticks", "`x`", "`x`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFence(tt.input); got != tt.expected {
				t.Errorf("stripFence(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripChangeNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"english notes", "Uno.\n\nChanges made:\n- x", "Uno."},
		{"note singular", "Uno.\n\nNote: kept the tone.", "Uno."},
		{"spanish explanation", "Uno.\n\nExplicación: se acortó la frase.", "Uno."},
		{"needs a blank line", "Uno.\nNota: importante.", "Uno.\nNota: importante."},
		{"at the start is content", "Notas: llevar paraguas.", "Notas: llevar paraguas."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripChangeNotes(tt.input); got != tt.expected {
				t.Errorf("stripChangeNotes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripOuterQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"double", `"Hola"`, "Hola"},
		{"single", "'Hola'", "Hola"},
		{"guillemets", "«Hola»", "Hola"},
		{"curly double", "“Hola”", "Hola"},
		{"curly single", "‘Hola’", "Hola"},
		{"mismatched", "«Hola\"", "«Hola\""},
		{"two quotations", `"Uno" y "dos"`, `"Uno" y "dos"`},
		{"single rune", `"`, `"`},
		{"unquoted", "Hola", "Hola"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripOuterQuotes(tt.input); got != tt.expected {
				t.Errorf("stripOuterQuotes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
