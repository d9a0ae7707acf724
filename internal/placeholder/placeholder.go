// Package placeholder shields content that an editor must never touch (code,
// markup, links, e-mail addresses) behind numbered markers ([PH0], [PH1], ...)
// before text goes to a language model, and puts it back afterwards.
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMarkersLost is returned by RestoreStrict when the edited text dropped
// one or more markers.
var ErrMarkersLost = errors.New("placeholder markers lost")

// protectors run in order; earlier patterns win because their matches are
// already markers when later patterns run.
var protectors = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`<[^>\n]+>`),
	regexp.MustCompile(`https?://[^\s<>"'()\[\]]+[^\s<>"'()\[\].,;:!?]`),
	regexp.MustCompile(`[\pL\pN._%+\-]+@[\pL\pN.\-]+\.[\pL]{2,}`),
}

var rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)

// Protect replaces protected spans with markers in the order the protectors
// run. It returns the rewritten text and the captured originals, indexed by
// marker number.
func Protect(text string) (string, []string) {
	var markers []string
	replace := func(match string) string {
		id := marker(len(markers))
		markers = append(markers, match)
		return id
	}
	for _, re := range protectors {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	return text, markers
}

// Restore puts the originals back. Markers that are missing are ignored and
// unknown indices are left as they are.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// RestoreStrict is Restore that fails when any marker is missing from text.
func RestoreStrict(text string, markers []string) (string, error) {
	if missing := Validate(text, markers); len(missing) > 0 {
		return "", fmt.Errorf("%w: %v", ErrMarkersLost, missing)
	}
	return Restore(text, markers), nil
}

// InstructionHint is appended to model prompts.
func InstructionHint() string {
	return "Preserve all [PHn] markers exactly as they appear. Do not edit, move, or remove them."
}

// Validate returns the indices of markers that are absent from text.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, marker(i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

func marker(i int) string {
	return "[PH" + strconv.Itoa(i) + "]"
}
