// Package keystroke turns a log of editor events back into text and records new logs.
package keystroke

import (
	"sort"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/models"
)

// SortEvents returns a copy ordered by RelativeTimestampMs. Events with equal timestamps keep
// their input order, so callers must pass them in emission order.
func SortEvents(events []models.KeystrokeEvent) []models.KeystrokeEvent {
	sorted := make([]models.KeystrokeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelativeTimestampMs < sorted[j].RelativeTimestampMs
	})
	return sorted
}

// Reconstruct folds a sorted event sequence over seed.
func Reconstruct(events []models.KeystrokeEvent, seed string) string {
	return ReconstructPrefix(events, seed, len(events)-1)
}

// ReconstructPrefix folds events[0..index] over seed. A negative index yields seed and an
// index past the end is treated as the last event.
func ReconstructPrefix(events []models.KeystrokeEvent, seed string, index int) string {
	if index >= len(events) {
		index = len(events) - 1
	}
	text := []rune(seed)
	for i := 0; i <= index; i++ {
		text = applyRunes(text, events[i])
	}
	return string(text)
}

// Apply applies a single event. Out-of-range positions never fail: inserts pad with spaces,
// deletes and replaces past the end do nothing.
func Apply(text string, ev models.KeystrokeEvent) string {
	return string(applyRunes([]rune(text), ev))
}

func applyRunes(text []rune, ev models.KeystrokeEvent) []rune {
	pos := ev.Position
	if pos < 0 {
		pos = 0
	}
	length := ev.Length
	if length < 0 {
		length = 0
	}

	switch ev.Kind {
	case models.KeystrokeInsert:
		if pos > len(text) {
			text = append(text, []rune(strings.Repeat(" ", pos-len(text)))...)
		}
		return splice(text, pos, 0, []rune(ev.Value))
	case models.KeystrokeDelete:
		if pos >= len(text) {
			return text
		}
		return splice(text, pos, min(length, len(text)-pos), nil)
	case models.KeystrokeReplace:
		if pos > len(text) {
			return text
		}
		return splice(text, pos, min(length, len(text)-pos), []rune(ev.Value))
	}
	return text
}

// splice removes n runes at pos and inserts ins in their place.
func splice(text []rune, pos, n int, ins []rune) []rune {
	out := make([]rune, 0, len(text)-n+len(ins))
	out = append(out, text[:pos]...)
	out = append(out, ins...)
	return append(out, text[pos+n:]...)
}
