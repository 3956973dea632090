package keystroke

import (
	"fmt"

	"github.com/SAP-F-2025/interview-service/internal/models"
)

type AnomalyKind string

const (
	AnomalyInsertPastEnd   AnomalyKind = "insert_past_end"
	AnomalyDeletePastEnd   AnomalyKind = "delete_past_end"
	AnomalyDeleteOverrun   AnomalyKind = "delete_overrun"
	AnomalyReplacePastEnd  AnomalyKind = "replace_past_end"
	AnomalyNegativeValue   AnomalyKind = "negative_value"
	AnomalyUnknownKind     AnomalyKind = "unknown_kind"
	AnomalyOutOfOrderInput AnomalyKind = "out_of_order"
)

// Anomaly describes an event the lenient fold had to pad, clamp or skip.
type Anomaly struct {
	Index  int         `json:"index"`
	Kind   AnomalyKind `json:"kind"`
	Detail string      `json:"detail"`
}

// Inspect replays events exactly like Reconstruct but records every event that relied on the
// padding or clamping rules. The input is checked for ordering before it is sorted.
func Inspect(events []models.KeystrokeEvent, seed string) []Anomaly {
	var anomalies []Anomaly
	for i := 1; i < len(events); i++ {
		if events[i].RelativeTimestampMs < events[i-1].RelativeTimestampMs {
			anomalies = append(anomalies, Anomaly{
				Index:  i,
				Kind:   AnomalyOutOfOrderInput,
				Detail: fmt.Sprintf("timestamp %d after %d", events[i].RelativeTimestampMs, events[i-1].RelativeTimestampMs),
			})
			break
		}
	}

	sorted := SortEvents(events)
	text := []rune(seed)
	for i, ev := range sorted {
		n := len(text)
		if ev.Position < 0 || ev.Length < 0 {
			anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyNegativeValue,
				Detail: fmt.Sprintf("position %d length %d", ev.Position, ev.Length)})
		}
		switch ev.Kind {
		case models.KeystrokeInsert:
			if ev.Position > n {
				anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyInsertPastEnd,
					Detail: fmt.Sprintf("position %d, text length %d", ev.Position, n)})
			}
		case models.KeystrokeDelete:
			if ev.Position >= n {
				anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyDeletePastEnd,
					Detail: fmt.Sprintf("position %d, text length %d", ev.Position, n)})
			} else if ev.Position >= 0 && ev.Position+ev.Length > n {
				anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyDeleteOverrun,
					Detail: fmt.Sprintf("length %d at %d, text length %d", ev.Length, ev.Position, n)})
			}
		case models.KeystrokeReplace:
			if ev.Position > n {
				anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyReplacePastEnd,
					Detail: fmt.Sprintf("position %d, text length %d", ev.Position, n)})
			}
		default:
			anomalies = append(anomalies, Anomaly{Index: i, Kind: AnomalyUnknownKind, Detail: string(ev.Kind)})
		}
		text = applyRunes(text, ev)
	}
	return anomalies
}
