// Package convergence decides when repeated refinement passes have stopped
// paying off. A Detector keeps a bounded window of quality assessments for
// one refinement session and turns it into a converged/continue decision.
//
// A Detector is not safe for concurrent use. Create one per session.
package convergence

import (
	"math"
	"strings"

	"github.com/valpere/aclarador/internal/quality"
)

// HistorySize is the number of recorded passes a Detector remembers.
const HistorySize = 10

// Thresholds are the quality levels the indicators and rules compare against.
type Thresholds struct {
	MinimalImprovement float64
	HighQuality        float64
	ExcellentQuality   float64
	Stability          float64
	ManualReviewFloor  float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinimalImprovement: 0.02,
		HighQuality:        0.85,
		ExcellentQuality:   0.95,
		Stability:          0.01,
		ManualReviewFloor:  0.6,
	}
}

// Entry is one recorded pass.
type Entry struct {
	Text         string
	Metrics      quality.Metrics
	Improvements int
}

// Decision is the outcome of Decide.
type Decision struct {
	Converged       bool           `json:"converged" yaml:"converged"`
	Reason          string         `json:"reason" yaml:"reason"`
	Confidence      float64        `json:"confidence" yaml:"confidence"`
	Recommendation  Recommendation `json:"recommendation" yaml:"recommendation"`
	CurrentQuality  float64        `json:"current_quality" yaml:"current_quality"`
	ImprovementRate float64        `json:"improvement_rate" yaml:"improvement_rate"`
	Details         Indicators     `json:"analysis_details" yaml:"analysis_details"`
}

// Direction of the recent quality trend.
type Direction string

const (
	Improving Direction = "improving"
	Declining Direction = "declining"
	Stable    Direction = "stable"
	Unknown   Direction = "unknown"
)

// Trend summarizes the recent quality movement.
type Trend struct {
	Direction      Direction `json:"direction" yaml:"direction"`
	CurrentQuality float64   `json:"current_quality" yaml:"current_quality"`
	MinQuality     float64   `json:"min_quality" yaml:"min_quality"`
	MaxQuality     float64   `json:"max_quality" yaml:"max_quality"`
	DataPoints     int       `json:"data_points" yaml:"data_points"`
}

// Detector tracks the quality history of one refinement session.
type Detector struct {
	th      Thresholds
	history *Ring[Entry]
}

// New returns an empty Detector using th.
func New(th Thresholds) *Detector {
	return &Detector{
		th:      th,
		history: NewRing[Entry](HistorySize),
	}
}

// Record appends a pass to the history, evicting the oldest entry once the
// window is full.
func (d *Detector) Record(text string, m quality.Metrics, improvements int) {
	d.history.Push(Entry{Text: text, Metrics: m, Improvements: improvements})
}

// Len returns the number of recorded entries.
func (d *Detector) Len() int {
	return d.history.Len()
}

// entries returns the recorded entries, oldest first.
func (d *Detector) entries() []Entry {
	return d.history.Slice()
}

// Reset forgets all recorded entries.
func (d *Detector) Reset() {
	d.history.Clear()
}

// Indicators computes the convergence indicators from the current history.
func (d *Detector) Indicators() Indicators {
	n := d.history.Len()
	if n < 2 {
		return Indicators{}
	}
	current := d.history.At(-1).Metrics.OverallQuality
	previous := d.history.At(-2).Metrics.OverallQuality

	ind := Indicators{
		MinimalImprovement: current-previous < d.th.MinimalImprovement,
		HighQualityReached: current >= d.th.HighQuality,
		StabilityAchieved:  math.Abs(current-previous) < d.th.Stability,
	}

	if n >= 3 {
		lo, hi := qualityRange(d.history.Last(3))
		ind.QualityPlateau = hi-lo < d.th.Stability
	}

	saturated := true
	for _, e := range d.history.Last(2) {
		if e.Improvements > 1 {
			saturated = false
			break
		}
	}
	ind.ImprovementSaturation = saturated

	return ind
}

// Decide renders the converged/continue decision for the current history.
// With fewer than two entries there is nothing to compare and the decision
// is always to continue.
func (d *Detector) Decide() Decision {
	if d.history.Len() < 2 {
		return Decision{
			Converged:      false,
			Reason:         "insufficient history",
			Confidence:     0,
			Recommendation: Continue,
		}
	}

	current := d.history.At(-1).Metrics.OverallQuality
	previous := d.history.At(-2).Metrics.OverallQuality
	s := state{overall: current, ind: d.Indicators(), th: d.th}
	rule := decide(s)

	reason := rule.reason
	if rule.listIndicators {
		reason += " (" + strings.Join(s.ind.Names(), ", ") + ")"
	}

	return Decision{
		Converged:       rule.converged,
		Reason:          reason,
		Confidence:      rule.confidence,
		Recommendation:  recommend(s),
		CurrentQuality:  current,
		ImprovementRate: current - previous,
		Details:         s.ind,
	}
}

// Trend reports the direction of the last two assessments along with the
// quality range of the last three.
func (d *Detector) Trend() Trend {
	n := d.history.Len()
	if n < 2 {
		t := Trend{Direction: Unknown, DataPoints: n}
		if n == 1 {
			q := d.history.At(-1).Metrics.OverallQuality
			t.CurrentQuality, t.MinQuality, t.MaxQuality = q, q, q
		}
		return t
	}

	recent := d.history.Last(3)
	current := recent[len(recent)-1].Metrics.OverallQuality
	previous := recent[len(recent)-2].Metrics.OverallQuality

	dir := Stable
	switch {
	case current > previous:
		dir = Improving
	case current < previous:
		dir = Declining
	}

	lo, hi := qualityRange(recent)
	return Trend{
		Direction:      dir,
		CurrentQuality: current,
		MinQuality:     lo,
		MaxQuality:     hi,
		DataPoints:     n,
	}
}

func qualityRange(entries []Entry) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, e := range entries {
		q := e.Metrics.OverallQuality
		lo = math.Min(lo, q)
		hi = math.Max(hi, q)
	}
	return lo, hi
}
