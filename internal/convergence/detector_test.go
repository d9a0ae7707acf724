package convergence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/aclarador/internal/quality"
)

func q(overall float64) quality.Metrics {
	return quality.Metrics{
		OverallQuality:       overall,
		Readability:          overall,
		GrammarAccuracy:      overall,
		ImprovementPotential: 1 - overall,
	}
}

func TestDecide_InsufficientHistory(t *testing.T) {
	d := New(DefaultThresholds())

	got := d.Decide()
	assert.False(t, got.Converged)
	assert.Equal(t, "insufficient history", got.Reason)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, Continue, got.Recommendation)

	d.Record("texto", q(0.99), 0)
	got = d.Decide()
	assert.False(t, got.Converged)
	assert.Equal(t, "insufficient history", got.Reason)
}

func TestDecide_IdenticalEntriesPlateau(t *testing.T) {
	d := New(DefaultThresholds())
	for i := 0; i < 3; i++ {
		d.Record("texto", q(0.80), 2)
	}

	got := d.Decide()
	assert.True(t, got.Details.QualityPlateau)
	assert.True(t, got.Details.StabilityAchieved)
	assert.True(t, got.Details.MinimalImprovement)
	assert.False(t, got.Details.ImprovementSaturation)
	assert.True(t, got.Converged)
	assert.Contains(t, got.Reason, "quality plateau")
	assert.Contains(t, got.Reason, "stability")
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	assert.Equal(t, StopConvergence, got.Recommendation)
	assert.InDelta(t, 0.80, got.CurrentQuality, 1e-9)
	assert.InDelta(t, 0.0, got.ImprovementRate, 1e-9)
}

func TestDecide_NotConverged(t *testing.T) {
	d := New(DefaultThresholds())
	d.Record("a", q(0.5), 3)
	d.Record("b", q(0.7), 3)

	got := d.Decide()
	assert.False(t, got.Converged)
	assert.Equal(t, "convergence not detected", got.Reason)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
	assert.Equal(t, Continue, got.Recommendation)
	assert.InDelta(t, 0.2, got.ImprovementRate, 1e-9)
	assert.Zero(t, got.Details.Count())
}

func TestDecide_ExcellentQuality(t *testing.T) {
	d := New(DefaultThresholds())
	d.Record("a", q(0.5), 4)
	d.Record("b", q(0.96), 4)

	got := d.Decide()
	assert.True(t, got.Converged)
	assert.Equal(t, "excellent quality achieved", got.Reason)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	assert.Equal(t, StopExcellent, got.Recommendation)
}

func TestIndicators_Saturation(t *testing.T) {
	d := New(DefaultThresholds())
	d.Record("a", q(0.5), 1)
	assert.False(t, d.Indicators().ImprovementSaturation)

	d.Record("b", q(0.7), 0)
	assert.True(t, d.Indicators().ImprovementSaturation)

	d.Record("c", q(0.9), 2)
	assert.False(t, d.Indicators().ImprovementSaturation)
}

func TestDecisionRules_Precedence(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name      string
		overall   float64
		ind       Indicators
		converged bool
		reason    string
		conf      float64
	}{
		{
			name:      "excellent beats everything",
			overall:   0.97,
			ind:       Indicators{QualityPlateau: true, StabilityAchieved: true, MinimalImprovement: true},
			converged: true,
			reason:    "excellent quality achieved",
			conf:      0.95,
		},
		{
			name:      "three indicators",
			overall:   0.4,
			ind:       Indicators{MinimalImprovement: true, StabilityAchieved: true, ImprovementSaturation: true},
			converged: true,
			reason:    "multiple convergence indicators",
			conf:      0.8,
		},
		{
			name:      "high quality with two indicators",
			overall:   0.86,
			ind:       Indicators{HighQualityReached: true, MinimalImprovement: true},
			converged: true,
			reason:    "high quality with convergence indicators",
			conf:      0.85,
		},
		{
			name:      "plateau with stability",
			overall:   0.5,
			ind:       Indicators{QualityPlateau: true, StabilityAchieved: true},
			converged: true,
			reason:    "quality plateau with stability",
			conf:      0.75,
		},
		{
			name:      "two unrelated indicators",
			overall:   0.5,
			ind:       Indicators{MinimalImprovement: true, ImprovementSaturation: true},
			converged: false,
			reason:    "convergence not detected",
			conf:      0.6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := decide(state{overall: tt.overall, ind: tt.ind, th: th})
			assert.Equal(t, tt.converged, r.converged)
			assert.Equal(t, tt.reason, r.reason)
			assert.InDelta(t, tt.conf, r.confidence, 1e-9)
		})
	}
}

func TestRecommendationRules(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name    string
		overall float64
		ind     Indicators
		want    Recommendation
	}{
		{"excellent", 0.95, Indicators{}, StopExcellent},
		{"high and stable", 0.9, Indicators{StabilityAchieved: true}, StopGood},
		{"high not stable", 0.9, Indicators{MinimalImprovement: true}, ContinueCautiously},
		{"saturated", 0.7, Indicators{ImprovementSaturation: true, MinimalImprovement: true}, ManualReview},
		{"saturated but low", 0.5, Indicators{ImprovementSaturation: true, MinimalImprovement: true}, StopConvergence},
		{"nothing", 0.5, Indicators{MinimalImprovement: true}, Continue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recommend(state{overall: tt.overall, ind: tt.ind, th: th}))
		})
	}
}

func TestHistory_Bounded(t *testing.T) {
	d := New(DefaultThresholds())
	for i := 0; i <= HistorySize; i++ {
		d.Record("texto", q(float64(i)/100), 3)
	}

	assert.Equal(t, HistorySize, d.Len())
	assert.Equal(t, HistorySize, d.Trend().DataPoints)

	h := d.entries()
	require.Len(t, h, HistorySize)
	assert.InDelta(t, 0.01, h[0].Metrics.OverallQuality, 1e-9)
	assert.InDelta(t, 0.10, h[len(h)-1].Metrics.OverallQuality, 1e-9)
}

func TestTrend(t *testing.T) {
	d := New(DefaultThresholds())
	assert.Equal(t, Trend{Direction: Unknown}, d.Trend())

	d.Record("a", q(0.5), 1)
	got := d.Trend()
	assert.Equal(t, Unknown, got.Direction)
	assert.Equal(t, 1, got.DataPoints)

	d.Record("b", q(0.6), 1)
	assert.Equal(t, Improving, d.Trend().Direction)

	d.Record("c", q(0.55), 1)
	got = d.Trend()
	assert.Equal(t, Declining, got.Direction)
	assert.InDelta(t, 0.5, got.MinQuality, 1e-9)
	assert.InDelta(t, 0.6, got.MaxQuality, 1e-9)
	assert.InDelta(t, 0.55, got.CurrentQuality, 1e-9)

	d.Record("d", q(0.55), 1)
	got = d.Trend()
	assert.Equal(t, Stable, got.Direction)
	assert.InDelta(t, 0.55, got.MinQuality, 1e-9)
}

func TestReset(t *testing.T) {
	d := New(DefaultThresholds())
	d.Record("a", q(0.8), 1)
	d.Record("b", q(0.8), 1)
	d.Reset()

	assert.Zero(t, d.Len())
	assert.Equal(t, "insufficient history", d.Decide().Reason)
	assert.Equal(t, Unknown, d.Trend().Direction)
}

func TestDetailed(t *testing.T) {
	d := New(DefaultThresholds())
	assert.Equal(t, Analysis{Status: "no_data"}, d.Detailed())

	d.Record("a", q(0.4), 3)
	d.Record("b", q(0.5), 3)

	got := d.Detailed()
	assert.Equal(t, "analyzed", got.Status)
	require.NotNil(t, got.Current)
	require.NotNil(t, got.Decision)
	require.NotNil(t, got.Trend)
	assert.InDelta(t, 0.5, got.Current.OverallQuality, 1e-9)
	assert.Equal(t, Improving, got.Trend.Direction)
	assert.Equal(t, []string{
		"quality below 60% - consider manual review",
		"low readability - simplify vocabulary and sentence structure",
		"grammar accuracy concerns - review corrections",
	}, got.Advice)
}

func TestDetailed_ConvergedAdvice(t *testing.T) {
	d := New(DefaultThresholds())
	d.Record("a", q(0.9), 1)
	d.Record("b", q(0.96), 1)

	got := d.Detailed()
	require.NotEmpty(t, got.Advice)
	assert.Equal(t, "processing converged: excellent quality achieved", got.Advice[0])
}
