package pipeline

import (
	"context"
	"errors"

	"github.com/valpere/aclarador/internal/quality"
	"github.com/valpere/aclarador/internal/validator"
)

type validatorStage struct {
	validator *validator.Validator
}

func (*validatorStage) name() string    { return Validator }
func (*validatorStage) protected() bool { return false }

// apply reverts the text when an edit changed its language, then scores the
// result with the quality model for the working language.
func (v *validatorStage) apply(_ context.Context, st *state) error {
	if err := v.validator.CheckDrift(st.input, st.text); err != nil {
		if !errors.Is(err, validator.ErrLanguageDrift) {
			return err
		}
		st.text = st.input
		kept := st.improvements[:0]
		for _, imp := range st.improvements {
			if !imp.Applied {
				kept = append(kept, imp)
			}
		}
		st.improvements = kept
		st.add(Improvement{
			Capability: Validator,
			Type:       "language_drift",
			Change:     "edits reverted",
			Reason:     err.Error(),
		})
	}

	// This stage counts as an analysis of the text.
	metrics := quality.New(quality.ProfileFor(st.lang)).Assess(st.text, &quality.Context{
		Analyses:     st.analyses + 1,
		Corrections:  st.corrections,
		SEOBalance:   st.seoBalance,
		Improvements: st.applied(),
	})
	score := metrics.OverallQuality
	st.result.QualityScore = &score
	st.result.Quality = &metrics
	return nil
}
