package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/valpere/aclarador/internal/chunker"
	"github.com/valpere/aclarador/internal/placeholder"
	"github.com/valpere/aclarador/internal/refiner"
)

// DefaultChunkSize is the largest piece, in runes, sent to the model at once.
const DefaultChunkSize = 2000

// LLMStage is the llm capability: it sends the text to a Refiner piece by
// piece. A piece whose edit loses placeholder markers keeps its original
// wording.
type LLMStage struct {
	refiner   refiner.Refiner
	limiter   *rate.Limiter
	chunkSize int
	logger    *slog.Logger
}

// NewLLMStage wraps r. rps <= 0 disables rate limiting; chunkSize <= 0 uses
// DefaultChunkSize.
func NewLLMStage(r refiner.Refiner, rps float64, chunkSize int) *LLMStage {
	s := &LLMStage{refiner: r, chunkSize: chunkSize}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

func (*LLMStage) name() string    { return LLM }
func (*LLMStage) protected() bool { return true }

func (s *LLMStage) apply(ctx context.Context, st *state) error {
	if s.refiner == nil {
		return nil
	}
	logger := s.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pieces := chunker.Split(st.text, s.chunkSize)
	edited, rejected := 0, 0
	prev := ""
	for i, p := range pieces {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		out, err := s.refiner.Refine(ctx, refiner.Request{
			Lang:    st.lang,
			Text:    p.Text,
			Context: chunker.ExtractContext(prev, chunker.DefaultContextWords),
		})
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i+1, err)
		}
		prev = p.Text

		out = strings.TrimSpace(out)
		if missing := lostMarkers(p.Text, out, st.markers); len(missing) > 0 {
			logger.Warn("model dropped protected content, keeping original chunk", "chunk", i+1, "missing", missing)
			rejected++
			continue
		}
		if out == "" || out == p.Text {
			continue
		}
		pieces[i].Text = out
		edited++
	}

	if edited > 0 {
		st.text = chunker.Join(pieces)
		st.add(Improvement{
			Capability: LLM,
			Type:       "rewrite",
			Change:     fmt.Sprintf("%d of %d chunks rewritten", edited, len(pieces)),
			Reason:     "rewritten in plain language",
			Reference:  "language model",
			Applied:    true,
		})
	}
	if rejected > 0 {
		st.add(Improvement{
			Capability: LLM,
			Type:       "rejected_rewrite",
			Change:     fmt.Sprintf("%d chunks kept unchanged", rejected),
			Reason:     "the model altered protected content",
		})
	}
	return nil
}

// lostMarkers returns the markers present in before but missing from after.
func lostMarkers(before, after string, markers []string) []int {
	absent := make(map[int]bool)
	for _, i := range placeholder.Validate(before, markers) {
		absent[i] = true
	}
	var lost []int
	for _, i := range placeholder.Validate(after, markers) {
		if !absent[i] {
			lost = append(lost, i)
		}
	}
	return lost
}
