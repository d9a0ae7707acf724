package quality

import (
	"math"
	"strings"
)

func (m *Model) readability(sentences, words []string) float64 {
	avgSentence := float64(len(words)) / float64(len(sentences))

	total := 0
	for _, w := range words {
		total += syllables(w, m.profile.Vowels)
	}
	avgSyllables := float64(total) / float64(len(words))

	flesch := 206.84 - 1.02*avgSentence - 0.60*avgSyllables
	return clamp(flesch, 0, 100) / 100
}

func (m *Model) sentenceComplexity(sentences []string) float64 {
	if len(sentences) == 0 {
		return 1
	}
	scores := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		n := len(Words(s))
		c := 1.0
		switch {
		case n > 30:
			c *= 0.5
		case n > 20:
			c *= 0.7
		case n < 5:
			c *= 0.8
		}
		for _, re := range m.profile.ComplexStructures {
			if re.MatchString(s) {
				c *= 0.8
			}
		}
		scores = append(scores, c)
	}
	return mean(scores)
}

func (m *Model) vocabularyComplexity(words []string) float64 {
	if len(words) == 0 {
		return 1
	}
	hits := 0
	for _, w := range words {
		for _, re := range m.profile.ComplexVocabulary {
			if re.MatchString(w) {
				hits++
				break
			}
		}
	}
	ratio := float64(hits) / float64(len(words))
	return math.Max(0.2, 1-ratio*2)
}

func structure(text string, sentences []string) float64 {
	score := 1.0

	if paragraphs := Paragraphs(text); len(paragraphs) > 1 {
		perParagraph := float64(len(sentences)) / float64(len(paragraphs))
		if perParagraph < 2 || perParagraph > 8 {
			score *= 0.8
		}
	}

	lengths := sentenceLengths(sentences)
	distinct := make(map[int]bool, len(lengths))
	for _, l := range lengths {
		distinct[l] = true
	}
	if float64(len(distinct)) <= float64(len(lengths))*0.3 {
		score *= 0.9
	}

	return math.Min(1, score)
}

func (m *Model) clarity(text string, sentences []string) float64 {
	if len(sentences) == 0 {
		return 0.5
	}
	var factors []float64

	passives := 0
	for _, re := range m.profile.PassiveVoice {
		passives += countWords(re, text)
	}
	factors = append(factors, math.Max(0.5, 1-float64(passives)/float64(len(sentences))))

	avg := meanInts(sentenceLengths(sentences))
	if avg >= 10 && avg <= 25 {
		factors = append(factors, 1.0)
	} else {
		factors = append(factors, 0.7)
	}

	lower := strings.ToLower(text)
	flow := 0
	for _, ind := range m.profile.FlowIndicators {
		if strings.Contains(lower, ind) {
			flow++
		}
	}
	factors = append(factors, math.Min(1, float64(flow)/math.Max(1, float64(len(sentences))/5)))

	return mean(factors)
}

func coherence(sentences []string) float64 {
	if len(sentences) < 2 {
		return 1
	}
	score := 0.8

	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range Words(s) {
			if len([]rune(w)) > 3 {
				freq[strings.ToLower(w)]++
			}
		}
	}
	if len(freq) > 0 {
		repeated := 0
		for _, n := range freq {
			if n > 1 {
				repeated++
			}
		}
		score += math.Min(1, float64(repeated)/float64(len(freq))) * 0.2
	}
	return math.Min(1, score)
}

func (m *Model) precision(text string, words []string) float64 {
	if len(words) == 0 {
		return 1
	}
	lower := strings.ToLower(text)
	issues := 0
	for _, phrase := range m.profile.RedundantPhrases {
		issues += strings.Count(lower, phrase)
	}
	for _, w := range words {
		if m.profile.FillerWords[strings.ToLower(trimPunct(w))] {
			issues++
		}
	}
	return math.Max(0.5, 1-float64(issues)/float64(len(words))*10)
}

func grammarAccuracy(words []string, ctx *Context) float64 {
	if ctx == nil || ctx.Analyses <= 0 {
		return 0.8
	}
	if ctx.Corrections <= 0 {
		return 0.95
	}
	density := float64(ctx.Corrections) / math.Max(1, float64(len(words))/10)
	return math.Max(0.3, 0.9-density*0.1)
}

func (m *Model) styleConsistency(sentences []string) float64 {
	if len(sentences) < 2 {
		return 1
	}
	lengths := sentenceLengths(sentences)
	lengthConsistency := 0.5
	if avg := meanInts(lengths); avg > 0 {
		lengthConsistency = math.Max(0.5, 1-stdevInts(lengths)/avg)
	}

	var present, past, future int
	for _, s := range sentences {
		if m.profile.PresentTense.MatchString(s) {
			present++
		}
		if m.profile.PastTense.MatchString(s) {
			past++
		}
		if m.profile.FutureTense.MatchString(s) {
			future++
		}
	}
	tenseConsistency := 1.0
	if total := present + past + future; total > 0 {
		dominant := max(present, past, future)
		tenseConsistency = float64(dominant) / float64(total)
	}

	return (lengthConsistency + tenseConsistency) / 2
}

func seo(words []string, ctx *Context) float64 {
	if ctx != nil && ctx.SEOBalance != nil {
		return clamp(*ctx.SEOBalance, 0, 1)
	}
	n := len(words)
	switch {
	case n >= 300 && n <= 2000:
		return 0.8
	case n < 100:
		return 0.4
	default:
		return 0.6
	}
}

func confidence(words []string, ctx *Context) float64 {
	c := 0.7
	switch n := len(words); {
	case n > 100:
		c += 0.2
	case n < 20:
		c -= 0.2
	}
	if ctx != nil && ctx.Analyses > 0 {
		c += math.Min(0.2, float64(ctx.Analyses)*0.05)
	}
	return clamp(c, 0.3, 1)
}

func improvementPotential(overall float64, ctx *Context) float64 {
	p := 1 - overall
	if ctx != nil && ctx.Improvements > 5 {
		p *= 0.7
	}
	return clamp(p, 0, 1)
}
