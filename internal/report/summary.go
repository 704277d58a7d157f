package report

// Summary condenses conversation rows: the mean toxicity rate and how
// often each label came out on top of its conversation.
type Summary struct {
	AvgToxicity float64
	TopEmotions map[string]int
	TopTopics   map[string]int
}

// topLabel picks the best-scoring label from a map; ties break on the
// lexicographically smaller label.
func topLabel(scores map[string]float64) string {
	best, bestScore, found := "", 0.0, false
	for label, score := range scores {
		if !found || score > bestScore || (score == bestScore && label < best) {
			best, bestScore, found = label, score, true
		}
	}
	return best
}

// Summarize aggregates conversation rows into a Summary.
func Summarize(rows []Row) Summary {
	s := Summary{
		TopEmotions: make(map[string]int),
		TopTopics:   make(map[string]int),
	}
	if len(rows) == 0 {
		return s
	}
	for _, r := range rows {
		s.AvgToxicity += r.ToxicityRate
		if l := topLabel(r.Emotions); l != "" {
			s.TopEmotions[l]++
		}
		if l := topLabel(r.Topics); l != "" {
			s.TopTopics[l]++
		}
	}
	s.AvgToxicity /= float64(len(rows))
	return s
}
