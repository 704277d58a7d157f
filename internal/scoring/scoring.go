// Package scoring aggregates batched text-classification results:
// per-label averages, positive-label fractions and deterministic
// downsampling of oversized inputs.
package scoring

import (
	"context"
	"fmt"
	"math"
)

const (
	// DefaultAverageBatch is the batch size for score averaging.
	DefaultAverageBatch = 32
	// DefaultFractionBatch is the batch size for threshold counting.
	DefaultFractionBatch = 64
	// DefaultThreshold is the probability cutoff for a positive text.
	DefaultThreshold = 0.5
)

// Result is the model output for one text: either a full label→score
// map, or a single top label with its score when Scores is nil.
type Result struct {
	Label  string
	Score  float64
	Scores map[string]float64
}

// Top returns the best-scoring label. Ties break on the lexicographically
// smaller label so results stay reproducible.
func (r Result) Top() (string, float64) {
	if r.Scores == nil {
		return r.Label, r.Score
	}
	best, bestScore, found := "", 0.0, false
	for label, score := range r.Scores {
		if !found || score > bestScore || (score == bestScore && label < best) {
			best, bestScore, found = label, score, true
		}
	}
	return best, bestScore
}

// Scorer maps a batch of texts to per-text classification results.
type Scorer interface {
	Score(ctx context.Context, texts []string) ([]Result, error)
}

// batches partitions texts into fixed-size batches; the last batch may
// be smaller.
func batches(texts []string, size int) [][]string {
	var out [][]string
	for len(texts) > size {
		out = append(out, texts[:size])
		texts = texts[size:]
	}
	if len(texts) > 0 {
		out = append(out, texts)
	}
	return out
}

// AverageScores invokes the model once per batch, accumulates a running
// sum per label across all texts and divides by the total text count.
// Empty input yields an empty map. A failed batch aborts the whole call.
func AverageScores(ctx context.Context, scorer Scorer, texts []string, batchSize int) (map[string]float64, error) {
	if batchSize <= 0 {
		batchSize = DefaultAverageBatch
	}
	sums := make(map[string]float64)
	count := 0
	for _, batch := range batches(texts, batchSize) {
		results, err := scorer.Score(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("score batch: %w", err)
		}
		for _, r := range results {
			count++
			if r.Scores != nil {
				for label, score := range r.Scores {
					sums[label] += score
				}
				continue
			}
			sums[r.Label] += r.Score
		}
	}
	if count == 0 {
		return map[string]float64{}, nil
	}
	for label := range sums {
		sums[label] /= float64(count)
	}
	return sums, nil
}

// FractionAbove returns the fraction of texts whose top label counts as
// positive: with a nil positive set, any top score meeting the threshold
// counts; otherwise the top label must also be in the set. Zero texts
// yield 0.0. A failed batch aborts the whole call.
func FractionAbove(ctx context.Context, scorer Scorer, texts []string, positive map[string]bool, threshold float64, batchSize int) (float64, error) {
	if batchSize <= 0 {
		batchSize = DefaultFractionBatch
	}
	pos, total := 0, 0
	for _, batch := range batches(texts, batchSize) {
		results, err := scorer.Score(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("score batch: %w", err)
		}
		for _, r := range results {
			total++
			label, score := r.Top()
			if score < threshold {
				continue
			}
			if positive == nil || positive[label] {
				pos++
			}
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(pos) / float64(total), nil
}

// Downsample selects at most limit texts with a fixed stride, preserving
// temporal spread without randomness. Inputs at or under the limit are
// returned unchanged.
func Downsample(texts []string, limit int) []string {
	if limit <= 0 || len(texts) <= limit {
		return texts
	}
	stride := float64(len(texts)) / float64(limit)
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, texts[int(math.Floor(float64(i)*stride))])
	}
	return out
}
