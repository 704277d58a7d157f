package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

// stubScorer returns canned results keyed by input text and records the
// batch sizes it was called with.
type stubScorer struct {
	results    map[string]Result
	batchSizes []int
	failAfter  int // fail on the Nth call, 0 disables
	calls      int
}

func (s *stubScorer) Score(_ context.Context, texts []string) ([]Result, error) {
	s.calls++
	if s.failAfter > 0 && s.calls >= s.failAfter {
		return nil, errors.New("model unavailable")
	}
	s.batchSizes = append(s.batchSizes, len(texts))
	out := make([]Result, len(texts))
	for i, t := range texts {
		out[i] = s.results[t]
	}
	return out, nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResultTop(t *testing.T) {
	r := Result{Scores: map[string]float64{"joy": 0.7, "anger": 0.2, "neutral": 0.1}}
	label, score := r.Top()
	if label != "joy" || !almostEqual(score, 0.7) {
		t.Errorf("Top = %q %v", label, score)
	}

	tie := Result{Scores: map[string]float64{"b": 0.5, "a": 0.5}}
	label, _ = tie.Top()
	if label != "a" {
		t.Errorf("tie must break to the smaller label, got %q", label)
	}

	single := Result{Label: "toxic", Score: 0.9}
	label, score = single.Top()
	if label != "toxic" || !almostEqual(score, 0.9) {
		t.Errorf("Top = %q %v", label, score)
	}
}

func TestAverageScores(t *testing.T) {
	s := &stubScorer{results: map[string]Result{
		"a": {Scores: map[string]float64{"joy": 0.8, "anger": 0.2}},
		"b": {Scores: map[string]float64{"joy": 0.6, "anger": 0.4}},
		"c": {Scores: map[string]float64{"joy": 0.1, "anger": 0.9}},
		"d": {Scores: map[string]float64{"joy": 0.2, "anger": 0.8}},
	}}
	avg, err := AverageScores(context.Background(), s, []string{"a", "b", "c", "d"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(avg["joy"], 0.425) {
		t.Errorf("joy average = %v, want 0.425", avg["joy"])
	}
	if !almostEqual(avg["anger"], 0.575) {
		t.Errorf("anger average = %v, want 0.575", avg["anger"])
	}
	if len(s.batchSizes) != 2 || s.batchSizes[0] != 3 || s.batchSizes[1] != 1 {
		t.Errorf("batch sizes = %v, want [3 1]", s.batchSizes)
	}
}

func TestAverageScores_Empty(t *testing.T) {
	s := &stubScorer{}
	avg, err := AverageScores(context.Background(), s, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg == nil || len(avg) != 0 {
		t.Errorf("expected an empty map, got %v", avg)
	}
	if s.calls != 0 {
		t.Errorf("the model must not be invoked for empty input")
	}
}

func TestAverageScores_FailedBatchAborts(t *testing.T) {
	s := &stubScorer{failAfter: 2, results: map[string]Result{}}
	_, err := AverageScores(context.Background(), s, []string{"a", "b", "c"}, 2)
	if err == nil {
		t.Fatal("expected an error from the failed batch")
	}
}

func TestFractionAbove_ThresholdOnly(t *testing.T) {
	s := &stubScorer{results: map[string]Result{
		"a": {Label: "toxic", Score: 0.9},
		"b": {Label: "neutral", Score: 0.95},
		"c": {Label: "toxic", Score: 0.3},
		"d": {Label: "neutral", Score: 0.2},
	}}
	frac, err := FractionAbove(context.Background(), s, []string{"a", "b", "c", "d"}, nil, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(frac, 0.5) {
		t.Errorf("fraction = %v, want 0.5", frac)
	}
}

func TestFractionAbove_PositiveLabelSet(t *testing.T) {
	s := &stubScorer{results: map[string]Result{
		"a": {Label: "toxic", Score: 0.9},
		"b": {Label: "neutral", Score: 0.95},
		"c": {Label: "toxic", Score: 0.3},
		"d": {Label: "toxic", Score: 0.8},
	}}
	frac, err := FractionAbove(context.Background(), s, []string{"a", "b", "c", "d"}, map[string]bool{"toxic": true}, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(frac, 0.5) {
		t.Errorf("fraction = %v, want 0.5", frac)
	}
}

func TestFractionAbove_Empty(t *testing.T) {
	s := &stubScorer{}
	frac, err := FractionAbove(context.Background(), s, nil, nil, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frac != 0 {
		t.Errorf("fraction = %v, want 0", frac)
	}
}

func TestDownsample(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("t%d", i)
	}

	got := Downsample(texts, 4)
	want := []string{"t0", "t2", "t5", "t7"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDownsample_UnderLimit(t *testing.T) {
	texts := []string{"a", "b", "c"}
	if got := Downsample(texts, 3); len(got) != 3 {
		t.Errorf("input at the limit must pass through, got %d", len(got))
	}
	if got := Downsample(texts, 0); len(got) != 3 {
		t.Errorf("a non-positive limit must pass through, got %d", len(got))
	}
}
