// Package report builds conversation-level aggregates: one row per
// conversation run with averaged emotion/topic scores and a toxicity
// fraction, plus a whole-chat rollup.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danuhaha/telestats/internal/message"
	"github.com/danuhaha/telestats/internal/scoring"
	"github.com/danuhaha/telestats/internal/timeline"
)

// Options tune conversation splitting and inference volume.
type Options struct {
	Gap                time.Duration // conversation gap; default timeline.DefaultGap
	MinTextLen         int           // shortest text sent to the model; default 5
	MaxPerConversation int           // per-conversation inference cap; default 200
	MaxTotal           int           // whole-chat rollup cap; default 2000
	Threshold          float64       // toxicity probability cutoff; default 0.5
}

func (o Options) withDefaults() Options {
	if o.Gap <= 0 {
		o.Gap = timeline.DefaultGap
	}
	if o.MinTextLen <= 0 {
		o.MinTextLen = 5
	}
	if o.MaxPerConversation <= 0 {
		o.MaxPerConversation = 200
	}
	if o.MaxTotal <= 0 {
		o.MaxTotal = 2000
	}
	if o.Threshold <= 0 {
		o.Threshold = scoring.DefaultThreshold
	}
	return o
}

// toxicLabels are the label spellings counted as a positive toxicity
// verdict across classifier variants.
var toxicLabels = map[string]bool{"toxic": true, "toxicity": true, "TOXIC": true}

// Scorers are the three classification models feeding a report.
type Scorers struct {
	Emotion  scoring.Scorer
	Toxicity scoring.Scorer
	Topics   scoring.Scorer
}

// Row is one conversation run's aggregate record.
type Row struct {
	ConversationID int
	Start          time.Time
	End            time.Time
	DurationMin    float64
	NumMessages    int
	NumTextsUsed   int
	ToxicityRate   float64
	Emotions       map[string]float64
	Topics         map[string]float64
}

// Overall is the whole-chat rollup.
type Overall struct {
	Emotions     map[string]float64
	Topics       map[string]float64
	ToxicityRate float64
	NumTextsUsed int
}

// Report holds one analysis run's output.
type Report struct {
	RunID   uuid.UUID
	Rows    []Row
	Overall Overall
}

// texts extracts the message texts worth classifying: trimmed and at
// least minLen runes long.
func texts(msgs []message.Message, minLen int) []string {
	var out []string
	for _, m := range msgs {
		t := strings.TrimSpace(m.Text)
		if utf8.RuneCountInString(t) >= minLen {
			out = append(out, t)
		}
	}
	return out
}

// Build splits msgs into conversation runs and scores each run plus the
// whole chat. Any model failure aborts the run; there are no partial
// reports.
func Build(ctx context.Context, msgs []message.Message, sc Scorers, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	rep := &Report{RunID: uuid.New()}

	runs := timeline.Split(msgs, opts.Gap)
	slog.Info("analysis run started", "run_id", rep.RunID, "messages", len(msgs), "conversations", len(runs))

	for idx, run := range runs {
		all := texts(run, opts.MinTextLen)
		if len(all) == 0 {
			continue
		}
		sample := scoring.Downsample(all, opts.MaxPerConversation)

		emotions, err := scoring.AverageScores(ctx, sc.Emotion, sample, scoring.DefaultAverageBatch)
		if err != nil {
			return nil, fmt.Errorf("conversation %d emotions: %w", idx, err)
		}
		toxicity, err := scoring.FractionAbove(ctx, sc.Toxicity, sample, toxicLabels, opts.Threshold, scoring.DefaultFractionBatch)
		if err != nil {
			return nil, fmt.Errorf("conversation %d toxicity: %w", idx, err)
		}
		topics, err := scoring.AverageScores(ctx, sc.Topics, sample, scoring.DefaultAverageBatch)
		if err != nil {
			return nil, fmt.Errorf("conversation %d topics: %w", idx, err)
		}

		start := run[0].Timestamp
		end := run[len(run)-1].Timestamp
		rep.Rows = append(rep.Rows, Row{
			ConversationID: idx,
			Start:          start,
			End:            end,
			DurationMin:    end.Sub(start).Minutes(),
			NumMessages:    len(run),
			NumTextsUsed:   len(sample),
			ToxicityRate:   toxicity,
			Emotions:       emotions,
			Topics:         topics,
		})
	}

	sample := scoring.Downsample(texts(msgs, opts.MinTextLen), opts.MaxTotal)
	emotions, err := scoring.AverageScores(ctx, sc.Emotion, sample, scoring.DefaultAverageBatch)
	if err != nil {
		return nil, fmt.Errorf("overall emotions: %w", err)
	}
	toxicity, err := scoring.FractionAbove(ctx, sc.Toxicity, sample, toxicLabels, opts.Threshold, scoring.DefaultFractionBatch)
	if err != nil {
		return nil, fmt.Errorf("overall toxicity: %w", err)
	}
	topics, err := scoring.AverageScores(ctx, sc.Topics, sample, scoring.DefaultAverageBatch)
	if err != nil {
		return nil, fmt.Errorf("overall topics: %w", err)
	}
	rep.Overall = Overall{
		Emotions:     emotions,
		Topics:       topics,
		ToxicityRate: toxicity,
		NumTextsUsed: len(sample),
	}

	slog.Info("analysis run complete", "run_id", rep.RunID, "rows", len(rep.Rows))
	return rep, nil
}
