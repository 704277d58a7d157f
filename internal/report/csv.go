package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/danuhaha/telestats/internal/message"
)

// fixedColumns lead every conversation CSV, in this order.
var fixedColumns = []string{
	"conversation_id", "start", "end", "duration_min",
	"num_messages", "num_texts_used", "toxicity_rate",
}

// labelColumns collects the sorted union of label keys across rows.
func labelColumns(rows []Row, pick func(Row) map[string]float64) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		for label := range pick(r) {
			set[label] = true
		}
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// WriteCSV renders rows with a deterministic column order: the fixed
// columns, then emo_* labels sorted, then topic_* labels sorted. Labels
// missing from a row render as empty cells.
func WriteCSV(w io.Writer, rows []Row) error {
	emoLabels := labelColumns(rows, func(r Row) map[string]float64 { return r.Emotions })
	topicLabels := labelColumns(rows, func(r Row) map[string]float64 { return r.Topics })

	header := append([]string{}, fixedColumns...)
	for _, l := range emoLabels {
		header = append(header, "emo_"+l)
	}
	for _, l := range topicLabels {
		header = append(header, "topic_"+l)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.ConversationID),
			r.Start.Format(message.TimeLayout),
			r.End.Format(message.TimeLayout),
			formatFloat(r.DurationMin),
			strconv.Itoa(r.NumMessages),
			strconv.Itoa(r.NumTextsUsed),
			formatFloat(r.ToxicityRate),
		}
		for _, l := range emoLabels {
			rec = append(rec, formatScore(r.Emotions, l))
		}
		for _, l := range topicLabels {
			rec = append(rec, formatScore(r.Topics, l))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", r.ConversationID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScores renders a label→score map as a two-column CSV, labels
// sorted.
func WriteScores(w io.Writer, scores map[string]float64) error {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "score"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range labels {
		if err := cw.Write([]string{l, formatFloat(scores[l])}); err != nil {
			return fmt.Errorf("write %s: %w", l, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatScore(scores map[string]float64, label string) string {
	v, ok := scores[label]
	if !ok {
		return ""
	}
	return formatFloat(v)
}
