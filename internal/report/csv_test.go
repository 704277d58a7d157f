package report

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := []Row{
		{
			ConversationID: 0,
			Start:          t0,
			End:            t0.Add(10 * time.Minute),
			DurationMin:    10,
			NumMessages:    3,
			NumTextsUsed:   2,
			ToxicityRate:   0.5,
			Emotions:       map[string]float64{"joy": 0.6, "anger": 0.4},
			Topics:         map[string]float64{"offline": 0.7},
		},
		{
			ConversationID: 1,
			Start:          t0.Add(2 * time.Hour),
			End:            t0.Add(2 * time.Hour),
			NumMessages:    1,
			NumTextsUsed:   1,
			Emotions:       map[string]float64{"joy": 0.9},
			Topics:         map[string]float64{"online": 0.3},
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	header := records[0]
	wantHeader := []string{
		"conversation_id", "start", "end", "duration_min",
		"num_messages", "num_texts_used", "toxicity_rate",
		"emo_anger", "emo_joy", "topic_offline", "topic_online",
	}
	if len(header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	for i, want := range wantHeader {
		if header[i] != want {
			t.Errorf("header %d = %q, want %q", i, header[i], want)
		}
	}

	first := records[1]
	if first[0] != "0" || first[1] != "2024-01-01 12:00:00" {
		t.Errorf("first row = %v", first)
	}
	if first[7] != "0.4" || first[8] != "0.6" {
		t.Errorf("emotion cells = %q %q", first[7], first[8])
	}

	// The second row never saw anger or offline, so those cells stay
	// empty rather than zero.
	second := records[2]
	if second[7] != "" || second[9] != "" {
		t.Errorf("missing labels must render empty: %q %q", second[7], second[9])
	}
	if second[10] != "0.3" {
		t.Errorf("online cell = %q", second[10])
	}
}

func TestWriteScores(t *testing.T) {
	var sb strings.Builder
	err := WriteScores(&sb, map[string]float64{"joy": 0.5, "anger": 0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "label,score\nanger,0.25\njoy,0.5\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
