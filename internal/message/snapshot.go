package message

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// record is the flat snapshot form of a Message. Derived flags are
// persisted, not recomputed, on reload; is_link is the one exception and
// is recomputed from the text when the field is absent.
type record struct {
	Text            string `json:"text"`
	Date            string `json:"date"`
	Author          string `json:"author"`
	IsForwarded     bool   `json:"is_forwarded"`
	DocumentID      *int   `json:"document_id"`
	HasPhoto        bool   `json:"has_photo"`
	HasVoice        bool   `json:"has_voice"`
	HasAudio        bool   `json:"has_audio"`
	HasVideoMessage bool   `json:"has_video_message"`
	HasVideoFile    bool   `json:"has_video_file"`
	HasVideo        bool   `json:"has_video"`
	HasSticker      bool   `json:"has_sticker"`
	IsLink          *bool  `json:"is_link"`
}

func toRecord(m Message) record {
	isLink := m.IsLink
	return record{
		Text:            m.Text,
		Date:            m.Timestamp.Format(TimeLayout),
		Author:          m.Author,
		IsForwarded:     m.IsForwarded,
		DocumentID:      m.DocumentID,
		HasPhoto:        m.HasPhoto,
		HasVoice:        m.HasVoice,
		HasAudio:        m.HasAudio,
		HasVideoMessage: m.HasVideoMessage,
		HasVideoFile:    m.HasVideoFile,
		HasVideo:        m.HasVideo(),
		HasSticker:      m.HasSticker,
		IsLink:          &isLink,
	}
}

func fromRecord(r record) (Message, error) {
	ts, err := time.Parse(TimeLayout, r.Date)
	if err != nil {
		return Message{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	m := Message{
		Text:            r.Text,
		Timestamp:       ts,
		Author:          r.Author,
		IsForwarded:     r.IsForwarded,
		DocumentID:      r.DocumentID,
		HasPhoto:        r.HasPhoto,
		HasVoice:        r.HasVoice,
		HasAudio:        r.HasAudio,
		HasVideoMessage: r.HasVideoMessage,
		HasVideoFile:    r.HasVideoFile,
		HasSticker:      r.HasSticker,
	}
	if r.IsLink != nil {
		m.IsLink = *r.IsLink
	} else {
		m.IsLink = IsLink(r.Text)
	}
	// Older snapshots carried only the aggregate video flag.
	if r.HasVideo && !m.HasVideoMessage && !m.HasVideoFile {
		m.HasVideoMessage = true
	}
	return m, nil
}

// Marshal renders msgs as a JSON array of flat records.
func Marshal(msgs []Message) ([]byte, error) {
	records := make([]record, len(msgs))
	for i, m := range msgs {
		records[i] = toRecord(m)
	}
	return json.Marshal(records)
}

// Unmarshal parses a JSON array of flat records back into messages.
func Unmarshal(data []byte) ([]Message, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	msgs := make([]Message, 0, len(records))
	for i, r := range records {
		m, err := fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Save writes msgs to path as a snapshot file.
func Save(path string, msgs []Message) error {
	data, err := Marshal(msgs)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	slog.Info("messages stored", "path", path, "count", len(msgs))
	return nil
}

// Load reads a snapshot file back into messages.
func Load(path string) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	msgs, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	slog.Info("messages loaded", "path", path, "count", len(msgs))
	return msgs, nil
}
