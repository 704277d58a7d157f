package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danuhaha/telestats/internal/message"
)

// Record is a raw message record in the JSON export shape. The live
// retriever produces the same shape, so it feeds FromRecords directly.
// Marker fields are kept raw: presence of the key is the signal, not its
// value.
type Record struct {
	Type            string          `json:"type"`
	Text            json.RawMessage `json:"text"`
	Date            string          `json:"date"`
	From            *string         `json:"from"`
	File            *string         `json:"file"`
	DocumentID      *int            `json:"document_id"`
	Photo           json.RawMessage `json:"photo"`
	VoiceMessage    json.RawMessage `json:"voice_message"`
	VideoMessage    json.RawMessage `json:"video_message"`
	VideoFile       json.RawMessage `json:"video_file"`
	AudioFile       json.RawMessage `json:"audio_file"`
	StickerEmoji    json.RawMessage `json:"sticker_emoji"`
	ForwardedFrom   json.RawMessage `json:"forwarded_from"`
	ForwardedFromID json.RawMessage `json:"forwarded_from_id"`
}

// coerceText flattens a text field that is either a plain string or an
// ordered list of segments (plain strings or objects with a "text"
// field). Non-textual segments are dropped; order is preserved.
func coerceText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		var ps string
		if err := json.Unmarshal(p, &ps); err == nil {
			b.WriteString(ps)
			continue
		}
		var seg struct {
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(p, &seg); err != nil || seg.Text == nil {
			continue
		}
		var ts string
		if err := json.Unmarshal(seg.Text, &ts); err == nil {
			b.WriteString(ts)
		}
	}
	return b.String()
}

// normalizeRecord converts one raw record into a Message. The second
// return value is false when the record is not a message or has no
// parseable timestamp; such records are dropped silently.
func normalizeRecord(rec Record, self, counterpart string) (message.Message, bool) {
	if rec.Type != "message" {
		return message.Message{}, false
	}
	if rec.Date == "" {
		return message.Message{}, false
	}
	ts, err := ParseISO(rec.Date)
	if err != nil {
		return message.Message{}, false
	}

	var from string
	if rec.From != nil {
		from = *rec.From
	}
	var file string
	if rec.File != nil {
		file = *rec.File
	}

	flags := Classify(Signals{
		Photo:        rec.Photo != nil,
		Voice:        rec.VoiceMessage != nil,
		VideoMessage: rec.VideoMessage != nil,
		VideoFile:    rec.VideoFile != nil,
		Audio:        rec.AudioFile != nil,
		Sticker:      rec.StickerEmoji != nil,
		FileName:     file,
	})

	return message.New(message.Attrs{
		Text:            coerceText(rec.Text),
		Timestamp:       ts,
		Author:          ResolveAuthor(from, self, counterpart),
		IsForwarded:     rec.ForwardedFrom != nil || rec.ForwardedFromID != nil,
		DocumentID:      rec.DocumentID,
		HasPhoto:        flags.Photo,
		HasVoice:        flags.Voice,
		HasAudio:        flags.Audio,
		HasVideoMessage: flags.VideoMessage,
		HasVideoFile:    flags.VideoFile,
		HasSticker:      flags.Sticker,
	}), true
}

// FromRecords normalizes an in-memory raw record list, e.g. one produced
// by a live retriever, into a timestamp-sorted message sequence.
func FromRecords(records []Record, self, counterpart string) []message.Message {
	var msgs []message.Message
	dropped := 0
	for _, rec := range records {
		m, ok := normalizeRecord(rec, self, counterpart)
		if !ok {
			dropped++
			continue
		}
		msgs = append(msgs, m)
	}
	message.SortStable(msgs)
	slog.Info("records normalized", "parsed", len(msgs), "dropped", dropped)
	return msgs
}

// jsonShardFiles resolves an export path to the list of shard files: the
// path itself when it is a file, otherwise the canonical names and the
// numbered-shard glob inside the directory.
func jsonShardFiles(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return []string{path}
	}

	candidates := []string{
		filepath.Join(path, "result.json"),
		filepath.Join(path, "messages.json"),
	}
	globbed, _ := filepath.Glob(filepath.Join(path, "messages*.json"))
	sort.Strings(globbed)
	candidates = append(candidates, globbed...)

	seen := make(map[string]bool, len(candidates))
	var files []string
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			files = append(files, c)
		}
	}
	return files
}

// ParseJSONExport parses a JSON export file or shard directory into a
// timestamp-sorted message sequence. Shards are concatenated before the
// final sort, so shard boundaries never affect ordering. An absent
// source yields an empty sequence, not an error.
func ParseJSONExport(path, self, counterpart string) ([]message.Message, error) {
	files := jsonShardFiles(path)
	if len(files) == 0 {
		slog.Warn("no JSON export found", "path", path, "expected", "result.json or messages*.json")
		return nil, nil
	}

	var msgs []message.Message
	dropped := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("failed to read shard", "path", f, "error", err)
			continue
		}
		records, err := decodeShard(data)
		if err != nil {
			slog.Warn("failed to parse shard", "path", f, "error", err)
			continue
		}
		for _, rec := range records {
			m, ok := normalizeRecord(rec, self, counterpart)
			if !ok {
				dropped++
				continue
			}
			msgs = append(msgs, m)
		}
	}

	message.SortStable(msgs)
	slog.Info("messages parsed from JSON export", "path", path, "shards", len(files), "parsed", len(msgs), "dropped", dropped)
	return msgs, nil
}

// decodeShard accepts either an object with a "messages" array or a bare
// array of records.
func decodeShard(data []byte) ([]Record, error) {
	var root struct {
		Messages []Record `json:"messages"`
	}
	if err := json.Unmarshal(data, &root); err == nil && root.Messages != nil {
		return root.Messages, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("neither a messages object nor an array: %w", err)
	}
	return records, nil
}
