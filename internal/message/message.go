// Package message defines the canonical per-message record every
// downstream stage consumes, plus its flat JSON snapshot form.
package message

import (
	"regexp"
	"sort"
	"time"
)

// TimeLayout is the wall-clock layout used in snapshots. Timestamps are
// naive local time: any zone offset is stripped at parse time.
const TimeLayout = "2006-01-02 15:04:05"

// Message is a single normalized chat message. It is created once, by
// exactly one adapter, from exactly one raw source record. Later stages
// only read it or construct new records; nothing reassigns its fields.
type Message struct {
	Text            string
	Timestamp       time.Time
	Author          string
	IsForwarded     bool
	DocumentID      *int
	HasPhoto        bool
	HasVoice        bool
	HasAudio        bool
	HasVideoMessage bool
	HasVideoFile    bool
	HasSticker      bool
	IsLink          bool
}

// Attrs is the reconciled attribute set an adapter hands to New.
type Attrs struct {
	Text            string
	Timestamp       time.Time
	Author          string
	IsForwarded     bool
	DocumentID      *int
	HasPhoto        bool
	HasVoice        bool
	HasAudio        bool
	HasVideoMessage bool
	HasVideoFile    bool
	HasSticker      bool

	// HasVideo is the legacy aggregate video marker. When set with
	// neither sub-kind, it historically meant a video message.
	HasVideo bool
}

// New builds a Message from reconciled attributes. It derives IsLink
// from the text, resolves the legacy aggregate video marker, and keeps
// sticker and photo mutually exclusive.
func New(a Attrs) Message {
	m := Message{
		Text:            a.Text,
		Timestamp:       a.Timestamp,
		Author:          a.Author,
		IsForwarded:     a.IsForwarded,
		DocumentID:      a.DocumentID,
		HasPhoto:        a.HasPhoto,
		HasVoice:        a.HasVoice,
		HasAudio:        a.HasAudio,
		HasVideoMessage: a.HasVideoMessage,
		HasVideoFile:    a.HasVideoFile,
		HasSticker:      a.HasSticker,
		IsLink:          IsLink(a.Text),
	}
	if a.HasVideo && !m.HasVideoMessage && !m.HasVideoFile {
		m.HasVideoMessage = true
	}
	if m.HasSticker {
		m.HasPhoto = false
	}
	return m
}

// HasVideo reports the legacy aggregate video flag.
func (m Message) HasVideo() bool {
	return m.HasVideoMessage || m.HasVideoFile
}

var linkRE = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// IsLink reports whether s is exactly one well-formed URL.
func IsLink(s string) bool {
	return linkRE.MatchString(s)
}

// SortStable orders msgs ascending by timestamp in place. Equal
// timestamps retain their original encounter order.
func SortStable(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
