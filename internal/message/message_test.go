package message

import (
	"testing"
	"time"
)

func TestIsLink(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"ftp://files.example.org/pub", true},
		{"https://localhost:8080/", true},
		{"http://192.168.0.1/admin", true},
		{"example.com", false},
		{"see https://example.com", false},
		{"https://example.com and more", false},
		{"", false},
		{"just text", false},
	}
	for _, c := range cases {
		if got := IsLink(c.text); got != c.want {
			t.Errorf("IsLink(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNew_DerivesLink(t *testing.T) {
	m := New(Attrs{Text: "https://example.com", Timestamp: time.Now()})
	if !m.IsLink {
		t.Error("expected IsLink for a bare URL text")
	}
	m = New(Attrs{Text: "hello", Timestamp: time.Now()})
	if m.IsLink {
		t.Error("did not expect IsLink for plain text")
	}
}

func TestNew_LegacyVideoDefaultsToVideoMessage(t *testing.T) {
	m := New(Attrs{Text: "x", HasVideo: true})
	if !m.HasVideoMessage {
		t.Error("ambiguous legacy video should default to video message")
	}
	if m.HasVideoFile {
		t.Error("ambiguous legacy video must not set video file")
	}

	m = New(Attrs{Text: "x", HasVideo: true, HasVideoFile: true})
	if m.HasVideoMessage {
		t.Error("legacy video with an explicit sub-kind must not add video message")
	}
}

func TestNew_StickerClearsPhoto(t *testing.T) {
	m := New(Attrs{Text: "", HasPhoto: true, HasSticker: true})
	if m.HasPhoto {
		t.Error("sticker must clear the photo flag")
	}
	if !m.HasSticker {
		t.Error("sticker flag lost")
	}
}

func TestHasVideo_Aggregate(t *testing.T) {
	if (Message{}).HasVideo() {
		t.Error("no video flags should mean no aggregate video")
	}
	if !(Message{HasVideoMessage: true}).HasVideo() {
		t.Error("video message should set the aggregate")
	}
	if !(Message{HasVideoFile: true}).HasVideo() {
		t.Error("video file should set the aggregate")
	}
}

func TestSortStable(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Text: "c", Timestamp: base.Add(time.Minute)},
		{Text: "a", Timestamp: base},
		{Text: "b", Timestamp: base},
	}
	SortStable(msgs)

	if msgs[0].Text != "a" || msgs[1].Text != "b" || msgs[2].Text != "c" {
		t.Errorf("unexpected order: %q %q %q", msgs[0].Text, msgs[1].Text, msgs[2].Text)
	}
}
