package ingest

import (
	"path"
	"strings"
)

// Signals are the raw media markers an adapter gathered for one record.
// Structural markers come from source-specific keys or class names; the
// file name and title text feed the fallback heuristics.
type Signals struct {
	Photo        bool
	Voice        bool
	Audio        bool
	VideoMessage bool
	VideoFile    bool
	Sticker      bool

	// GenericVideo is an ambiguous "has video" marker with no sub-kind.
	GenericVideo bool

	// FileName is an attached file name, matched against kind-specific
	// extension sets.
	FileName string

	// Title is the media title/caption text, matched case-insensitively
	// as a last-resort signal.
	Title string
}

// Flags are the six media flags on a normalized message.
type Flags struct {
	Photo        bool
	Voice        bool
	Audio        bool
	VideoMessage bool
	VideoFile    bool
	Sticker      bool
}

var audioExts = map[string]bool{
	".mp3": true, ".m4a": true, ".aac": true, ".ogg": true, ".flac": true, ".wav": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true,
}

// Classify turns raw media signals into the six flags. Per kind, an
// explicit structural marker wins, then a file-extension match, then a
// title hint. Sticker detection, however derived, clears the photo flag:
// photo and sticker are mutually exclusive even when their underlying
// markers overlap. An ambiguous generic video signal with neither
// sub-kind resolved defaults to a video message; that mirrors the
// historical meaning of the aggregate flag.
func Classify(sig Signals) Flags {
	f := Flags{
		Voice:        sig.Voice,
		Audio:        sig.Audio,
		VideoMessage: sig.VideoMessage,
		VideoFile:    sig.VideoFile,
		Sticker:      sig.Sticker,
	}

	ext := strings.ToLower(path.Ext(sig.FileName))
	if !f.Audio && audioExts[ext] {
		f.Audio = true
	}
	if !f.VideoFile && videoExts[ext] {
		f.VideoFile = true
	}
	if !f.Sticker && ext == ".webp" {
		f.Sticker = true
	}

	title := strings.ToLower(sig.Title)
	if !f.Voice && strings.Contains(title, "voice message") {
		f.Voice = true
	}
	if !f.VideoMessage && strings.Contains(title, "video message") {
		f.VideoMessage = true
	}
	if !f.Audio && (strings.Contains(title, "audio file") || strings.HasPrefix(title, "audio")) {
		f.Audio = true
	}
	if sig.GenericVideo && !f.VideoMessage && !f.VideoFile {
		if title != "" && strings.Contains(title, "video") {
			f.VideoFile = true
		} else {
			f.VideoMessage = true
		}
	}
	if !f.Sticker && sig.Photo && strings.Contains(title, "sticker") {
		f.Sticker = true
	}

	f.Photo = sig.Photo && !f.Sticker
	return f
}
