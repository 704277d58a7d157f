package ingest

import "testing"

func TestClassify_ExplicitMarkers(t *testing.T) {
	f := Classify(Signals{Voice: true, Photo: true})
	if !f.Voice || !f.Photo {
		t.Errorf("explicit markers lost: %+v", f)
	}
	if f.Audio || f.VideoMessage || f.VideoFile || f.Sticker {
		t.Errorf("unexpected flags: %+v", f)
	}
}

func TestClassify_FileExtensions(t *testing.T) {
	cases := []struct {
		file  string
		check func(Flags) bool
		kind  string
	}{
		{"voice.mp3", func(f Flags) bool { return f.Audio }, "audio"},
		{"SONG.FLAC", func(f Flags) bool { return f.Audio }, "audio"},
		{"clip.mp4", func(f Flags) bool { return f.VideoFile }, "video file"},
		{"movie.webm", func(f Flags) bool { return f.VideoFile }, "video file"},
		{"sticker.webp", func(f Flags) bool { return f.Sticker }, "sticker"},
	}
	for _, c := range cases {
		f := Classify(Signals{FileName: c.file})
		if !c.check(f) {
			t.Errorf("%s: expected %s flag, got %+v", c.file, c.kind, f)
		}
	}
}

func TestClassify_TitleHints(t *testing.T) {
	if f := Classify(Signals{Title: "Voice message"}); !f.Voice {
		t.Error("title hint should set voice")
	}
	if f := Classify(Signals{Title: "Video message"}); !f.VideoMessage {
		t.Error("title hint should set video message")
	}
	if f := Classify(Signals{Title: "Audio file"}); !f.Audio {
		t.Error("title hint should set audio")
	}
}

func TestClassify_ExplicitMarkerBeatsTitle(t *testing.T) {
	// A structural voice marker with a misleading title stays a voice
	// message only.
	f := Classify(Signals{Voice: true, Title: "Audio file"})
	if !f.Voice {
		t.Error("voice marker lost")
	}
	// The title still classifies the audio kind: each category resolves
	// independently.
	if !f.Audio {
		t.Error("audio title hint should still apply to the audio category")
	}
}

func TestClassify_StickerClearsPhoto(t *testing.T) {
	f := Classify(Signals{Photo: true, Sticker: true})
	if f.Photo {
		t.Error("sticker must clear photo")
	}
	if !f.Sticker {
		t.Error("sticker flag lost")
	}

	// Sticker derived from a title hint behaves identically.
	f = Classify(Signals{Photo: true, Title: "Sticker"})
	if f.Photo || !f.Sticker {
		t.Errorf("title-derived sticker should clear photo: %+v", f)
	}

	// Sticker derived from a .webp file as well.
	f = Classify(Signals{Photo: true, FileName: "AnimatedSticker.webp"})
	if f.Photo || !f.Sticker {
		t.Errorf("extension-derived sticker should clear photo: %+v", f)
	}
}

func TestClassify_GenericVideo(t *testing.T) {
	// Ambiguous generic signal defaults to a video message.
	f := Classify(Signals{GenericVideo: true})
	if !f.VideoMessage || f.VideoFile {
		t.Errorf("ambiguous generic video should default to video message: %+v", f)
	}

	// A video title resolves the generic signal to a file.
	f = Classify(Signals{GenericVideo: true, Title: "Video file (2.3 MB)"})
	if !f.VideoFile || f.VideoMessage {
		t.Errorf("generic video with a video title should be a video file: %+v", f)
	}

	// "Video message" in the title wins over the generic signal.
	f = Classify(Signals{GenericVideo: true, Title: "Video message"})
	if !f.VideoMessage || f.VideoFile {
		t.Errorf("generic video with a video-message title: %+v", f)
	}

	// An explicit sub-kind silences the generic fallback.
	f = Classify(Signals{GenericVideo: true, VideoFile: true})
	if f.VideoMessage {
		t.Errorf("resolved generic video must not add a video message: %+v", f)
	}
}

func TestClassify_NoSignals(t *testing.T) {
	f := Classify(Signals{})
	if f != (Flags{}) {
		t.Errorf("no signals should yield no flags: %+v", f)
	}
}
