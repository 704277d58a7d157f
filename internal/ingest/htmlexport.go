package ingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/danuhaha/telestats/internal/message"
)

// htmlFiles resolves an export path to the ordered list of HTML files to
// parse: the path itself when it is a single .html file, otherwise every
// *.html inside the directory.
func htmlFiles(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(path), ".html") {
			return []string{path}
		}
		return nil
	}
	files, _ := filepath.Glob(filepath.Join(path, "*.html"))
	sort.Strings(files)
	return files
}

// ParseHTMLExport parses a rendered HTML export (a messages.html file or
// a directory of them) into a timestamp-sorted message sequence. Author
// labels are explicit only on the first message of a consecutive run by
// one author; the run's remaining messages inherit the label, and the
// inheritance carries across file boundaries.
func ParseHTMLExport(path, self, counterpart string) ([]message.Message, error) {
	files := htmlFiles(path)
	if len(files) == 0 {
		slog.Warn("no HTML files found", "path", path)
		return nil, nil
	}

	var msgs []message.Message
	dropped := 0
	lastAuthor := ""

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("failed to read HTML file", "path", f, "error", err)
			continue
		}
		doc, err := html.Parse(strings.NewReader(string(data)))
		if err != nil {
			slog.Warn("failed to parse HTML file", "path", f, "error", err)
			continue
		}

		for _, block := range messageBlocks(doc) {
			m, ok := normalizeBlock(block, self, counterpart, &lastAuthor)
			if !ok {
				dropped++
				continue
			}
			msgs = append(msgs, m)
		}
	}

	message.SortStable(msgs)
	slog.Info("messages parsed from HTML export", "path", path, "files", len(files), "parsed", len(msgs), "dropped", dropped)
	return msgs, nil
}

// normalizeBlock converts one message block into a Message. Service
// events and blocks without a parseable timestamp are dropped.
func normalizeBlock(block *html.Node, self, counterpart string, lastAuthor *string) (message.Message, bool) {
	if hasClass(block, "service") {
		return message.Message{}, false
	}

	dateNode := findByClass(block, "date")
	if dateNode == nil {
		return message.Message{}, false
	}
	// The machine-generated title attribute is preferred over the
	// rendered text.
	raw := attrValue(dateNode, "title")
	if raw == "" {
		raw = nodeText(dateNode)
	}
	ts, err := ParseFree(raw)
	if err != nil {
		return message.Message{}, false
	}

	rawAuthor := ""
	if n := findByClass(block, "from_name"); n != nil {
		rawAuthor = nodeText(n)
	}
	author := inheritAuthor(rawAuthor, self, counterpart, *lastAuthor)
	if rawAuthor != "" {
		*lastAuthor = rawAuthor
	} else if *lastAuthor == "" {
		*lastAuthor = author
	}

	text := ""
	if n := findByClass(block, "text"); n != nil {
		text = nodeText(n)
	}

	// The title inside the media subtree describes the attachment; a
	// bare title elsewhere in the block is only a fallback.
	title := ""
	if media := findByClass(block, "media"); media != nil {
		if n := findByClass(media, "title"); n != nil {
			title = nodeText(n)
		}
	}
	if title == "" {
		if n := findByClass(block, "title"); n != nil {
			title = nodeText(n)
		}
	}

	flags := Classify(Signals{
		Photo:        findByClass(block, "media_photo") != nil,
		Voice:        findByClass(block, "media_voice_message") != nil,
		Audio:        findByClass(block, "media_audio_file") != nil || findByClass(block, "media_audio") != nil,
		VideoMessage: findByClass(block, "media_video_message") != nil,
		VideoFile:    findByClass(block, "media_video_file") != nil,
		Sticker:      findByClass(block, "media_sticker") != nil,
		GenericVideo: findByClass(block, "media_video") != nil,
		Title:        title,
	})

	return message.New(message.Attrs{
		Text:            text,
		Timestamp:       ts,
		Author:          author,
		IsForwarded:     findByClass(block, "forwarded") != nil,
		HasPhoto:        flags.Photo,
		HasVoice:        flags.Voice,
		HasAudio:        flags.Audio,
		HasVideoMessage: flags.VideoMessage,
		HasVideoFile:    flags.VideoFile,
		HasSticker:      flags.Sticker,
	}), true
}

// inheritAuthor resolves an explicit author label, or falls back to the
// most recently seen one. With no author ever seen, the counterpart
// identity is assumed.
func inheritAuthor(raw, self, counterpart, last string) string {
	if raw != "" {
		return ResolveAuthor(raw, self, counterpart)
	}
	if last != "" {
		return last
	}
	return counterpart
}

// messageBlocks collects every div carrying the "message" class.
func messageBlocks(doc *html.Node) []*html.Node {
	var blocks []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "message") {
			blocks = append(blocks, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks
}

// findByClass returns the first descendant element carrying the class.
func findByClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, class) {
			return c
		}
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attrValue(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText flattens a subtree's text nodes: each fragment is trimmed and
// non-empty fragments are joined with newlines.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}
