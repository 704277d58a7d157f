package timeline

import (
	"unicode/utf8"

	"github.com/danuhaha/telestats/internal/message"
)

// MaxMessageLen is the default upper length bound when filtering.
const MaxMessageLen = 4096

// FilterOptions select which messages survive Filter.
type FilterOptions struct {
	RemoveEmpty    bool
	RemoveLinks    bool
	RemoveForwards bool
	MinLen         int
	MaxLen         int // 0 means MaxMessageLen
}

// Filter returns the messages matching opts, preserving order.
func Filter(msgs []message.Message, opts FilterOptions) []message.Message {
	maxLen := opts.MaxLen
	if maxLen == 0 {
		maxLen = MaxMessageLen
	}
	var res []message.Message
	for _, m := range msgs {
		if opts.RemoveEmpty && m.Text == "" {
			continue
		}
		if n := utf8.RuneCountInString(m.Text); n < opts.MinLen || n > maxLen {
			continue
		}
		if opts.RemoveForwards && m.IsForwarded {
			continue
		}
		if opts.RemoveLinks && m.IsLink {
			continue
		}
		res = append(res, m)
	}
	return res
}
