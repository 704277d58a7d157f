package timeline

import (
	"time"

	"github.com/danuhaha/telestats/internal/message"
)

// DefaultGap is the silence threshold that ends a conversation run.
const DefaultGap = 30 * time.Minute

// Split partitions a sorted message sequence into conversation runs. A
// new run starts whenever the delta to the previous message strictly
// exceeds gap; otherwise the message extends the current run. Every
// input message lands in exactly one run, in order.
func Split(msgs []message.Message, gap time.Duration) [][]message.Message {
	if len(msgs) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultGap
	}

	var runs [][]message.Message
	current := []message.Message{msgs[0]}
	for _, m := range msgs[1:] {
		if m.Timestamp.Sub(current[len(current)-1].Timestamp) > gap {
			runs = append(runs, current)
			current = []message.Message{m}
			continue
		}
		current = append(current, m)
	}
	return append(runs, current)
}
