package timeline

import (
	"time"

	"github.com/danuhaha/telestats/internal/message"
)

// DayBucket holds one calendar day's messages. Days without messages are
// kept, with an empty slice.
type DayBucket struct {
	Day      time.Time
	Messages []message.Message
}

// PerDay groups messages by calendar day, covering every day between the
// first and last message.
func PerDay(msgs []message.Message) []DayBucket {
	if len(msgs) == 0 {
		return nil
	}
	start := dateOnly(msgs[0].Timestamp)
	end := dateOnly(msgs[len(msgs)-1].Timestamp)

	var buckets []DayBucket
	index := make(map[time.Time]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d] = len(buckets)
		buckets = append(buckets, DayBucket{Day: d})
	}
	for _, m := range msgs {
		i := index[dateOnly(m.Timestamp)]
		buckets[i].Messages = append(buckets[i].Messages, m)
	}
	return buckets
}

// PerHour groups messages by hour of day across all days.
func PerHour(msgs []message.Message) [24][]message.Message {
	var res [24][]message.Message
	for _, m := range msgs {
		h := m.Timestamp.Hour()
		res[h] = append(res[h], m)
	}
	return res
}

// PerWeekday groups messages by day of week, Monday first.
func PerWeekday(msgs []message.Message) [7][]message.Message {
	var res [7][]message.Message
	for _, m := range msgs {
		d := (int(m.Timestamp.Weekday()) + 6) % 7
		res[d] = append(res[d], m)
	}
	return res
}

// LongestPause returns the longest silence between two consecutive
// messages, with the pause's endpoints.
func LongestPause(msgs []message.Message) (time.Duration, time.Time, time.Time) {
	if len(msgs) == 0 {
		return 0, time.Time{}, time.Time{}
	}
	var longest time.Duration
	start, end := msgs[0].Timestamp, msgs[0].Timestamp
	prev := msgs[0].Timestamp
	for _, m := range msgs[1:] {
		if d := m.Timestamp.Sub(prev); d > longest {
			longest = d
			start, end = prev, m.Timestamp
		}
		prev = m.Timestamp
	}
	return longest, start, end
}
