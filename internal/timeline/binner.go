// Package timeline derives time-bucketed structure from a sorted message
// sequence: adaptive weekly/monthly bins, gap-based conversation runs,
// and calendar groupers.
package timeline

import (
	"time"

	"github.com/danuhaha/telestats/internal/message"
)

// MonthsBorder is the calendar-month span above which binning switches
// from weekly to monthly buckets.
const MonthsBorder = 2

type Granularity int

const (
	Weekly Granularity = iota
	Monthly
)

func (g Granularity) String() string {
	if g == Monthly {
		return "month"
	}
	return "week"
}

// Binning is the bucket structure for a message sequence: per-bucket
// start offsets in days from the first message, human-readable labels,
// plotting x-positions and the bucketed messages themselves. All four
// slices are index-aligned.
type Binning struct {
	Granularity Granularity
	Offsets     []int
	Labels      []string
	Positions   []float64
	Buckets     [][]message.Message
}

// CountMonths returns the number of whole calendar months between the
// first and last message.
func CountMonths(msgs []message.Message) int {
	if len(msgs) == 0 {
		return 0
	}
	a, b := msgs[0].Timestamp, msgs[len(msgs)-1].Timestamp
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() || (b.Day() == a.Day() && secondOfDay(b) < secondOfDay(a)) {
		months--
	}
	return months
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Bin buckets a sorted message sequence. Sequences spanning more than
// MonthsBorder calendar months get monthly buckets, shorter ones weekly.
// The first bucket's label is blanked when its boundary falls too close
// to the sequence start (10 days monthly, 3 days weekly), since such a
// bucket is misleadingly short.
func Bin(msgs []message.Message) Binning {
	if len(msgs) == 0 {
		return Binning{}
	}

	start := dateOnly(msgs[0].Timestamp)
	end := dateOnly(msgs[len(msgs)-1].Timestamp)

	var b Binning
	var starts []time.Time
	if CountMonths(msgs) > MonthsBorder {
		b.Granularity = Monthly
		starts = monthStarts(start, end)
		for _, s := range starts {
			b.Labels = append(b.Labels, s.Format("01/06"))
		}
		if len(starts) > 1 && days(starts[1].Sub(start)) < 10 {
			b.Labels[0] = ""
		}
	} else {
		b.Granularity = Weekly
		starts = weekStarts(start, end)
		for _, s := range starts {
			b.Labels = append(b.Labels, s.Format("02/01/06"))
		}
		if len(starts) > 2 && days(starts[1].Sub(start)) < 3 {
			b.Labels[0] = ""
		}
	}

	for _, s := range starts {
		b.Offsets = append(b.Offsets, max(0, days(s.Sub(start))))
	}

	b.Buckets = make([][]message.Message, len(starts))
	index := make(map[time.Time]int, len(starts))
	for i, s := range starts {
		index[s] = i
	}
	for _, m := range msgs {
		var key time.Time
		if b.Granularity == Monthly {
			key = time.Date(m.Timestamp.Year(), m.Timestamp.Month(), 1, 0, 0, 0, 0, time.UTC)
		} else {
			key = weekStart(dateOnly(m.Timestamp))
		}
		if i, ok := index[key]; ok {
			b.Buckets[i] = append(b.Buckets[i], m)
		}
	}

	b.Positions = positions(b.Offsets, days(end.Sub(start)))
	return b
}

// positions places each bucket's x-coordinate at the midpoint between
// its start offset and the next bucket's start offset. The first bucket
// stays pinned to its own start; the last one sits midway between its
// start and the end of the sequence.
func positions(offsets []int, endOffset int) []float64 {
	if len(offsets) == 0 {
		return nil
	}
	x := make([]float64, 0, len(offsets))
	x = append(x, float64(offsets[0]))
	for i := 1; i < len(offsets)-1; i++ {
		x = append(x, (float64(offsets[i])+float64(offsets[i+1]))/2)
	}
	if len(offsets) > 1 {
		x = append(x, (float64(offsets[len(offsets)-1])+float64(endOffset))/2)
	}
	return x
}

func days(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

// monthStarts lists the first day of every month from start's month
// through end's month.
func monthStarts(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var res []time.Time
	for !cur.After(last) {
		res = append(res, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return res
}

// weekStart returns the Monday on or before d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// weekStarts lists calendar week starts (Mondays) covering [start, end].
func weekStarts(start, end time.Time) []time.Time {
	cur := weekStart(start)
	var res []time.Time
	for !cur.After(end) {
		res = append(res, cur)
		cur = cur.AddDate(0, 0, 7)
	}
	return res
}
