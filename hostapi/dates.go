package hostapi

import (
	"regexp"
	"strconv"
	"time"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/xhit/go-str2duration/v2"
)

const dateLayout = time.RFC3339

var (
	relativeExpr = regexp.MustCompile(`^__relative_([+-]?\d+)([A-Za-z]+)$`)
	intervalExpr = regexp.MustCompile(
		`^__interval_(__relative_[+-]?\d+[A-Za-z]+|[^_]+)_(__relative_[+-]?\d+[A-Za-z]+|[^_]+)$`,
	)
	absoluteLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
)

// presets are named intervals, as days back from today.
var presets = map[string]int{
	"today":        0,
	"yesterday":    1,
	"last_7_days":  6,
	"last_30_days": 29,
}

// resolveDate turns a relative expression or an absolute date into a time. ok is false for
// anything it does not understand.
func resolveDate(now time.Time, expr string) (time.Time, bool) {
	if m := relativeExpr.FindStringSubmatch(expr); m != nil {
		return shift(now, m[1], m[2])
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, expr); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// shift applies n units to now. Months (M) and years (y) go through AddDate; everything else
// is a duration.
func shift(now time.Time, n, unit string) (time.Time, bool) {
	count, err := strconv.Atoi(n)
	if err != nil {
		return time.Time{}, false
	}
	switch unit {
	case "M":
		return now.AddDate(0, count, 0), true
	case "y":
		return now.AddDate(count, 0, 0), true
	}
	d, err := str2duration.ParseDuration(n + unit)
	if err != nil {
		return time.Time{}, false
	}
	return now.Add(d), true
}

func truncate(t time.Time, part bridge.IntervalPart) time.Time {
	y, m, d := t.Date()
	switch part {
	case bridge.IntervalPartStart:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case bridge.IntervalPartEnd:
		return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
	default:
		return t
	}
}

func formatDate(t time.Time) *string {
	s := t.UTC().Format(dateLayout)
	return &s
}

func resolveInterval(now time.Time, expr string) (*bridge.Interval, bool) {
	if days, ok := presets[expr]; ok {
		end := now
		if expr == "yesterday" {
			end = now.AddDate(0, 0, -1)
		}
		from := truncate(now.AddDate(0, 0, -days), bridge.IntervalPartStart)
		to := truncate(end, bridge.IntervalPartEnd)
		return &bridge.Interval{From: *formatDate(from), To: *formatDate(to)}, true
	}

	m := intervalExpr.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}
	from, ok := resolveDate(now, m[1])
	if !ok {
		return nil, false
	}
	to, ok := resolveDate(now, m[2])
	if !ok {
		return nil, false
	}
	return &bridge.Interval{
		From: *formatDate(truncate(from, bridge.IntervalPartStart)),
		To:   *formatDate(truncate(to, bridge.IntervalPartEnd)),
	}, true
}
