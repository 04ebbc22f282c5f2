package transcript

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FormatAuto selects the timestamp pattern from the material: mm:ss below
// one hour of audio, HH:mm:ss from one hour up.
const FormatAuto = "auto"

const (
	patternShort = "mm:ss"
	patternLong  = "HH:mm:ss"
)

// Render produces one "<start> - <end>: <text>" line per segment, in input
// order, with segment text trimmed. It returns the empty string for an empty
// segment sequence.
func Render(segments []Segment, format string) string {
	return RenderGrouped(segments, format, 0)
}

// RenderGrouped renders segments aggregated into fixed-width time buckets of
// the given interval in seconds. Each segment joins the bucket
// floor(start/interval); within a bucket the start is the first member's
// start, the end is the running maximum of member ends, and the text is the
// plain concatenation of member texts in encounter order. Buckets render in
// ascending key order. An interval of zero disables grouping.
func RenderGrouped(segments []Segment, format string, interval float64) string {
	if len(segments) == 0 {
		return ""
	}

	pattern := resolvePattern(segments, format)

	if interval <= 0 {
		lines := make([]string, len(segments))
		for i, seg := range segments {
			lines[i] = renderLine(seg.Start, seg.End, seg.Text, pattern)
		}
		return strings.Join(lines, "\n")
	}

	type bucket struct {
		start float64
		end   float64
		text  strings.Builder
	}

	buckets := make(map[int]*bucket)
	keys := make([]int, 0)
	for _, seg := range segments {
		k := int(math.Floor(seg.Start / interval))
		b, ok := buckets[k]
		if !ok {
			b = &bucket{start: seg.Start, end: seg.End}
			buckets[k] = b
			keys = append(keys, k)
		}
		if seg.End > b.end {
			b.end = seg.End
		}
		b.text.WriteString(seg.Text)
	}
	sort.Ints(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		b := buckets[k]
		lines[i] = renderLine(b.start, b.end, b.text.String(), pattern)
	}
	return strings.Join(lines, "\n")
}

func renderLine(start, end float64, text, pattern string) string {
	return fmt.Sprintf("%s - %s: %s",
		formatTimestamp(start, pattern),
		formatTimestamp(end, pattern),
		strings.TrimSpace(text))
}

// resolvePattern maps FormatAuto to a concrete pattern based on the maximum
// segment end. With no segments the maximum is zero, so auto falls back to
// the sub-hour pattern.
func resolvePattern(segments []Segment, format string) string {
	if format != FormatAuto && format != "" {
		return format
	}
	var maxEnd float64
	for _, seg := range segments {
		if seg.End > maxEnd {
			maxEnd = seg.End
		}
	}
	if maxEnd < 3600 {
		return patternShort
	}
	return patternLong
}

// formatTimestamp renders elapsed seconds using a pattern built from the
// tokens HH, H, mm, m, ss, s. Durations are pure arithmetic; no calendar or
// timezone conversion is involved. When the pattern carries no hour token,
// minutes absorb whole hours so long material stays unambiguous.
func formatTimestamp(seconds float64, pattern string) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)

	hours := total / 3600
	minutes := (total % 3600) / 60
	if !strings.Contains(pattern, "H") {
		minutes = total / 60
	}
	secs := total % 60

	r := strings.NewReplacer(
		"HH", fmt.Sprintf("%02d", hours),
		"H", strconv.Itoa(hours),
		"mm", fmt.Sprintf("%02d", minutes),
		"m", strconv.Itoa(minutes),
		"ss", fmt.Sprintf("%02d", secs),
		"s", strconv.Itoa(secs),
	)
	return r.Replace(pattern)
}
