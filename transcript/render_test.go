package transcript

import (
	"strings"
	"testing"
)

func TestRender_OneLinePerSegmentInInputOrder(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 65, Text: "a"},
		{Start: 70, End: 130, Text: "b"},
	}

	out := Render(segments, FormatAuto)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "00:00 - 01:05: a" {
		t.Errorf("expected %q, got %q", "00:00 - 01:05: a", lines[0])
	}
	if lines[1] != "01:10 - 02:10: b" {
		t.Errorf("expected %q, got %q", "01:10 - 02:10: b", lines[1])
	}
}

func TestRender_EmptySequence(t *testing.T) {
	if out := Render(nil, FormatAuto); out != "" {
		t.Errorf("expected empty string, got %q", out)
	}
}

func TestRender_TrimsSegmentText(t *testing.T) {
	out := Render([]Segment{{Start: 0, End: 1, Text: "  hello  "}}, FormatAuto)
	if out != "00:00 - 00:01: hello" {
		t.Errorf("expected trimmed text, got %q", out)
	}
}

func TestRender_AutoFormatSelection(t *testing.T) {
	tests := []struct {
		name   string
		maxEnd float64
		want   string
	}{
		{"just below one hour", 3599, "59:58 - 59:59: x"},
		{"exactly one hour", 3600, "00:59:59 - 01:00:00: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render([]Segment{{Start: tt.maxEnd - 1, End: tt.maxEnd, Text: "x"}}, FormatAuto)
			if out != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestRender_ExplicitPattern(t *testing.T) {
	out := Render([]Segment{{Start: 3723, End: 3725, Text: "x"}}, "HH:mm:ss")
	if out != "01:02:03 - 01:02:05: x" {
		t.Errorf("expected %q, got %q", "01:02:03 - 01:02:05: x", out)
	}
}

func TestRender_MinutesAbsorbHoursWithoutHourToken(t *testing.T) {
	out := Render([]Segment{{Start: 3900, End: 3905, Text: "x"}}, "mm:ss")
	if out != "65:00 - 65:05: x" {
		t.Errorf("expected %q, got %q", "65:00 - 65:05: x", out)
	}
}

func TestRenderGrouped_BucketAssignment(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 10, Text: "a "},
		{Start: 25, End: 40, Text: "b "},
		{Start: 45, End: 55, Text: "c"},
		{Start: 70, End: 80, Text: "d"},
	}

	out := RenderGrouped(segments, FormatAuto, 60)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %q", len(lines), out)
	}
	// First bucket: starts at first member, end is max of member ends,
	// text is plain concatenation, trimmed.
	if lines[0] != "00:00 - 00:55: a b c" {
		t.Errorf("expected %q, got %q", "00:00 - 00:55: a b c", lines[0])
	}
	if lines[1] != "01:10 - 01:20: d" {
		t.Errorf("expected %q, got %q", "01:10 - 01:20: d", lines[1])
	}
}

func TestRenderGrouped_BucketEndIsRunningMax(t *testing.T) {
	// A long first segment must keep the bucket end even when later
	// members end earlier.
	segments := []Segment{
		{Start: 0, End: 50, Text: "long"},
		{Start: 10, End: 20, Text: " short"},
	}

	out := RenderGrouped(segments, FormatAuto, 60)
	if out != "00:00 - 00:50: long short" {
		t.Errorf("expected %q, got %q", "00:00 - 00:50: long short", out)
	}
}

func TestRenderGrouped_BucketsSortedByKey(t *testing.T) {
	// Segments arriving out of bucket order still render in ascending
	// bucket key order.
	segments := []Segment{
		{Start: 130, End: 140, Text: "late"},
		{Start: 5, End: 15, Text: "early"},
	}

	out := RenderGrouped(segments, FormatAuto, 60)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "00:05 - 00:15: early" {
		t.Errorf("expected early bucket first, got %q", lines[0])
	}
	if lines[1] != "02:10 - 02:20: late" {
		t.Errorf("expected late bucket second, got %q", lines[1])
	}
}

func TestRenderGrouped_ZeroIntervalDisablesGrouping(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 10, Text: "a"},
		{Start: 20, End: 30, Text: "b"},
	}
	if got, want := RenderGrouped(segments, FormatAuto, 0), Render(segments, FormatAuto); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
