package transcript

import (
	"strings"
	"testing"
)

func fullResult() *Result {
	return &Result{
		ID:   "tr_123",
		Text: "hello world",
		Segments: []Segment{
			{Start: 0, End: 5, Text: "hello"},
			{Start: 5, End: 10, Text: "world"},
		},
		Summary: "A greeting.",
		HeadingSegments: []Segment{
			{Start: 0, End: 10, Text: "Greetings"},
		},
		Keywords: []string{"hello", "world"},
	}
}

func TestFormat_AllFlagsFalse_OnlyTranscriptSection(t *testing.T) {
	out := Format(fullResult(), FormatOptions{})

	if out != "# Transcript\nhello world\n" {
		t.Errorf("unexpected output: %q", out)
	}
	for _, h := range []string{"# Summary", "# Outline", "# Keywords", DeepLinkBase} {
		if strings.Contains(out, h) {
			t.Errorf("output should not contain %q", h)
		}
	}
}

func TestFormat_TimestampedBody(t *testing.T) {
	out := Format(fullResult(), FormatOptions{Timestamps: true, TimestampFormat: FormatAuto})

	if !strings.Contains(out, "00:00 - 00:05: hello") {
		t.Errorf("expected timestamped body, got %q", out)
	}
	if strings.Contains(out, "hello world") {
		t.Errorf("plain text body should be replaced, got %q", out)
	}
}

func TestFormat_AllSectionsInFixedOrder(t *testing.T) {
	out := Format(fullResult(), FormatOptions{
		EmbedSummary:  true,
		EmbedOutline:  true,
		EmbedKeywords: true,
		EmbedLink:     true,
	})

	order := []string{"# Transcript", "# Summary", "# Outline", "# Keywords", DeepLinkBase + "tr_123"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		if idx < 0 {
			t.Fatalf("missing %q in %q", marker, out)
		}
		if idx < last {
			t.Errorf("%q out of order in %q", marker, out)
		}
		last = idx
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output must end with a newline: %q", out)
	}
}

func TestFormat_SentinelSummaryExcluded(t *testing.T) {
	res := fullResult()
	res.Summary = SummaryUnavailable

	out := Format(res, FormatOptions{EmbedSummary: true})
	if strings.Contains(out, "# Summary") {
		t.Errorf("sentinel summary must not be included: %q", out)
	}
}

func TestFormat_EmptySummaryExcluded(t *testing.T) {
	res := fullResult()
	res.Summary = ""

	out := Format(res, FormatOptions{EmbedSummary: true})
	if strings.Contains(out, "# Summary") {
		t.Errorf("empty summary must not be included: %q", out)
	}
}

func TestFormat_EmptyOutlineAndKeywordsExcluded(t *testing.T) {
	res := fullResult()
	res.HeadingSegments = nil
	res.Keywords = nil

	out := Format(res, FormatOptions{EmbedOutline: true, EmbedKeywords: true})
	if strings.Contains(out, "# Outline") || strings.Contains(out, "# Keywords") {
		t.Errorf("empty sections must not be included: %q", out)
	}
}

func TestFormat_KeywordsCommaJoined(t *testing.T) {
	out := Format(fullResult(), FormatOptions{EmbedKeywords: true})
	if !strings.Contains(out, "# Keywords\nhello, world\n") {
		t.Errorf("expected comma-joined keywords, got %q", out)
	}
}

func TestFormat_SingleTrailingNewlinePerSection(t *testing.T) {
	res := fullResult()
	res.Summary = "Already terminated.\n"

	out := Format(res, FormatOptions{EmbedSummary: true, EmbedKeywords: true})

	if strings.Contains(out, "\n\n") {
		t.Errorf("sections must be separated by exactly one newline: %q", out)
	}
}

func TestFormat_GroupedTranscript(t *testing.T) {
	out := Format(fullResult(), FormatOptions{
		Timestamps:      true,
		TimestampFormat: FormatAuto,
		GroupInterval:   60,
	})

	if out != "# Transcript\n00:00 - 00:10: helloworld\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	res := fullResult()
	opts := FormatOptions{
		Timestamps:      true,
		TimestampFormat: FormatAuto,
		EmbedSummary:    true,
		EmbedOutline:    true,
		EmbedKeywords:   true,
		EmbedLink:       true,
	}

	first := Format(res, opts)
	second := Format(res, opts)
	if first != second {
		t.Errorf("formatting is not idempotent:\n%q\n%q", first, second)
	}
}
