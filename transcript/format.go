package transcript

import (
	"fmt"
	"strings"
)

// SummaryUnavailable is the placeholder the provider returns when the
// transcript carried too little material to summarize. It is never included
// in formatted output.
const SummaryUnavailable = "Insufficient information to generate a summary."

// DeepLinkBase is the prefix of the per-transcript deep link appended when
// FormatOptions.EmbedLink is set.
const DeepLinkBase = "https://app.swiftink.io/transcripts/"

// FormatOptions control which sections Format emits and how segment
// timestamps are rendered.
type FormatOptions struct {
	// Timestamps selects the timestamped segment rendering for the
	// Transcript body instead of the plain text field.
	Timestamps bool
	// TimestampFormat is FormatAuto or an explicit pattern (e.g. "HH:mm:ss").
	TimestampFormat string
	// GroupInterval merges timestamped segments into buckets of this many
	// seconds. Zero keeps one line per segment.
	GroupInterval float64
	// EmbedSummary includes the Summary section when a real summary exists.
	EmbedSummary bool
	// EmbedOutline includes the Outline section when heading segments exist.
	EmbedOutline bool
	// EmbedKeywords includes the Keywords section when keywords exist.
	EmbedKeywords bool
	// EmbedLink appends the deep-link trailer referencing the transcript.
	EmbedLink bool
}

// Format assembles the final document from a completed result. Sections
// appear in fixed order (Transcript, Summary, Outline, Keywords) and each
// section ends with exactly one line break regardless of whether its body
// already carried one.
func Format(res *Result, opts FormatOptions) string {
	out := "# Transcript\n"
	switch {
	case opts.Timestamps && opts.GroupInterval > 0:
		out += RenderGrouped(res.Segments, opts.TimestampFormat, opts.GroupInterval)
	case opts.Timestamps:
		out += Render(res.Segments, opts.TimestampFormat)
	default:
		out += res.Text
	}
	out = ensureNewline(out)

	if opts.EmbedSummary && res.Summary != "" && res.Summary != SummaryUnavailable {
		out += "# Summary\n" + res.Summary
		out = ensureNewline(out)
	}

	if opts.EmbedOutline && len(res.HeadingSegments) > 0 {
		out += "# Outline\n" + Render(res.HeadingSegments, opts.TimestampFormat)
		out = ensureNewline(out)
	}

	if opts.EmbedKeywords && len(res.Keywords) > 0 {
		out += "# Keywords\n" + strings.Join(res.Keywords, ", ")
		out = ensureNewline(out)
	}

	if opts.EmbedLink {
		out += fmt.Sprintf("View this transcript in Swiftink: %s%s", DeepLinkBase, res.ID)
		out = ensureNewline(out)
	}

	return out
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
