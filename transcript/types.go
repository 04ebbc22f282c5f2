package transcript

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds. End >= Start.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}

// Result aggregates everything a completed transcription job returned.
// Fields other than ID are optional; providers fill what they have.
type Result struct {
	// ID is the provider-assigned transcript identifier, used to build
	// the deep-link trailer.
	ID string `json:"id"`
	// Text is the full transcript as plain text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments in start-time order.
	Segments []Segment `json:"segments,omitempty"`
	// Summary is a provider-generated summary of the transcript.
	Summary string `json:"summary,omitempty"`
	// HeadingSegments contains time-aligned outline headings.
	HeadingSegments []Segment `json:"heading_segments,omitempty"`
	// Keywords contains provider-extracted keywords in rank order.
	Keywords []string `json:"keywords,omitempty"`
}
