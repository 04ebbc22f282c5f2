// Package transcript holds the normalized transcript model and the pure
// rendering logic that turns it into markdown-like text.
//
// Rendering is split in two layers:
//
//   - Render / RenderGrouped: timed segments to "<start> - <end>: <text>"
//     lines, with optional fixed-width time bucketing.
//   - Format: a completed Result to the final document (Transcript, Summary,
//     Outline, Keywords sections plus an optional deep-link trailer).
//
// Both layers are side-effect free and deterministic: formatting the same
// result twice yields identical output.
package transcript
