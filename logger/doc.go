// Package logger wraps zerolog with component tagging, a named-logger
// registry, and helpers for structured fields.
//
// Components obtain a tagged logger with logger.Get("swiftink") and log with
// field maps built by Fields, ErrorFields, and DurationFields.
package logger
