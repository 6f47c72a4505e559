package domain

import (
	"context"
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrInvalidInput is returned when an input is not well-formed text.
	ErrInvalidInput = zerr.New("invalid graph input")

	// ErrParse is returned when an edge-list record cannot be parsed.
	ErrParse = zerr.New("malformed edge record")

	// ErrResourceExceeded is returned when a graph is larger than the configured limits.
	ErrResourceExceeded = zerr.New("graph exceeds resource limits")

	// ErrBackpressure is returned when the compute pool queue is full.
	ErrBackpressure = zerr.New("compute pool saturated")

	// ErrCacheUnavailable is returned by cache backends that cannot be reached.
	// It is never surfaced to callers; the race treats it as a miss.
	ErrCacheUnavailable = zerr.New("result cache unavailable")

	// ErrTimeout is returned when an item does not resolve before its deadline.
	ErrTimeout = zerr.New("item deadline exceeded")

	// ErrMalformedBatch is returned when a batch is rejected before processing.
	ErrMalformedBatch = zerr.New("malformed batch")

	// ErrPoolClosed is returned when work is submitted to a closed pool.
	ErrPoolClosed = zerr.New("compute pool closed")

	// ErrComputePanic is returned when a computation panics.
	ErrComputePanic = zerr.New("computation panicked")

	// ErrObstructionNotFound is returned when a non-planar graph yields no Kuratowski subdivision.
	ErrObstructionNotFound = zerr.New("failed to extract Kuratowski obstruction")

	// ErrCacheReadFailed is returned when a cache entry cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache entry")

	// ErrCacheWriteFailed is returned when a cache entry cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheUnmarshalFailed is returned when a cached value cannot be decoded.
	ErrCacheUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrCacheMarshalFailed is returned when a result cannot be encoded for the cache.
	ErrCacheMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrUnknownCacheBackend is returned when the configured cache backend is not supported.
	ErrUnknownCacheBackend = zerr.New("unknown cache backend")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrBatchFailed is returned by the CLI when at least one record carried an error.
	ErrBatchFailed = zerr.New("one or more graphs failed")
)

// ErrorKind classifies per-item failures on the wire.
type ErrorKind string

const (
	// KindInputError marks malformed text.
	KindInputError ErrorKind = "input_error"
	// KindParseError marks malformed edge records.
	KindParseError ErrorKind = "parse_error"
	// KindResourceExceeded marks graphs over the configured limits.
	KindResourceExceeded ErrorKind = "resource_exceeded"
	// KindBackpressure marks items rejected by a saturated pool after all retries.
	KindBackpressure ErrorKind = "backpressure"
	// KindTimeout marks items that missed their deadline.
	KindTimeout ErrorKind = "timeout"
	// KindCanceled marks items abandoned because the caller went away.
	KindCanceled ErrorKind = "canceled"
	// KindInternal marks everything else.
	KindInternal ErrorKind = "internal"
)

// KindOf maps an error onto its wire classification.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInputError
	case errors.Is(err, ErrParse):
		return KindParseError
	case errors.Is(err, ErrResourceExceeded):
		return KindResourceExceeded
	case errors.Is(err, ErrBackpressure):
		return KindBackpressure
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}
