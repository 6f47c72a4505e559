package domain

// Fingerprint is the hex-encoded content digest of a normalized graph input.
// It is the cache key and the in-batch deduplication key.
type Fingerprint string

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns an abbreviated form for logs and terminal output.
func (f Fingerprint) Short() string {
	const shortLen = 12
	if len(f) <= shortLen {
		return string(f)
	}
	return string(f[:shortLen])
}
