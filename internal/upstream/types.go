package upstream

import (
	"errors"
	"fmt"
)

// RawRecord is one record as the upstream returns it. Field names and value
// types vary between sources and even between rows of the same source, so
// records are carried untyped until the normalizer maps them.
type RawRecord map[string]interface{}

// Query describes one price lookup against the upstream sources.
type Query struct {
	Commodity string
	State     string
	District  string
	Limit     int
}

// HasLocationFilter reports whether the query narrows by state or district.
func (q Query) HasLocationFilter() bool {
	return q.State != "" || q.District != ""
}

// FetchResult carries the raw records plus the provenance of the source
// that produced them.
type FetchResult struct {
	Records []RawRecord
	Source  string
}

// ErrAllSourcesFailed is the terminal condition raised when every source and
// attempt in the fallback ladder has failed. It is the only upstream error
// surfaced to API consumers.
var ErrAllSourcesFailed = errors.New("unable to fetch market data from any source")

// SourceError represents a failed request against a single upstream source.
type SourceError struct {
	Source string
	Status int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s returned status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s request failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
