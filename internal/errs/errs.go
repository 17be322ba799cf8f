// Package errs defines the error taxonomy used across the pipeline.
//
// Only InputError and AuthError are meant to abort a run. Every other type
// here is carried as data (a FIXME tag, a log line) and never returned from
// a phase function as a fatal error.
package errs

import "fmt"

// InputError reports an unreadable source file or a missing required layer.
// It is always fatal.
type InputError struct {
	Path   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s: %s", e.Path, e.Reason)
}

// AuthReason distinguishes the two HTTP outcomes the source's download step
// must distinguish, per spec.md §7.
type AuthReason int

const (
	Unauthorized AuthReason = iota // HTTP 401 — stored credentials must be invalidated
	Forbidden                      // HTTP 403 — credentials are still valid but insufficient
)

func (r AuthReason) String() string {
	if r == Unauthorized {
		return "unauthorized"
	}
	return "forbidden"
}

// AuthError reports an authentication failure on a remote fetch. Always fatal.
type AuthError struct {
	Reason AuthReason
	URL    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Reason, e.URL)
}

// GeometryAnomaly records a non-fatal geometry problem: a self-intersecting
// ring that was auto-split, an unclosed ring that fell back to LineString
// emission, or an out-of-order member list after a feature combine. Phases
// log these; they are never returned to the caller as a Go error that halts
// the pipeline.
type GeometryAnomaly struct {
	FeatureKind string
	Reason      string
}

func (e *GeometryAnomaly) Error() string {
	return fmt.Sprintf("geometry anomaly in %s: %s", e.FeatureKind, e.Reason)
}

// UnknownTagError marks a source object kind with no entry in the tagging
// tables. The ingestion phase accumulates these in a "missing tags" set and
// stamps FIXME=Tag <kind> on the affected feature; it never aborts.
type UnknownTagError struct {
	ObjectKind string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag for object kind %q", e.ObjectKind)
}

// NameAmbiguityError marks a place-name match with more than one plausible
// candidate. Never fatal; the caller converts it into a FIXME tag plus
// auxiliary Ortnamn points.
type NameAmbiguityError struct {
	FeatureKind string
	Candidates  []string
}

func (e *NameAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous name for %s: %d candidates", e.FeatureKind, len(e.Candidates))
}

// DisconnectedCombinationError marks a segment-coalescing run that turned
// out not to be end-to-end connected. The run is kept, concatenated as-is,
// with a debug marker rather than dropped.
type DisconnectedCombinationError struct {
	ObjectKind string
}

func (e *DisconnectedCombinationError) Error() string {
	return fmt.Sprintf("disconnected combination run for %s", e.ObjectKind)
}

// IsFatal reports whether err should abort the pipeline, per spec.md §7:
// only InputError and AuthError halt a run.
func IsFatal(err error) bool {
	switch err.(type) {
	case *InputError, *AuthError:
		return true
	default:
		return false
	}
}
