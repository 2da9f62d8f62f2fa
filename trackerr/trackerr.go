// Package trackerr defines the typed error kinds shared by the tracking
// driver, projection renderer, and export compositor. Most kinds are
// "local" — the driver swallows them and continues — while a small set
// abort an entire export. See Kind.Fatal for the propagation policy.
package trackerr

import "fmt"

// Kind identifies one of the error categories a caller may want to branch
// on. Do not compare error values directly with == across package
// boundaries; use errors.As with *Error and inspect Kind.
type Kind int

const (
	// KindSourceUnavailable: the frame source could not seek or decode.
	// Fatal to export.
	KindSourceUnavailable Kind = iota
	// KindVisionPrimitiveFailure: flow or homography returned empty or
	// degenerate output. Local — the update is skipped.
	KindVisionPrimitiveFailure
	// KindConfidenceTooLow: inlier fraction below the confidence
	// threshold. Local — identical policy to KindVisionPrimitiveFailure.
	KindConfidenceTooLow
	// KindDegenerateTransform: NaN or out-of-range corners after a
	// homography was applied. Local — corners are reverted.
	KindDegenerateTransform
	// KindInsufficientFeatures: fewer than N_MIN feature points survived
	// filtering. Local — triggers regeneration.
	KindInsufficientFeatures
	// KindAnchorMissing: a text references a deleted tracker or point.
	// Local — the render step skips that text.
	KindAnchorMissing
	// KindOutputWriteFailure: the encoder sink rejected a frame. Fatal —
	// the export is cancelled and resources released.
	KindOutputWriteFailure
	// KindCancelled: the caller requested cancellation. User-visible,
	// not logged as an error.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindSourceUnavailable:
		return "SourceUnavailable"
	case KindVisionPrimitiveFailure:
		return "VisionPrimitiveFailure"
	case KindConfidenceTooLow:
		return "ConfidenceTooLow"
	case KindDegenerateTransform:
		return "DegenerateTransform"
	case KindInsufficientFeatures:
		return "InsufficientFeatures"
	case KindAnchorMissing:
		return "AnchorMissing"
	case KindOutputWriteFailure:
		return "OutputWriteFailure"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Fatal reports whether errors of this kind abort a whole export, per the
// propagation policy: only SourceUnavailable and OutputWriteFailure do.
func (k Kind) Fatal() bool {
	return k == KindSourceUnavailable || k == KindOutputWriteFailure
}

// Error wraps a Kind with context. Callers that need to branch on Kind
// should use errors.As with a *trackerr.Error target or the Is helper below.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "planartrack.update"
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error for the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an *Error for the given kind, wrapping an underlying cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Is reports whether err is a *Error of the given kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if te, ok := err.(*Error); ok {
			return te.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
