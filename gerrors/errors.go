// Package gerrors defines the error kinds raised across the PRG build,
// kmer-precompute, quasimap, and genotyping pipeline.
package gerrors

import "github.com/pkg/errors"

// Kind classifies a failure so callers can decide whether to abort or
// recover locally.
type Kind int

const (
	// KindMalformedPRG: unmatched even marker, or symbol beyond the declared
	// alphabet ceiling. Fatal at build time.
	KindMalformedPRG Kind = iota
	// KindCorruptPrecalc: the kmer precalc file has the wrong field count, a
	// non-numeric field, or a PRG fingerprint mismatch. Recovered by
	// regenerating the cache.
	KindCorruptPrecalc
	// KindInconsistentPloidy: genotype-index counts disagree across sites
	// when walking the coverage graph for a personalised reference. Fatal at
	// report time.
	KindInconsistentPloidy
	// KindIO: propagated I/O failure; always surfaced with the offending path.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindMalformedPRG:
		return "MalformedPRG"
	case KindCorruptPrecalc:
		return "CorruptPrecalc"
	case KindInconsistentPloidy:
		return "InconsistentPloidy"
	case KindIO:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can type-switch via
// errors.As without parsing message text.
type Error struct {
	Kind  Kind
	Path  string // set for KindIO
	cause error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return e.Kind.String() + ": " + e.Path + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Cause() error { return e.cause }
func (e *Error) Unwrap() error { return e.cause }

// MalformedPRG wraps msg as a KindMalformedPRG error.
func MalformedPRG(format string, args ...interface{}) error {
	return &Error{Kind: KindMalformedPRG, cause: errors.Errorf(format, args...)}
}

// CorruptPrecalc wraps msg as a KindCorruptPrecalc error.
func CorruptPrecalc(format string, args ...interface{}) error {
	return &Error{Kind: KindCorruptPrecalc, cause: errors.Errorf(format, args...)}
}

// InconsistentPloidy wraps msg as a KindInconsistentPloidy error.
func InconsistentPloidy(format string, args ...interface{}) error {
	return &Error{Kind: KindInconsistentPloidy, cause: errors.Errorf(format, args...)}
}

// IO wraps err, attaching path, as a KindIO error.
func IO(path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIO, Path: path, cause: errors.WithStack(err)}
}

// Is reports whether err (or something it wraps) is a gerrors.Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
