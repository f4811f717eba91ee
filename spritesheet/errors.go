package spritesheet

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies load failures.
type ErrorKind int

const (
	// KindIO means the descriptor could not be read.
	KindIO ErrorKind = iota + 1
	// KindDependencyLoad means the companion image could not be loaded.
	KindDependencyLoad
	// KindDescriptorSyntax means the descriptor is not well-formed XML.
	KindDescriptorSyntax
	// KindInvalidSubTexture means a SubTexture element lacks a required
	// attribute, has a malformed number, or describes an unrepresentable
	// rectangle.
	KindInvalidSubTexture
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindDependencyLoad:
		return "unable to load dependency"
	case KindDescriptorSyntax:
		return "xml parse error"
	case KindInvalidSubTexture:
		return "invalid SubTexture"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by every failed load.
type Error struct {
	Kind ErrorKind
	// Path is the descriptor path, or the image path for KindDependencyLoad.
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("spritesheet: %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Cause() error  { return e.Err }

// IsKind reports whether err is, or wraps, an *Error of the passed kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
