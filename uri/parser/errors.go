package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrParse wraps every error returned by the parser.
	ErrParse = errors.New("parser")

	// ErrSyntax errors report input that does not match the grammar.
	ErrSyntax = fmt.Errorf("%w: syntax", ErrParse)

	// ErrSemantic errors report grammatical input that is invalid against
	// the model.
	ErrSemantic = fmt.Errorf("%w: semantic", ErrParse)
)

// ErrorKind distinguishes syntax errors from semantic errors.
type ErrorKind int

//revive:disable:exported
const (
	KindSyntax   ErrorKind = iota // syntax
	KindSemantic                  // semantic
)

// String returns "syntax" or "semantic".
func (k ErrorKind) String() string {
	if k == KindSemantic {
		return "semantic"
	}
	return "syntax"
}

// Key identifies the reason for an [Error]. Each key has a fixed message
// template filled with the error's Params.
type Key int

//revive:disable:exported
const (
	// Syntax error keys.
	KeyExpected           Key = iota // expected %v
	KeyUnexpected                    // unexpected %q
	KeyInvalidLiteral                // invalid %v literal %q
	KeyDuplicateOption               // duplicate system query option %v
	KeyUnknownOption                 // unknown system query option %v
	KeyOptionNotAllowed              // system query option %v not allowed %v
	KeyInvalidOptionValue            // invalid %v value %q
	KeyLevelsWithExpand              // $levels and $expand both set on %v
	KeyLevelsOutsideExpand           // $levels is only valid within $expand
	KeyDuplicateAlias                // duplicate parameter alias @%v
	KeyDuplicateName                 // duplicate name %q
	KeyMissingOption                 // %v requires %v
	KeyEmptySegment                  // empty resource path segment

	// Semantic error keys.
	KeyUnknownResource       // unknown resource %q
	KeyQualifiedFirstSegment // first resource path segment %q must not be namespace-qualified
	KeyUnknownProperty       // unknown property %q on %v
	KeyUnknownType           // unknown type %q
	KeyIncompatibleType      // type %v is not compatible with %v
	KeyDuplicateTypeFilter   // %v already has type filter %v
	KeyUnknownFunction       // no overload of %v with parameters (%v)
	KeyUnknownEntitySet      // unknown entity set %q
	KeyUnknownNamespace      // unknown namespace %q
	KeyUnknownEnumMember     // unknown member %q of %v
	KeyUnknownAggregate      // unknown aggregation method %v
	KeyWrongArity            // %v expects %v parameters, got %v
	KeyTypeMismatch          // %v expects %v, got %v
	KeyKeyCount              // %v has %v key properties, got %v
	KeyUnknownKey            // unknown key property %q on %v
	KeyCollectionPath        // %v is a collection and cannot be followed by %q
	KeyNotCollection         // %v is not a collection
	KeyMustBeLast            // %v must be the last segment
	KeyValueNotAllowed       // $value is not allowed after %v
	KeyNotStructured         // %v is not a structured type
	KeyDuplicateVariable     // lambda variable %q is already defined
	KeyAliasExists           // %q is already a property of %v
	KeyAliasCycle            // parameter alias @%v refers to itself
	KeyNotComposable         // %v is not composable
	KeyInvalidBinding        // %v must be bound to and return a structured collection

	keyCount
)

//nolint:gochecknoglobals
var keyMessages = [keyCount]string{
	KeyExpected:              "expected %v",
	KeyUnexpected:            "unexpected %q",
	KeyInvalidLiteral:        "invalid %v literal %q",
	KeyDuplicateOption:       "duplicate system query option %v",
	KeyUnknownOption:         "unknown system query option %v",
	KeyOptionNotAllowed:      "system query option %v not allowed %v",
	KeyInvalidOptionValue:    "invalid %v value %q",
	KeyLevelsWithExpand:      "$levels and $expand both set on %v",
	KeyLevelsOutsideExpand:   "$levels is only valid within $expand",
	KeyDuplicateAlias:        "duplicate parameter alias @%v",
	KeyDuplicateName:         "duplicate name %q",
	KeyMissingOption:         "%v requires %v",
	KeyEmptySegment:          "empty resource path segment",
	KeyUnknownResource:       "unknown resource %q",
	KeyQualifiedFirstSegment: "first resource path segment %q must not be namespace-qualified",
	KeyUnknownProperty:       "unknown property %q on %v",
	KeyUnknownType:           "unknown type %q",
	KeyIncompatibleType:      "type %v is not compatible with %v",
	KeyDuplicateTypeFilter:   "%v already has type filter %v",
	KeyUnknownFunction:       "no overload of %v with parameters (%v)",
	KeyUnknownEntitySet:      "unknown entity set %q",
	KeyUnknownNamespace:      "unknown namespace %q",
	KeyUnknownEnumMember:     "unknown member %q of %v",
	KeyUnknownAggregate:      "unknown aggregation method %v",
	KeyWrongArity:            "%v expects %v parameters, got %v",
	KeyTypeMismatch:          "%v expects %v, got %v",
	KeyKeyCount:              "%v has %v key properties, got %v",
	KeyUnknownKey:            "unknown key property %q on %v",
	KeyCollectionPath:        "%v is a collection and cannot be followed by %q",
	KeyNotCollection:         "%v is not a collection",
	KeyMustBeLast:            "%v must be the last segment",
	KeyValueNotAllowed:       "$value is not allowed after %v",
	KeyNotStructured:         "%v is not a structured type",
	KeyDuplicateVariable:     "lambda variable %q is already defined",
	KeyAliasExists:           "%q is already a property of %v",
	KeyAliasCycle:            "parameter alias @%v refers to itself",
	KeyNotComposable:         "%v is not composable",
	KeyInvalidBinding:        "%v must be bound to and return a structured collection",
}

// Kind returns the error kind of k.
func (k Key) Kind() ErrorKind {
	if k >= KeyUnknownResource {
		return KindSemantic
	}
	return KindSyntax
}

// Error is a parse failure. Params fill the message template of Key, and
// Pos is the byte offset of the failure in the parsed text.
type Error struct {
	Kind   ErrorKind
	Key    Key
	Params []string
	Pos    int
}

// newError creates an error for key at pos. The kind derives from key.
func newError(key Key, pos int, params ...string) *Error {
	return &Error{Kind: key.Kind(), Key: key, Params: params, Pos: pos}
}

// Message returns the rendered message without kind or position.
func (e *Error) Message() string {
	if e.Key < 0 || e.Key >= keyCount {
		return "unknown error"
	}
	args := make([]any, len(e.Params))
	for i, p := range e.Params {
		args[i] = p
	}
	return fmt.Sprintf(keyMessages[e.Key], args...)
}

// Error returns the message prefixed by the kind and followed by the
// position.
func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v error at %d: %v", ErrParse, e.Kind, e.Pos, e.Message())
}

// Unwrap returns ErrSyntax or ErrSemantic.
func (e *Error) Unwrap() error {
	if e.Kind == KindSemantic {
		return ErrSemantic
	}
	return ErrSyntax
}
