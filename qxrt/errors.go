package qxrt

import "fmt"

// Position is the diagnostic location attached to every runtime error:
// the document's path (if read from a file) plus the decoder's line and
// column at the point the error was raised.
type Position struct {
	Path   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Path == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Column)
}

// XMLError is raised for every malformed-or-unexpected-structure failure:
// a wrong child element, a missing required child, a size constraint
// violation, an invalid enum value, or a missing required attribute. It
// carries the position of the token that triggered it.
type XMLError struct {
	Pos Position
	Msg string
}

func (e *XMLError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Bytes implements the raw-bytes accessor half of the abstract Exception
// contract described by the host pull-parser's diagnostics.
func (e *XMLError) Bytes() []byte { return []byte(e.Msg) }

// FileError is raised when the document cannot be opened at all.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func (e *FileError) Bytes() []byte { return []byte(e.Error()) }

// CheckError promotes a Reader's sticky error, if any, to a normal Go
// error. The generated readDocumentFrom calls it once, after the root
// element has been read, to report a decoder error recorded without being
// returned.
func CheckError(r Reader) error {
	return r.Err()
}

// ThrowChild reports that the current start element's local name does
// not match any of the alternatives a content slot accepted.
func ThrowChild(r Reader, got string, want ...string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("unexpected child element %q (want one of %v)", got, want)}
}

// ThrowNoChild reports that a slot required a child element but the
// reader had already exhausted its parent's content.
func ThrowNoChild(r Reader, want ...string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("no child element found (want one of %v)", want)}
}

// ThrowMissingChild reports an xs:all alternative that was required but
// never observed.
func ThrowMissingChild(r Reader, name string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("missing required child element %q", name)}
}

// ThrowInvalidSimple reports that element or attribute text could not be
// converted to its scalar host type.
func ThrowInvalidSimple(r Reader, raw string, err error) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("invalid value %q: %v", raw, err)}
}

// ThrowSizeError reports a list whose occurrence count fell below its
// minimum min. When exact is true, the message says exactly min elements
// were expected (a fixed-arity group repetition or union).
func ThrowSizeError(r Reader, name string, min, current int, exact bool) error {
	if exact {
		return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("expected exactly %d %q elements, got %d", min, name, current)}
	}
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("expected at least %d %q elements, got %d", min, name, current)}
}

// ThrowInvalidEnum reports a restriction value outside its enumeration.
func ThrowInvalidEnum(r Reader, value string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("invalid enumeration value %q", value)}
}

// ThrowMissingAttribute reports a required attribute absent from the
// current start element.
func ThrowMissingAttribute(r Reader, name string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("missing required attribute %q", name)}
}

// ThrowDuplicateChild reports an xs:all alternative observed more than
// once.
func ThrowDuplicateChild(r Reader, name string) error {
	return &XMLError{Pos: r.Position(), Msg: fmt.Sprintf("duplicate child element %q in all-group", name)}
}
