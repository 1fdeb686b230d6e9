package bmffio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooDeep is returned when boxes nest deeper than the parser's configured limit.
var ErrTooDeep = errors.New("bmffio: box nesting too deep")

// UnderrunError reports a read that needed more bytes than remained in the active scope.
type UnderrunError struct {
	Offset    int64
	Requested uint64
	Available uint64
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf("bmffio: underrun at offset %d: requested %d bytes, %d available",
		e.Offset, e.Requested, e.Available)
}

// OutOfRangeError reports an entry index outside a decoded table.
type OutOfRangeError struct {
	Index int
	Count int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("bmffio: index %d out of range, %d entries", e.Index, e.Count)
}

func checkIndex(i, count int) error {
	if i < 0 || i >= count {
		return &OutOfRangeError{Index: i, Count: count}
	}
	return nil
}

// BoxSizeError reports a box whose declared size cannot even hold its own header.
type BoxSizeError struct {
	Type       Tag
	Offset     int64
	Size       uint64
	HeaderSize int
}

func (e *BoxSizeError) Error() string {
	return fmt.Sprintf("bmffio: box %q at offset %d declares size %d, header alone is %d bytes",
		e.Type.String(), e.Offset, e.Size, e.HeaderSize)
}

// ParseError is the failure returned by Parse. It records the chain of boxes, outermost
// first, that were being decoded when the root cause occurred.
type ParseError struct {
	Debug  string
	Offset int64
	Err    error
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "bmffio: parse error: " + strings.Join(s, ",") + ": " + p.Err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// Path returns the box types from the outermost box down to the failing one.
func (p *ParseError) Path() (path []string) {
	for err := p; err != nil; err = err.prev {
		path = append(path, err.Debug)
	}
	return
}

func parseErr(debug string, offset int64, prev error) error {
	var ppe *ParseError
	if errors.As(prev, &ppe) {
		return &ParseError{Debug: debug, Offset: offset, Err: ppe.Err, prev: ppe}
	}
	return &ParseError{Debug: debug, Offset: offset, Err: prev}
}
