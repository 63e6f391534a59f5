package elf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty     = errors.New("elf: empty file")
	ErrTooLarge  = errors.New("elf: file too large to map")
	ErrClosed    = errors.New("elf: file already closed")
	ErrMagic     = errors.New("elf: invalid magic")
	ErrClass     = errors.New("elf: unknown class")
	ErrData      = errors.New("elf: unknown data encoding")
	ErrBounds    = errors.New("elf: out of bounds")
	ErrEntrySize = errors.New("elf: invalid entry size")
	ErrIndex     = errors.New("elf: index out of range")
	ErrLink      = errors.New("elf: invalid section link")
	ErrReference = errors.New("elf: malformed reference")

	ErrNoSymbolTable   = errors.New("elf: no symbol table")
	ErrSymbolNotFound  = errors.New("elf: symbol not found")
	ErrSectionNotFound = errors.New("elf: section not found")
)

// Stage names the step of the decoding pipeline an error comes from.
type Stage int

const (
	StageOpen Stage = iota
	StageIdentify
	StageHeader
	StageSection
	StageString
	StageSymbol
	StageSegment
)

func (s Stage) String() string {
	switch s {
	case StageOpen:
		return "open"
	case StageIdentify:
		return "identify"
	case StageHeader:
		return "header decode"
	case StageSection:
		return "section walk"
	case StageString:
		return "string resolve"
	case StageSymbol:
		return "symbol decode"
	case StageSegment:
		return "segment walk"
	default:
		return "unknown"
	}
}

// OpenError reports a failure to acquire the bytes of a file.
type OpenError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("elf: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// FormatError reports malformed or unsupported content. Index and Offset
// are -1 when they do not apply.
type FormatError struct {
	Stage  Stage
	Index  int
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	var str strings.Builder
	str.WriteString("elf: ")
	str.WriteString(e.Stage.String())
	if e.Index >= 0 {
		fmt.Fprintf(&str, " [index %d]", e.Index)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&str, " [offset %#x]", e.Offset)
	}
	str.WriteString(": ")
	str.WriteString(strings.TrimPrefix(e.Err.Error(), "elf: "))
	return str.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnsupportedError reports a value that is well defined by the format
// but that this package refuses to interpret.
type UnsupportedError struct {
	Field string
	Value int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("elf: unsupported %s (%d)", e.Field, e.Value)
}

func formatError(stage Stage, err error) *FormatError {
	return &FormatError{
		Stage:  stage,
		Index:  -1,
		Offset: -1,
		Err:    err,
	}
}

func indexError(stage Stage, index int, err error) *FormatError {
	e := formatError(stage, err)
	e.Index = index
	return e
}

func offsetError(stage Stage, index int, offset uint64, err error) *FormatError {
	e := indexError(stage, index, err)
	e.Offset = int64(offset)
	if e.Offset < 0 {
		e.Offset = -1
	}
	return e
}
