package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryDeck   Category = "deck"
	CategoryServer Category = "server"
	CategoryCLI    Category = "cli"
)

// Location is a position in a configuration or deck file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file[:line[:column]].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line <= 0 {
		return l.File
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// PagenavError is a structured error with a code, location and fix hints.
type PagenavError struct {
	// Code is a registry key such as "E101".
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation.
	Detail string

	Location *Location

	// Context holds the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is a configuration snippet showing the correct form.
	Example string

	Wrapped error
}

// Error implements the error interface.
func (e *PagenavError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PagenavError) Unwrap() error {
	return e.Wrapped
}

// Is matches another PagenavError carrying the same code.
func (e *PagenavError) Is(target error) bool {
	t, ok := target.(*PagenavError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation records a file position and reads the surrounding lines.
func (e *PagenavError) WithLocation(file string, line, column int) *PagenavError {
	e.Location = &Location{File: file, Line: line, Column: column}
	if line > 0 {
		e.Context = readContextLines(file, line, 5)
	}
	return e
}

// WithFile records the file an error relates to without a line.
func (e *PagenavError) WithFile(file string) *PagenavError {
	e.Location = &Location{File: file}
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *PagenavError) WithSuggestion(s string) *PagenavError {
	e.Suggestion = s
	return e
}

// WithExample adds a configuration example.
func (e *PagenavError) WithExample(ex string) *PagenavError {
	e.Example = ex
	return e
}

// WithDetail replaces the registered detail.
func (e *PagenavError) WithDetail(d string) *PagenavError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PagenavError) Wrap(err error) *PagenavError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	n := 0
	start := max(targetLine-contextSize/2, 1)
	end := targetLine + contextSize/2
	for scanner.Scan() {
		n++
		if n >= start && n <= end {
			lines = append(lines, scanner.Text())
		}
		if n > end {
			break
		}
	}
	return lines
}

// New creates a PagenavError from a registered code.
func New(code string) *PagenavError {
	tmpl, ok := registry[code]
	if !ok {
		return &PagenavError{Code: code, Message: "Unknown error"}
	}
	return &PagenavError{
		Code:     code,
		Category: tmpl.Category,
		Message:  tmpl.Message,
		Detail:   tmpl.Detail,
	}
}

// Newf creates an uncoded PagenavError with a formatted message.
func Newf(category Category, format string, args ...any) *PagenavError {
	return &PagenavError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err if it already is a PagenavError, otherwise it wraps
// err in a new error with the given code.
func FromError(err error, code string) *PagenavError {
	if err == nil {
		return nil
	}
	var pe *PagenavError
	if errors.As(err, &pe) {
		return pe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code string) bool {
	return errors.Is(err, &PagenavError{Code: code})
}
