package output

import "io"

// Handler renders command results in one output format.
type Handler[T any] interface {
	// Writer returns the destination of rendered output.
	Writer() io.Writer

	// HandleResult renders a single item.
	HandleResult(item T) error

	// HandleResults renders a collection of items.
	HandleResults(items ...T) error

	// HandleError renders err and returns the error the command should exit with.
	HandleError(err error) error
}

// WriteFunc writes a header or footer for a collection of count items of type T.
type WriteFunc[T any] func(w io.Writer, count int)

// Printer renders items of type T as human-readable text.
type Printer[T any] interface {
	// Header is called once before the items are printed.
	Header(w io.Writer, count int)

	// SetHeader replaces the header function.
	SetHeader(fn WriteFunc[T])

	// Item prints one item.
	Item(w io.Writer, elem T) error

	// Footer is called once after the items are printed.
	Footer(w io.Writer, count int)

	// SetFooter replaces the footer function.
	SetFooter(fn WriteFunc[T])
}

// ResultsPayload wraps a collection under the "results" key.
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ResultPayload wraps a single item under the "result" key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload wraps an error message under the "error" key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
