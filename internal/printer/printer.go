// Package printer renders gateway results as text for the CLI.
package printer

import (
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
	bold   = color.New(color.Bold)
)

// headerFooter holds the optional header and footer functions shared by the printers.
type headerFooter[T any] struct {
	headerFunc func(w io.Writer, count int)
	footerFunc func(w io.Writer, count int)
}

func (h *headerFooter[T]) Header(w io.Writer, count int) {
	if h.headerFunc != nil {
		h.headerFunc(w, count)
	}
}

func (h *headerFooter[T]) Footer(w io.Writer, count int) {
	if h.footerFunc != nil {
		h.footerFunc(w, count)
	}
}

func plural(count int, word string) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
