package model

import "io"

// Writer defines a generic interface for rendering a run report to an output stream.
type Writer interface {
	Write(w io.Writer, report *Report) error
}
