// Package report renders run reports to an output stream.
package report

import (
	"fmt"

	"Go2PayloadScan/internal/model"
)

// New returns the writer for the given output format.
func New(format string) (model.Writer, error) {
	switch format {
	case "", "text":
		return TextWriter{}, nil
	case "yaml":
		return YAMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format '%s'", format)
	}
}
