package report

import (
	"bufio"
	"fmt"
	"io"

	"Go2PayloadScan/internal/model"
)

// TextWriter prints the plain report. A scatter report (no counts) prints one line per payload.
type TextWriter struct{}

func (TextWriter) Write(w io.Writer, report *model.Report) error {
	bw := bufio.NewWriter(w)

	if report.Counts == nil {
		for _, line := range report.Lines {
			bw.Write(line)
			bw.WriteByte('\n')
		}
		return bw.Flush()
	}

	fmt.Fprintln(bw, "Occurrences of each pattern across the capture:")
	for i, p := range report.Patterns {
		fmt.Fprintf(bw, "%s: %d\n", p, report.Counts[i])
	}
	fmt.Fprintf(bw, "Elapsed time = %f seconds\n", report.Elapsed.Seconds())
	return bw.Flush()
}
