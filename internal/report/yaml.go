package report

import (
	"fmt"
	"io"

	"Go2PayloadScan/internal/model"

	"gopkg.in/yaml.v3"
)

type patternCount struct {
	Pattern string `yaml:"pattern"`
	Count   int64  `yaml:"count"`
}

type yamlStats struct {
	Packets  int64            `yaml:"packets"`
	Valid    int64            `yaml:"valid"`
	Invalid  map[string]int64 `yaml:"invalid,omitempty"`
	Units    int              `yaml:"units"`
	RSSBytes uint64           `yaml:"rss_bytes,omitempty"`
}

type yamlReport struct {
	Strategy       string         `yaml:"strategy"`
	Mode           string         `yaml:"mode"`
	Counts         []patternCount `yaml:"counts,omitempty"`
	Lines          []string       `yaml:"lines,omitempty"`
	Stats          yamlStats      `yaml:"stats"`
	ElapsedSeconds float64        `yaml:"elapsed_seconds"`
}

// YAMLWriter emits the report, packet statistics included, as one YAML document.
type YAMLWriter struct{}

func (YAMLWriter) Write(w io.Writer, report *model.Report) error {
	doc := yamlReport{
		Strategy: report.Strategy,
		Mode:     report.Mode.String(),
		Stats: yamlStats{
			Packets:  report.Stats.Packets,
			Valid:    report.Stats.Valid,
			Units:    report.Stats.Units,
			RSSBytes: report.Stats.RSSBytes,
		},
		ElapsedSeconds: report.Elapsed.Seconds(),
	}
	if report.Counts != nil {
		for i, p := range report.Patterns {
			doc.Counts = append(doc.Counts, patternCount{Pattern: p, Count: report.Counts[i]})
		}
	}
	for _, line := range report.Lines {
		doc.Lines = append(doc.Lines, string(line))
	}
	if len(report.Stats.Invalid) > 0 {
		doc.Stats.Invalid = make(map[string]int64, len(report.Stats.Invalid))
		for reason, n := range report.Stats.Invalid {
			doc.Stats.Invalid[reason.String()] = n
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
