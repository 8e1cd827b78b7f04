package server

import (
	"strings"

	"github.com/desertthunder/m3ux/internal/m3u"
)

// Problem is one entry that failed strict parsing.
type Problem struct {
	Entry int    `json:"entry"` // 1-based position among #EXTINF lines
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ValidationReport is the result of [Validate].
type ValidationReport struct {
	Header   bool      `json:"header"`
	Entries  int       `json:"entries"`
	Valid    int       `json:"valid"`
	Problems []Problem `json:"problems,omitempty"`
}

// OK reports whether every entry parsed.
func (v ValidationReport) OK() bool { return v.Entries > 0 && len(v.Problems) == 0 }

// Validate runs [m3u.ParseEntry] on every #EXTINF block of text. The
// extractor skips malformed entries silently; this reports each one.
func Validate(text string) ValidationReport {
	report := ValidationReport{Header: m3u.HasHeader(text)}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), m3u.EntryDirective) {
			continue
		}
		report.Entries++

		block := lines[i]
		if i+1 < len(lines) {
			block += "\n" + lines[i+1]
		}

		if _, err := m3u.ParseEntry(block); err != nil {
			report.Problems = append(report.Problems, Problem{Entry: report.Entries, Line: i + 1, Error: err.Error()})
			continue
		}
		report.Valid++
	}
	return report
}
