package coverage

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Document is the subset of a Cobertura coverage report matrixctl needs:
// the aggregate line rate and the per-package breakdown for summaries.
// Everything else in the format (classes, methods, individual lines) is
// ignored during parsing.
type Document struct {
	XMLName xml.Name `xml:"coverage"`

	// LineRate is the aggregate covered fraction in [0,1].
	LineRate float64 `xml:"line-rate,attr"`

	// LinesValid and LinesCovered are the raw counters some producers
	// emit alongside line-rate. Used as a fallback when line-rate is
	// absent.
	LinesValid   int `xml:"lines-valid,attr"`
	LinesCovered int `xml:"lines-covered,attr"`

	// Packages is the per-package breakdown.
	Packages []Package `xml:"packages>package"`
}

// Package is one package entry in the report.
type Package struct {
	// Name is the package identifier assigned by the producing tool.
	Name string `xml:"name,attr"`

	// LineRate is the package's covered fraction in [0,1].
	LineRate float64 `xml:"line-rate,attr"`
}

// Parse decodes a Cobertura XML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse coverage XML: %w", err)
	}
	return &doc, nil
}

// ParseFile reads and decodes a Cobertura XML file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage report %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("coverage report %s: %w", path, err)
	}
	return doc, nil
}

// Percent returns the aggregate coverage as a percentage in [0,100].
// The line-rate attribute wins when present; otherwise the raw line
// counters are used.
func (d *Document) Percent() float64 {
	if d.LineRate > 0 {
		return d.LineRate * 100
	}
	if d.LinesValid > 0 {
		return float64(d.LinesCovered) / float64(d.LinesValid) * 100
	}
	return 0
}

// Check enforces the threshold gate. Returns a CLIError with
// ExitCoverageBelowThreshold when the aggregate percentage is below the
// minimum; nil when it holds.
func Check(doc *Document, threshold float64) error {
	percent := doc.Percent()
	if percent < threshold {
		return model.NewCLIError(model.ExitCoverageBelowThreshold,
			fmt.Sprintf("coverage %.2f%% below threshold %.2f%%", percent, threshold))
	}
	return nil
}
