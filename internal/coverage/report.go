package coverage

import (
	"encoding/xml"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Report output file names inside the coverage output directory.
// Exported so the CLI layer can point users at the written files.
const (
	HTMLReportName = "index.html"
	XMLReportName  = "summary.xml"
)

// htmlReport is the per-package summary page template. Deliberately
// plain: the page is a CI artifact, not a UI.
var htmlReport = template.Must(template.New("coverage").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Coverage summary</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
.low { background: #fdd; }
</style>
</head>
<body>
<h1>Coverage: {{printf "%.2f" .Percent}}%</h1>
<p>Threshold: {{printf "%.2f" .Threshold}}% — {{if .Passed}}PASS{{else}}FAIL{{end}}</p>
<table>
<tr><th>Package</th><th>Coverage</th></tr>
{{range .Packages}}<tr{{if .Low}} class="low"{{end}}><td>{{.Name}}</td><td>{{printf "%.2f" .Percent}}%</td></tr>
{{end}}</table>
</body>
</html>
`))

// htmlData is the template input.
type htmlData struct {
	Percent   float64
	Threshold float64
	Passed    bool
	Packages  []htmlPackage
}

type htmlPackage struct {
	Name    string
	Percent float64
	Low     bool
}

// xmlSummary is the machine-readable counterpart of the HTML page.
type xmlSummary struct {
	XMLName   xml.Name     `xml:"coverageSummary"`
	Percent   string       `xml:"percent,attr"`
	Threshold string       `xml:"threshold,attr"`
	Passed    bool         `xml:"passed,attr"`
	Packages  []xmlPackage `xml:"package"`
}

type xmlPackage struct {
	Name    string `xml:"name,attr"`
	Percent string `xml:"percent,attr"`
}

// WriteReports renders the requested report formats ("html", "xml") into
// outDir, creating it as needed. Unknown formats were already rejected
// by configuration validation.
func WriteReports(doc *Document, threshold float64, formats []string, outDir string) error {
	if len(formats) == 0 {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create coverage output directory %s: %w", outDir, err)
	}

	packages := append([]Package(nil), doc.Packages...)
	sort.Slice(packages, func(i, j int) bool { return packages[i].Name < packages[j].Name })

	for _, format := range formats {
		switch strings.ToLower(format) {
		case "html":
			if err := writeHTML(doc, packages, threshold, filepath.Join(outDir, HTMLReportName)); err != nil {
				return err
			}
		case "xml":
			if err := writeXML(doc, packages, threshold, filepath.Join(outDir, XMLReportName)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHTML(doc *Document, packages []Package, threshold float64, path string) error {
	data := htmlData{
		Percent:   doc.Percent(),
		Threshold: threshold,
		Passed:    doc.Percent() >= threshold,
	}
	for _, p := range packages {
		data.Packages = append(data.Packages, htmlPackage{
			Name:    p.Name,
			Percent: p.LineRate * 100,
			Low:     p.LineRate*100 < threshold,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HTML report %s: %w", path, err)
	}
	defer f.Close()

	if err := htmlReport.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

func writeXML(doc *Document, packages []Package, threshold float64, path string) error {
	summary := xmlSummary{
		Percent:   fmt.Sprintf("%.2f", doc.Percent()),
		Threshold: fmt.Sprintf("%.2f", threshold),
		Passed:    doc.Percent() >= threshold,
	}
	for _, p := range packages {
		summary.Packages = append(summary.Packages, xmlPackage{
			Name:    p.Name,
			Percent: fmt.Sprintf("%.2f", p.LineRate*100),
		})
	}

	data, err := xml.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode XML summary: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write XML summary %s: %w", path, err)
	}
	return nil
}
