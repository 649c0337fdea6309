package app

import (
    "fmt"
    "strings"
    "time"

    "github.com/jung-kurt/gofpdf"

    "github.com/hyperifyio/note2tex/internal/pipeline"
    "github.com/hyperifyio/note2tex/internal/section"
)

// writeDiagnosticsPDF renders a one-glance run summary: the run metadata, then
// one block per section with its status, refinement attempts and any issues
// left unresolved. It does not typeset the LaTeX itself.
func writeDiagnosticsPDF(outPath string, meta manifestMeta, rep pipeline.Report) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    // Core fonts are cp1252; translate so accented titles survive.
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetTitle("note2tex diagnostics", true)
    pdf.AddPage()

    pdf.SetFont("Helvetica", "B", 14)
    pdf.CellFormat(0, 8, "note2tex run diagnostics", "", 1, "L", false, 0, "")
    pdf.SetFont("Helvetica", "", 10)
    header := []string{
        "Run: " + meta.RunID,
        "Model: " + meta.Model,
        "LLM base URL: " + meta.LLMBaseURL,
        "Verbosity: " + meta.Verbosity,
        fmt.Sprintf("Max refinements: %d", meta.MaxRefines),
        "Stylist: " + meta.Stylist,
        "Generated: " + meta.GeneratedAt.UTC().Format(time.RFC3339),
    }
    for _, h := range header {
        pdf.CellFormat(0, 5, tr(h), "", 1, "L", false, 0, "")
    }
    pdf.Ln(4)

    for _, s := range rep.Outcomes {
        r, g, b := statusColor(s.Status)
        pdf.SetFont("Helvetica", "B", 12)
        pdf.SetTextColor(r, g, b)
        title := fmt.Sprintf("%s [%s]", section.Title(s.Key), s.Status)
        pdf.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
        pdf.SetTextColor(0, 0, 0)
        pdf.SetFont("Helvetica", "", 10)
        pdf.CellFormat(0, 5, fmt.Sprintf("Attempts: %d   Characters: %d", s.Attempts, len(s.Text)), "", 1, "L", false, 0, "")
        if s.Err != nil {
            pdf.MultiCell(0, 5, tr("Error: "+s.Err.Error()), "", "L", false)
        }
        if s.RefineErr != nil {
            pdf.MultiCell(0, 5, tr("Refinement error: "+s.RefineErr.Error()), "", "L", false)
        }
        for _, is := range s.Result.Strings() {
            pdf.MultiCell(0, 5, tr("- "+strings.TrimSpace(is)), "", "L", false)
        }
        pdf.Ln(3)
    }

    return pdf.OutputFileAndClose(outPath)
}

func statusColor(s pipeline.Status) (int, int, int) {
    switch s {
    case pipeline.Passed:
        return 0, 110, 0
    case pipeline.Residual:
        return 180, 110, 0
    default:
        return 170, 0, 0
    }
}
