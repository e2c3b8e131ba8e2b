package main

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10
	pdfLineHeight = 4
	pdfFontSize   = 8
)

// generatePDF writes the already-rendered text output into a monospace PDF.
// ANSI emphasis is never present here: color output is disabled whenever the
// destination is not a terminal.
func generatePDF(content string, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Courier", "", pdfFontSize)
	pdf.SetTextColor(0, 0, 0)

	width := float64(pdfPageWidth - 2*pdfMargin)
	for _, line := range strings.Split(content, "\n") {
		pdf.MultiCell(width, pdfLineHeight, tr(line), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}
