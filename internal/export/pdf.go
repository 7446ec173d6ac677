// Package export 將實體的顯示字串輸出成單欄 PDF 表格。
package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth  = 190.0 // A4 扣掉左右 10mm 邊界
	titleSize  = 14.0
	rowSize    = 10.0
	rowHeight  = 8.0
	emptyLabel = "(no records)"
)

// WritePDF 每個 row 一列；rows 為空時輸出一列 "(no records)"
func WritePDF(w io.Writer, title string, rows []fmt.Stringer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(pageWidth, rowHeight+2, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", rowSize)
	pdf.SetFillColor(240, 240, 240)
	if len(rows) == 0 {
		pdf.CellFormat(pageWidth, rowHeight, emptyLabel, "1", 1, "L", false, 0, "")
	}
	for i, row := range rows {
		// 隔行底色
		pdf.CellFormat(pageWidth, rowHeight, tr(row.String()), "1", 1, "L", i%2 == 1, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
