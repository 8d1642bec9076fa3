package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"mzview/core/msdata"
)

// PeakTableXLSX writes the peak table to an xlsx workbook with a
// styled header row.
func PeakTableXLSX(rows []msdata.PeakRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Peaks"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headers := []string{"m/z", "Retention Time (s)", "Intensity"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2563EB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%c1", 'A'+len(headers)-1), headerStyle)

	for i, row := range rows {
		rowNum := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), row.Mz)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), row.RetentionTime)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), row.Intensity)
	}

	for i := 0; i < len(headers); i++ {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
