package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// extractExcel emits every non-empty cell as a line, sheet by sheet, rows
// top to bottom and cells left to right. A sheet laid out as
// "Q: english | Q: español | A: answer" rows therefore reads as a question
// group followed by its answer.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			lines = append(lines, row...)
		}
	}
	return joinLines(lines), nil
}
