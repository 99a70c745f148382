package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
)

// odsContentPath is the path to the main content inside an .ods zip (OpenDocument Spreadsheet).
const odsContentPath = "content.xml"

// odsTextP matches a cell paragraph, including nested spans.
var odsTextP = regexp.MustCompile(`(?s)<text:p[^>]*>(.*?)</text:p>`)

// extractODS emits every cell paragraph as a line, in document order.
func extractODS(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ODS: not a zip: %w", err)
	}
	contentXML, err := readZipFile(zr, odsContentPath)
	if err != nil {
		return "", fmt.Errorf("extract ODS: %w", err)
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract ODS: %s not found", odsContentPath)
	}
	matches := odsTextP.FindAllStringSubmatch(string(contentXML), -1)
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, xmlText(m[1]))
	}
	return joinLines(lines), nil
}
