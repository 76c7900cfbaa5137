package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XlsxParser handles Excel workbooks (.xlsx). Rows become tab-separated
// lines, sheets are concatenated in workbook order.
type XlsxParser struct{}

func (XlsxParser) Supports(path string) bool {
	return hasExt(path, ".xlsx")
}

func (XlsxParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, xlsxContentType)
	if err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenFile(id)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	var text strings.Builder
	for _, sheet := range sheets {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteByte('\n')
		}
	}
	metadata["sheets"] = strconv.Itoa(len(sheets))

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(text.String()),
		Metadata: metadata,
	}, nil
}
