package export

import (
	"github.com/xuri/excelize/v2"

	"reviewharvest/internal/domain"
)

// WriteXLSX mirrors the CSV table into a spreadsheet, streaming rows so
// large harvests stay cheap.
func WriteXLSX(path string, biz domain.BusinessInfo, reviews []domain.Review) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range reviews {
		cols := Row(r, biz)
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
