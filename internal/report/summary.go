package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"intrastat-assistant/constants"
)

// WriteSummaryCSV writes the declaration summary in the same dialect as the
// detail files: semicolon separated, BOM, comma decimals.
func WriteSummaryCSV(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(constants.SummaryHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			row.TariffCode,
			row.Country,
			commaDecimal(strconv.FormatFloat(row.GrossKg, 'f', 2, 64)),
			commaDecimal(strconv.FormatFloat(row.NetKg, 'f', 2, 64)),
			commaDecimal(row.Quantity.StringFixed(1)),
			commaDecimal(row.Price.StringFixed(2)),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary csv: %w", err)
	}
	return f.Close()
}

// WriteSummaryXLSX writes the same summary as a workbook for the people who
// file the declaration in Excel.
func WriteSummaryXLSX(path string, rows []SummaryRow) error {
	f := excelize.NewFile()
	const sheet = "Summary"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range constants.SummaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, row.TariffCode)
		write(2, row.Country)
		write(3, row.GrossKg)
		write(4, row.NetKg)
		qty, _ := row.Quantity.Float64()
		write(5, qty)
		price, _ := row.Price.Float64()
		write(6, price)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "F", 16)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
