package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
)

const sheetName = "Daten"

// XLSXWriter writes transaction tables as an Excel workbook with typed
// cells: dates become real date cells and amounts numeric cells with a
// Euro format, so spreadsheet formulas work without manual conversion.
type XLSXWriter struct{}

// WriteCashToFile writes cash transactions to an XLSX file at the given path.
func (w *XLSXWriter) WriteCashToFile(path string, txs []models.CashTransaction) error {
	f, styles, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &cashHeader); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, tx := range txs {
		row := i + 2
		setDateCell(f, styles, cell("A", row), tx.Date)
		f.SetCellStr(sheetName, cell("B", row), tx.Type)
		f.SetCellStr(sheetName, cell("C", row), tx.Description)
		setMoneyCell(f, styles, cell("D", row), tx.Incoming)
		setMoneyCell(f, styles, cell("E", row), tx.Outgoing)
		setMoneyCell(f, styles, cell("F", row), tx.Balance)
	}

	return saveWorkbook(f, path)
}

// WriteInterestToFile writes interest transactions to an XLSX file at the
// given path.
func (w *XLSXWriter) WriteInterestToFile(path string, txs []models.InterestTransaction) error {
	f, styles, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &interestHeader); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, tx := range txs {
		row := i + 2
		setDateCell(f, styles, cell("A", row), tx.Date)
		f.SetCellStr(sheetName, cell("B", row), tx.PaymentType)
		f.SetCellStr(sheetName, cell("C", row), tx.Fund)
		setQuantityCell(f, styles, cell("D", row), tx.Quantity)
		setMoneyCell(f, styles, cell("E", row), tx.PricePerUnit)
		setMoneyCell(f, styles, cell("F", row), tx.Amount)
	}

	return saveWorkbook(f, path)
}

// WriteCash streams a cash workbook to the given writer.
func (w *XLSXWriter) WriteCash(out io.Writer, txs []models.CashTransaction) error {
	f, styles, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &cashHeader); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, tx := range txs {
		row := i + 2
		setDateCell(f, styles, cell("A", row), tx.Date)
		f.SetCellStr(sheetName, cell("B", row), tx.Type)
		f.SetCellStr(sheetName, cell("C", row), tx.Description)
		setMoneyCell(f, styles, cell("D", row), tx.Incoming)
		setMoneyCell(f, styles, cell("E", row), tx.Outgoing)
		setMoneyCell(f, styles, cell("F", row), tx.Balance)
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

type cellStyles struct {
	date     int
	money    int
	quantity int
}

func newWorkbook() (*excelize.File, cellStyles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, cellStyles{}, fmt.Errorf("failed to set up workbook: %w", err)
	}

	var styles cellStyles
	var err error
	dateFmt := "dd.mm.yyyy"
	if styles.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		f.Close()
		return nil, cellStyles{}, fmt.Errorf("failed to create date style: %w", err)
	}
	moneyFmt := `#,##0.00 "€"`
	if styles.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		f.Close()
		return nil, cellStyles{}, fmt.Errorf("failed to create money style: %w", err)
	}
	quantityFmt := "0.00"
	if styles.quantity, err = f.NewStyle(&excelize.Style{CustomNumFmt: &quantityFmt}); err != nil {
		f.Close()
		return nil, cellStyles{}, fmt.Errorf("failed to create quantity style: %w", err)
	}
	return f, styles, nil
}

func saveWorkbook(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save XLSX file %q: %w", path, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// setDateCell writes a typed date cell when the value parses as a statement
// date, falling back to the raw string otherwise.
func setDateCell(f *excelize.File, styles cellStyles, ref, value string) {
	if t, ok := parser.ParseLocalizedDate(value); ok {
		f.SetCellValue(sheetName, ref, t)
		f.SetCellStyle(sheetName, ref, ref, styles.date)
		return
	}
	f.SetCellStr(sheetName, ref, value)
}

func setMoneyCell(f *excelize.File, styles cellStyles, ref, value string) {
	setNumericCell(f, styles.money, ref, value)
}

func setQuantityCell(f *excelize.File, styles cellStyles, ref, value string) {
	setNumericCell(f, styles.quantity, ref, value)
}

func setNumericCell(f *excelize.File, style int, ref, value string) {
	if value == "" {
		return
	}
	if v, ok := parser.ParseCurrencyStrict(value); ok {
		f.SetCellFloat(sheetName, ref, v, -1, 64)
		f.SetCellStyle(sheetName, ref, ref, style)
		return
	}
	f.SetCellStr(sheetName, ref, value)
}
