// Package writer serializes parse results to CSV, JSON and XLSX.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
)

// Column headers match the statement's own table captions so an exported
// file lines up with the source document.
var (
	cashHeader     = []string{"datum", "typ", "beschreibung", "zahlungseingang", "zahlungsausgang", "saldo"}
	interestHeader = []string{"datum", "zahlungsart", "geldmarktfonds", "stueck", "kurs", "betrag"}
)

// CSVWriter writes transaction tables as semicolon-separated CSV. The
// semicolon keeps German decimal commas intact for spreadsheet imports.
type CSVWriter struct{}

// WriteCashToFile writes cash transactions to a CSV file at the given path.
func (w *CSVWriter) WriteCashToFile(path string, txs []models.CashTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.WriteCash(f, txs)
}

// WriteInterestToFile writes interest transactions to a CSV file at the
// given path.
func (w *CSVWriter) WriteInterestToFile(path string, txs []models.InterestTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.WriteInterest(f, txs)
}

// WriteCash writes cash transactions in CSV format to the given writer.
func (w *CSVWriter) WriteCash(out io.Writer, txs []models.CashTransaction) error {
	writer := csv.NewWriter(out)
	writer.Comma = ';'
	defer writer.Flush()

	if err := writer.Write(cashHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, tx := range txs {
		row := []string{tx.Date, tx.Type, tx.Description, tx.Incoming, tx.Outgoing, tx.Balance}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteInterest writes interest transactions in CSV format to the given
// writer.
func (w *CSVWriter) WriteInterest(out io.Writer, txs []models.InterestTransaction) error {
	writer := csv.NewWriter(out)
	writer.Comma = ';'
	defer writer.Flush()

	if err := writer.Write(interestHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, tx := range txs {
		row := []string{tx.Date, tx.PaymentType, tx.Fund, tx.Quantity, tx.PricePerUnit, tx.Amount}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
