// Package export renders transactions as the downloadable CSV file and reads
// that file back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DateLayout is the date format of the Date column and of the file name.
const DateLayout = "2006-01-02"

// Header is the first line of every export.
var Header = []string{"Date", "Type", "Amount", "Category", "Description", "Method", "Currency"}

// Record is one parsed CSV row.
type Record struct {
	Date        time.Time
	Type        core.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Method      core.Method
	Currency    string
}

// Filename names the export file for the given day.
func Filename(now time.Time) string {
	return "transactions_" + now.Format(DateLayout) + ".csv"
}

// Write emits the header and one row per transaction, in input order.
// Every field is quoted and rows are separated by a bare "\n" with no
// trailing newline.
func Write(w io.Writer, txs []core.Transaction) error {
	_, err := io.WriteString(w, ToCSV(txs))
	return err
}

// ToCSV is Write into a string.
func ToCSV(txs []core.Transaction) string {
	var b strings.Builder
	writeRow(&b, Header)
	for _, t := range txs {
		b.WriteByte('\n')
		writeRow(&b, []string{
			t.Date.Format(DateLayout),
			string(t.Type),
			t.Amount.String(),
			t.Category,
			t.Description,
			string(t.Method),
			t.Currency,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// Parse reads an export produced by Write.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("export: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("unexpected header column %d: %q", i+1, head[i])
		}
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
}

func parseRow(row []string) (Record, error) {
	date, err := time.Parse(DateLayout, row[0])
	if err != nil {
		return Record{}, fmt.Errorf("date: %w", err)
	}
	amount, err := decimal.NewFromString(row[2])
	if err != nil {
		return Record{}, fmt.Errorf("amount: %w", err)
	}
	return Record{
		Date:        date,
		Type:        core.TransactionType(row[1]),
		Amount:      amount,
		Category:    row[3],
		Description: row[4],
		Method:      core.Method(row[5]),
		Currency:    row[6],
	}, nil
}
