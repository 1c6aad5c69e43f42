package http

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fueldesk/fueldesk/internal/billing"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return nil
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

var ledgerHeader = []string{
	"SL", "Organization", "Local Name",
	"Diesel Bill", "Diesel Coupons",
	"Octane Bill", "Octane Coupons",
	"Total Bill", "Total Coupons",
	"Tax %", "Previous Due", "Paid", "Balance", "Check No", "Remarks",
}

func writeLedgerCSV(w io.Writer, month, year int, rows []billing.BillSummaryRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment(fmt.Sprintf("# Report: Bill Summary | Period: %s", periodDisplay(month, year))); err != nil {
		return err
	}
	if err := streamer.writeRow(ledgerHeader); err != nil {
		return err
	}
	var totalBill float64
	var totalCoupons int
	for _, row := range rows {
		if err := streamer.writeRow([]string{
			strconv.Itoa(row.Serial),
			row.OrgName,
			row.LocalName,
			formatDecimal(row.DieselBill),
			strconv.Itoa(row.DieselCoupons),
			formatDecimal(row.OctaneBill),
			strconv.Itoa(row.OctaneCoupons),
			formatDecimal(row.TotalBill),
			strconv.Itoa(row.TotalCoupons),
			formatDecimal(row.TaxRate),
			row.PreviousDue,
			row.Paid,
			row.Balance,
			row.CheckNo,
			row.Remarks,
		}); err != nil {
			return err
		}
		totalBill += row.TotalBill
		totalCoupons += row.TotalCoupons
	}
	if err := streamer.writeRow([]string{"", "Totals", "", "", "", "", "", formatDecimal(totalBill), strconv.Itoa(totalCoupons), "", "", "", "", "", ""}); err != nil {
		return err
	}
	return streamer.Close()
}

func formatDecimal(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
