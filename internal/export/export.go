// Package export writes the filtered dashboard subset as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"support-insights-go/internal/types"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	SheetName = "Interactions"
)

var Header = []string{"ID", "Date", "Agent", "Customer", "Reason", "Score", "Duration", "LeadScore"}

// ParseFormat accepts csv or xlsx; empty means csv.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename names a download, e.g. interactions-20250610.csv.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("interactions-%s.%s", now.Format("20060102"), format)
}

// Write dispatches on format.
func Write(w io.Writer, format string, items []types.Interaction) error {
	if format == FormatXLSX {
		return WriteXLSX(w, items)
	}
	return WriteCSV(w, items)
}

func WriteCSV(w io.Writer, items []types.Interaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write(row(it)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, items []types.Interaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := []any{
			string(it.ID),
			it.Timestamp.Format(time.RFC3339),
			it.AgentName,
			it.CustomerLabel,
			it.Reason,
			it.Score,
			it.DurationMinutes,
			it.LeadScore,
		}
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func row(it types.Interaction) []string {
	return []string{
		string(it.ID),
		it.Timestamp.Format(time.RFC3339),
		it.AgentName,
		it.CustomerLabel,
		it.Reason,
		strconv.Itoa(it.Score),
		strconv.Itoa(it.DurationMinutes),
		strconv.FormatFloat(it.LeadScore, 'f', -1, 64),
	}
}
