package consistency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicehub/devicehub/internal/application/association/dto"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes the reconcile run to w in the requested format
func Render(w io.Writer, format string, run *dto.ReconcileDTO) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(run); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, run)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func renderText(w io.Writer, run *dto.ReconcileDTO) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	writeReport(tw, "Check", run.Before)
	if run.Repair != nil {
		fmt.Fprintf(tw, "\nRepair\trepaired %d\tskipped %d\tfailed %d\n",
			len(run.Repair.Repaired), len(run.Repair.Skipped), len(run.Repair.Failed))
		for _, f := range run.Repair.Failed {
			fmt.Fprintf(tw, "  failed\t%s\tdevice %d\tproduct %d\t%s\n",
				f.Violation.Kind, f.Violation.DeviceID, f.Violation.ProductID, f.Error)
		}
	}
	if run.After != nil {
		fmt.Fprintln(tw)
		writeReport(tw, "Re-check", run.After)
	}
	return tw.Flush()
}

func writeReport(w io.Writer, title string, r *dto.ReportDTO) {
	if r == nil {
		return
	}
	state := "consistent"
	if !r.Consistent {
		state = fmt.Sprintf("%d violations", len(r.Violations))
	}
	fmt.Fprintf(w, "%s\t%s\tdevices %d\tproducts %d\t%dms\n", title, state, r.DeviceCount, r.ProductCount, r.DurationMS)

	for _, kind := range sortedKinds(r.Counts) {
		if n := r.Counts[kind]; n > 0 {
			fmt.Fprintf(w, "  %s\t%d\n", kind, n)
		}
	}
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  -\t%s\t%s\n", v.Kind, v.Message)
	}
}

func sortedKinds(counts map[string]int) []string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// BuildReportXLSX renders a summary sheet and one row per violation of the final report
func BuildReportXLSX(run *dto.ReconcileDTO) ([]byte, error) {
	report := run.Before
	if run.After != nil {
		report = run.After
	}
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	violationsSheet := "violations"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(violationsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Consistency Report")
	_ = f.SetCellValue(summarySheet, "A3", "Checked At")
	_ = f.SetCellValue(summarySheet, "B3", report.CheckedAt)
	_ = f.SetCellValue(summarySheet, "A4", "Devices")
	_ = f.SetCellValue(summarySheet, "B4", report.DeviceCount)
	_ = f.SetCellValue(summarySheet, "A5", "Products")
	_ = f.SetCellValue(summarySheet, "B5", report.ProductCount)
	_ = f.SetCellValue(summarySheet, "A6", "Consistent")
	_ = f.SetCellValue(summarySheet, "B6", report.Consistent)
	row := 8
	if run.Repair != nil {
		_ = f.SetCellValue(summarySheet, "A8", "Repaired")
		_ = f.SetCellValue(summarySheet, "B8", len(run.Repair.Repaired))
		_ = f.SetCellValue(summarySheet, "A9", "Skipped")
		_ = f.SetCellValue(summarySheet, "B9", len(run.Repair.Skipped))
		_ = f.SetCellValue(summarySheet, "A10", "Failed")
		_ = f.SetCellValue(summarySheet, "B10", len(run.Repair.Failed))
		row = 12
	}
	for _, kind := range sortedKinds(report.Counts) {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kind)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), report.Counts[kind])
		row++
	}

	headers := []string{"Kind", "Repairable", "Device ID", "Device", "Product ID", "Product", "Message"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(violationsSheet, cell, h)
	}
	for i, v := range report.Violations {
		r := i + 2
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("A%d", r), v.Kind)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("B%d", r), v.Repairable)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("C%d", r), v.DeviceID)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("D%d", r), v.DeviceName)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("E%d", r), v.ProductID)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("F%d", r), v.ProductName)
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("G%d", r), v.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
