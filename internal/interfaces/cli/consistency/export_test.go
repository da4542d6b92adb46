package consistency

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicehub/devicehub/internal/application/association/dto"
)

func sampleRun() *dto.ReconcileDTO {
	violation := dto.ViolationDTO{
		Kind:        "device_not_in_product_linked_list",
		Repairable:  true,
		Message:     "device 3 points at product 1 but is not listed",
		DeviceID:    3,
		DeviceName:  "probe",
		ProductID:   1,
		ProductName: "sensors",
	}
	return &dto.ReconcileDTO{
		Before: &dto.ReportDTO{
			DeviceCount:  4,
			ProductCount: 2,
			CheckedAt:    "2026-10-19 08:00:00",
			Counts:       map[string]int{"device_not_in_product_linked_list": 1, "device_product_not_found": 0},
			Violations:   []dto.ViolationDTO{violation},
		},
		Repair: &dto.RepairResultDTO{
			Repaired: []dto.ViolationDTO{violation},
			Skipped:  []dto.ViolationDTO{},
			Failed:   []dto.RepairFailureDTO{},
		},
		After: &dto.ReportDTO{
			Consistent:   true,
			DeviceCount:  4,
			ProductCount: 2,
			CheckedAt:    "2026-10-19 08:00:01",
			Counts:       map[string]int{"device_not_in_product_linked_list": 0},
			Violations:   []dto.ViolationDTO{},
		},
	}
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, sampleRun()))

	out := buf.String()
	assert.Contains(t, out, "1 violations")
	assert.Contains(t, out, "device 3 points at product 1 but is not listed")
	assert.Contains(t, out, "repaired 1")
	assert.Contains(t, out, "consistent")
	assert.NotContains(t, out, "device_product_not_found", "zero counts are omitted")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleRun()))

	var decoded dto.ReconcileDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Before.Violations, 1)
	assert.True(t, decoded.After.Consistent)
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sampleRun()))
	assert.Contains(t, buf.String(), "device_count: 4")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "before")
	assert.Contains(t, decoded, "repair")
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, "csv", sampleRun())
	assert.ErrorContains(t, err, "unknown format")
}

func TestBuildReportXLSX(t *testing.T) {
	run := sampleRun()
	// export the pre-repair view
	run.After = nil
	run.Repair = nil

	data, err := BuildReportXLSX(run)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "violations"}, f.GetSheetList())

	devices, err := f.GetCellValue("summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "4", devices)

	kind, err := f.GetCellValue("violations", "A2")
	require.NoError(t, err)
	assert.Equal(t, "device_not_in_product_linked_list", kind)

	name, err := f.GetCellValue("violations", "D2")
	require.NoError(t, err)
	assert.Equal(t, "probe", name)
}

func TestBuildReportXLSX_NoReport(t *testing.T) {
	_, err := BuildReportXLSX(&dto.ReconcileDTO{})
	assert.Error(t, err)
}
