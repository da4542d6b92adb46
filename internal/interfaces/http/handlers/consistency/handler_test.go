package consistency

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/application/association/dto"
	"github.com/devicehub/devicehub/internal/application/association/usecases"
	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/interfaces/http/handlers/testutil"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

type mockCheck struct {
	report *association.Report
	latest *association.Report
	err    error
}

func (m *mockCheck) Execute(context.Context) (*association.Report, error) {
	return m.report, m.err
}

func (m *mockCheck) Latest(context.Context) (*association.Report, error) {
	if m.latest == nil {
		return nil, errors.NewNotFoundError("no consistency report available")
	}
	return m.latest, nil
}

type mockReconcile struct {
	repair bool
	result *usecases.ReconcileResult
	err    error
}

func (m *mockReconcile) Execute(_ context.Context, repair bool) (*usecases.ReconcileResult, error) {
	m.repair = repair
	return m.result, m.err
}

func sampleReport() *association.Report {
	return &association.Report{
		CheckedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DeviceCount:  4,
		ProductCount: 2,
		Violations: []association.Violation{
			association.NewDeviceNotInProductLinkedList(1, "probe", 2, "probes"),
		},
	}
}

func TestCheck(t *testing.T) {
	check := &mockCheck{report: sampleReport()}
	h := NewHandler(check, &mockReconcile{}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/consistency/check", nil)
	h.Check(c)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.ReportDTO
	_, err := testutil.DecodeData(w, &got)
	require.NoError(t, err)
	assert.False(t, got.Consistent)
	assert.Equal(t, 4, got.DeviceCount)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, association.KindDeviceNotInProductLinkedList.String(), got.Violations[0].Kind)
	assert.True(t, got.Violations[0].Repairable)
	assert.Equal(t, 1, got.Counts[association.KindDeviceNotInProductLinkedList.String()])
	assert.Equal(t, 0, got.Counts[association.KindDeviceProductNotFound.String()])

	check.err = assert.AnError
	c, w = testutil.NewTestContext(http.MethodPost, "/admin/consistency/check", nil)
	h.Check(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRepair(t *testing.T) {
	before := sampleReport()
	after := &association.Report{CheckedAt: before.CheckedAt, DeviceCount: 4, ProductCount: 2}
	reconcile := &mockReconcile{result: &usecases.ReconcileResult{
		Before: before,
		Repair: &association.RepairResult{Repaired: before.Violations},
		After:  after,
	}}
	h := NewHandler(&mockCheck{}, reconcile, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/consistency/repair", nil)
	h.Repair(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reconcile.repair)

	var got dto.ReconcileDTO
	_, err := testutil.DecodeData(w, &got)
	require.NoError(t, err)
	require.NotNil(t, got.Repair)
	assert.Len(t, got.Repair.Repaired, 1)
	require.NotNil(t, got.After)
	assert.True(t, got.After.Consistent)

	t.Run("interrupted batch keeps the partial result", func(t *testing.T) {
		reconcile.err = context.Canceled
		reconcile.result.After = nil
		c, w := testutil.NewTestContext(http.MethodPost, "/admin/consistency/repair", nil)
		h.Repair(c)
		require.Equal(t, http.StatusOK, w.Code)

		var got dto.ReconcileDTO
		resp, err := testutil.DecodeData(w, &got)
		require.NoError(t, err)
		assert.Contains(t, resp.Message, "repair interrupted")
		assert.Nil(t, got.After)
	})

	t.Run("failed first check", func(t *testing.T) {
		h := NewHandler(&mockCheck{}, &mockReconcile{err: assert.AnError}, logger.NewNopLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/admin/consistency/repair", nil)
		h.Repair(c)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestReport(t *testing.T) {
	check := &mockCheck{}
	h := NewHandler(check, &mockReconcile{}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/consistency/report", nil)
	h.Report(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	check.latest = sampleReport()
	c, w = testutil.NewTestContext(http.MethodGet, "/admin/consistency/report", nil)
	h.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.ReportDTO
	_, err := testutil.DecodeData(w, &got)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProductCount)
}
