package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/devicehub/devicehub/internal/domain/association"
)

func TestMetrics_RecordCheck(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCheck(&association.Report{
		Violations: []association.Violation{
			association.NewDeviceProductNotFound(1, "a", 2),
			association.NewDeviceProductNotFound(3, "b", 2),
		},
		CheckedAt: time.Unix(1700000000, 0),
		Duration:  time.Second,
	})

	notFound := association.KindDeviceProductNotFound.String()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Violations.WithLabelValues(notFound)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Violations.WithLabelValues(association.KindDeviceNotInProductLinkedList.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChecksTotal))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastCheck))

	m.RecordCheck(&association.Report{CheckedAt: time.Unix(1700000060, 0)})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Violations.WithLabelValues(notFound)), "gauge reflects the last scan only")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChecksTotal))
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	kind := association.KindDeviceNotInProductLinkedList
	m.RecordRepair(kind, association.RepairOutcomeRepaired)
	m.RecordRepair(kind, association.RepairOutcomeRepaired)
	m.RecordRepair(kind, association.RepairOutcomeFailed)
	m.RecordSync(association.ActionAssociate, true)
	m.RecordSync(association.ActionAssociate, false)
	m.RecordProbeFailure(association.ActionDisassociate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RepairsTotal.WithLabelValues(kind.String(), "repaired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RepairsTotal.WithLabelValues(kind.String(), "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncTotal.WithLabelValues("associate", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeFailures.WithLabelValues("disassociate")))
}

func TestMetrics_RegistersEveryCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) }, "duplicate registration")
}
