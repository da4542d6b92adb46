package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/constants"
)

// Locker serializes writers of the same device/product pair.
// Implementations acquire keys in a deterministic order and return association.ErrLockTimeout
// when the wait elapses.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// ReportCache keeps the most recent consistency report
type ReportCache interface {
	Save(ctx context.Context, report *association.Report) error
	// Load returns nil, nil when no report was stored yet
	Load(ctx context.Context) (*association.Report, error)
}

// Metrics receives consistency events
type Metrics interface {
	RecordCheck(report *association.Report)
	RecordRepair(kind association.Kind, outcome association.RepairOutcome)
	RecordSync(action association.Action, success bool)
	RecordProbeFailure(action association.Action)
}

// NopMetrics discards every event
type NopMetrics struct{}

func (NopMetrics) RecordCheck(*association.Report)                          {}
func (NopMetrics) RecordRepair(association.Kind, association.RepairOutcome) {}
func (NopMetrics) RecordSync(association.Action, bool)                      {}
func (NopMetrics) RecordProbeFailure(association.Action)                    {}

func deviceLockKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.LockPrefixDevice, id)
}

func productLockKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.LockPrefixProduct, id)
}
