package usecases

import (
	"context"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// ReconcileResult holds the scan, the repair batch and the follow-up scan of one reconciliation run.
// Repair and After are nil when nothing was repaired.
type ReconcileResult struct {
	Before *association.Report       `json:"before" yaml:"before"`
	Repair *association.RepairResult `json:"repair,omitempty" yaml:"repair,omitempty"`
	After  *association.Report       `json:"after,omitempty" yaml:"after,omitempty"`
}

// Final returns the most recent report of the run
func (r *ReconcileResult) Final() *association.Report {
	if r.After != nil {
		return r.After
	}
	return r.Before
}

// ReconcileConsistencyUseCase runs a check and feeds the repairable violations to the repair engine
type ReconcileConsistencyUseCase struct {
	checker  *CheckConsistencyUseCase
	repairer *RepairConsistencyUseCase
	logger   logger.Interface
}

func NewReconcileConsistencyUseCase(
	checker *CheckConsistencyUseCase,
	repairer *RepairConsistencyUseCase,
	logger logger.Interface,
) *ReconcileConsistencyUseCase {
	return &ReconcileConsistencyUseCase{
		checker:  checker,
		repairer: repairer,
		logger:   logger,
	}
}

// Execute checks, and when repair is set and the check found repairable violations, repairs and checks again
func (uc *ReconcileConsistencyUseCase) Execute(ctx context.Context, repair bool) (*ReconcileResult, error) {
	before, err := uc.checker.Execute(ctx)
	if err != nil {
		return nil, err
	}
	result := &ReconcileResult{Before: before}

	repairable := before.Repairable()
	if !repair || len(repairable) == 0 {
		return result, nil
	}

	repaired, err := uc.repairer.Execute(ctx, repairable)
	result.Repair = repaired
	if err != nil {
		return result, err
	}

	if len(repaired.Repaired) > 0 {
		after, err := uc.checker.Execute(ctx)
		if err != nil {
			return result, err
		}
		result.After = after
	}

	uc.logger.Infow("reconciliation completed",
		"violations_before", len(before.Violations),
		"repaired", len(repaired.Repaired),
		"failed", len(repaired.Failed),
		"violations_after", len(result.Final().Violations),
	)
	return result, nil
}

// ReconcileJob adapts a reconciliation run to a scheduled batch job
type ReconcileJob struct {
	uc     *ReconcileConsistencyUseCase
	repair bool
}

func NewReconcileJob(uc *ReconcileConsistencyUseCase, repair bool) *ReconcileJob {
	return &ReconcileJob{uc: uc, repair: repair}
}

// Execute runs one reconciliation and returns the number of repaired violations
func (j *ReconcileJob) Execute(ctx context.Context) (int, error) {
	result, err := j.uc.Execute(ctx, j.repair)
	if err != nil {
		return 0, err
	}
	if result.Repair == nil {
		return 0, nil
	}
	return len(result.Repair.Repaired), nil
}
