// Package dto provides data transfer objects for the association application layer.
package dto

import (
	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/biztime"
)

// ViolationDTO represents one violation for API responses.
type ViolationDTO struct {
	Kind            string `json:"kind" yaml:"kind"`
	Repairable      bool   `json:"repairable" yaml:"repairable"`
	Message         string `json:"message" yaml:"message"`
	DeviceID        uint   `json:"device_id" yaml:"device_id"`
	DeviceName      string `json:"device_name,omitempty" yaml:"device_name,omitempty"`
	ProductID       uint   `json:"product_id" yaml:"product_id"`
	ProductName     string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	DeviceProductID *uint  `json:"device_product_id,omitempty" yaml:"device_product_id,omitempty"`
}

// ReportDTO represents a consistency report.
type ReportDTO struct {
	Consistent   bool           `json:"consistent" yaml:"consistent"`
	DeviceCount  int            `json:"device_count" yaml:"device_count"`
	ProductCount int            `json:"product_count" yaml:"product_count"`
	CheckedAt    string         `json:"checked_at" yaml:"checked_at"`
	DurationMS   int64          `json:"duration_ms" yaml:"duration_ms"`
	Counts       map[string]int `json:"counts" yaml:"counts"`
	Violations   []ViolationDTO `json:"violations" yaml:"violations"`
}

// RepairFailureDTO pairs a violation with its repair error.
type RepairFailureDTO struct {
	Violation ViolationDTO `json:"violation" yaml:"violation"`
	Error     string       `json:"error" yaml:"error"`
}

// RepairResultDTO represents the outcome of a repair batch.
type RepairResultDTO struct {
	Repaired []ViolationDTO     `json:"repaired" yaml:"repaired"`
	Skipped  []ViolationDTO     `json:"skipped" yaml:"skipped"`
	Failed   []RepairFailureDTO `json:"failed" yaml:"failed"`
}

// VerifyResultDTO represents a probe result.
type VerifyResultDTO struct {
	OK     bool       `json:"ok"`
	Issues []IssueDTO `json:"issues"`
}

type IssueDTO struct {
	Side    string `json:"side"`
	Message string `json:"message"`
}

func ToViolationDTO(v association.Violation) ViolationDTO {
	out := ViolationDTO{
		Kind:        v.Kind.String(),
		Repairable:  v.Kind.Repairable(),
		Message:     v.Message,
		DeviceID:    v.DeviceID,
		DeviceName:  v.DeviceName,
		ProductID:   v.ProductID,
		ProductName: v.ProductName,
	}
	if v.DeviceProductID != nil {
		id := *v.DeviceProductID
		out.DeviceProductID = &id
	}
	return out
}

func ToViolationDTOs(vs []association.Violation) []ViolationDTO {
	out := make([]ViolationDTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToViolationDTO(v))
	}
	return out
}

// ToReportDTO converts a report. Counts carries every kind, zero included.
func ToReportDTO(r *association.Report) *ReportDTO {
	if r == nil {
		return nil
	}
	counts := make(map[string]int, len(association.AllKinds()))
	for k, n := range r.CountByKind() {
		counts[k.String()] = n
	}
	return &ReportDTO{
		Consistent:   r.Consistent(),
		DeviceCount:  r.DeviceCount,
		ProductCount: r.ProductCount,
		CheckedAt:    biztime.Format(r.CheckedAt),
		DurationMS:   r.Duration.Milliseconds(),
		Counts:       counts,
		Violations:   ToViolationDTOs(r.Violations),
	}
}

func ToRepairResultDTO(r *association.RepairResult) *RepairResultDTO {
	if r == nil {
		return nil
	}
	failed := make([]RepairFailureDTO, 0, len(r.Failed))
	for _, f := range r.Failed {
		failed = append(failed, RepairFailureDTO{Violation: ToViolationDTO(f.Violation), Error: f.Error})
	}
	return &RepairResultDTO{
		Repaired: ToViolationDTOs(r.Repaired),
		Skipped:  ToViolationDTOs(r.Skipped),
		Failed:   failed,
	}
}

func ToVerifyResultDTO(r *association.VerifyResult) *VerifyResultDTO {
	if r == nil {
		return nil
	}
	issues := make([]IssueDTO, 0, len(r.Issues))
	for _, i := range r.Issues {
		issues = append(issues, IssueDTO{Side: string(i.Side), Message: i.Message})
	}
	return &VerifyResultDTO{OK: r.OK, Issues: issues}
}

// ReconcileDTO represents one check, repair and re-check run.
type ReconcileDTO struct {
	Before *ReportDTO       `json:"before" yaml:"before"`
	Repair *RepairResultDTO `json:"repair,omitempty" yaml:"repair,omitempty"`
	After  *ReportDTO       `json:"after,omitempty" yaml:"after,omitempty"`
}

func ToReconcileDTO(before *association.Report, repair *association.RepairResult, after *association.Report) *ReconcileDTO {
	return &ReconcileDTO{
		Before: ToReportDTO(before),
		Repair: ToRepairResultDTO(repair),
		After:  ToReportDTO(after),
	}
}
