package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/ketan-bobby/skillpulse/internal/authz"
	"github.com/ketan-bobby/skillpulse/internal/models"
	"github.com/ketan-bobby/skillpulse/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) PersonReport(ctx context.Context, personID string, callerID string) (*PersonReport, error) {
	if err := s.authorize(ctx, callerID, authz.CapViewReports, personID); err != nil {
		return nil, err
	}

	results, _, err := s.repo.Result().GetByPerson(ctx, personID, repositories.ResultFilters{
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	// Own-report reads honor the same visibility toggle as the result
	// listings; hidden results must not leak through the aggregates.
	if personID == callerID {
		results = s.visibleOnly(ctx, results)
	}

	report := &PersonReport{
		PersonID:           personID,
		TotalResults:       len(results),
		Results:            results,
		TrainingPriorities: []string{},
		Domains:            []DomainReportRow{},
	}
	if len(results) == 0 {
		return report, nil
	}

	sum := 0
	for _, result := range results {
		sum += result.Percentage
	}
	report.AverageScore = int(math.Round(float64(sum) / float64(len(results))))

	averages := AggregateDomains(results)
	report.Domains = s.domainRows(results, averages)
	report.TrainingPriorities = TrainingPriorities(averages)

	for _, result := range results {
		if result.HasAnalysis() {
			analysis := result.SkillGapAnalysis.Data()
			report.LatestAnalysis = &analysis
			break
		}
	}

	return report, nil
}

func (s *reportService) DomainReport(ctx context.Context, callerID string) ([]DomainReportRow, error) {
	if err := s.authorize(ctx, callerID, authz.CapViewReports, ""); err != nil {
		return nil, err
	}

	results, _, err := s.repo.Result().List(ctx, repositories.ResultFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	return s.domainRows(results, AggregateDomains(results)), nil
}

// ===== HELPERS =====

func (s *reportService) domainRows(results []*models.TestResult, averages []DomainAverage) []DomainReportRow {
	passed := make(map[string]int)
	for _, result := range results {
		if result.Passed {
			passed[result.Test.Domain]++
		}
	}

	rows := make([]DomainReportRow, 0, len(averages))
	for _, avg := range averages {
		rate := 0.0
		if avg.Count > 0 {
			rate = float64(passed[avg.Domain]) / float64(avg.Count)
		}
		rows = append(rows, DomainReportRow{
			Domain:       avg.Domain,
			Results:      avg.Count,
			AverageScore: avg.Average,
			PassRate:     math.Round(rate*100) / 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Domain < rows[j].Domain })
	return rows
}

// visibleOnly drops results whose assignment has visibility switched off.
// A missing assignment defaults to visible: results can outlive ledger
// cleanup.
func (s *reportService) visibleOnly(ctx context.Context, results []*models.TestResult) []*models.TestResult {
	visible := make([]*models.TestResult, 0, len(results))
	for _, result := range results {
		assignment, err := s.repo.Assignment().GetByPersonAndTest(ctx, result.PersonID, result.TestID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				visible = append(visible, result)
				continue
			}
			s.logger.Error("Visibility check failed, hiding result",
				"result_id", result.ID, "error", err)
			continue
		}
		if assignment.ResultsVisible {
			visible = append(visible, result)
		}
	}
	return visible
}

// authorize admits report capability holders, and the person themself for
// their own report.
func (s *reportService) authorize(ctx context.Context, callerID string, cap authz.Capability, subjectID string) error {
	if subjectID != "" && subjectID == callerID {
		return nil
	}

	role, err := s.repo.User().GetRole(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to resolve caller role: %w", err)
	}
	if !authz.Can(role, cap) {
		return NewPermissionError(callerID, 0, "report", string(cap), "insufficient role permissions")
	}
	return nil
}
