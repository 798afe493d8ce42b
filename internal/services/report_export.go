package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ketan-bobby/skillpulse/internal/authz"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
)

// ExportPersonReport renders the person report as an xlsx workbook with a
// summary sheet and a per-result sheet.
func (s *reportService) ExportPersonReport(ctx context.Context, personID string, callerID string) ([]byte, error) {
	if err := s.authorize(ctx, callerID, authz.CapExportReports, ""); err != nil {
		return nil, err
	}

	report, err := s.PersonReport(ctx, personID, callerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if err := s.writeSummarySheet(f, report); err != nil {
		return nil, fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create results sheet: %w", err)
	}
	if err := s.writeResultsSheet(f, report); err != nil {
		return nil, fmt.Errorf("failed to write results sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Person report exported",
		"person_id", personID, "results", report.TotalResults, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (s *reportService) writeSummarySheet(f *excelize.File, report *PersonReport) error {
	rows := [][]interface{}{
		{"Person", report.PersonID},
		{"Total results", report.TotalResults},
		{"Average score", report.AverageScore},
		{},
		{"Domain", "Results", "Average", "Pass rate"},
	}
	for _, domain := range report.Domains {
		rows = append(rows, []interface{}{domain.Domain, domain.Results, domain.AverageScore, domain.PassRate})
	}
	if len(report.TrainingPriorities) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Training priorities"})
		for _, priority := range report.TrainingPriorities {
			rows = append(rows, []interface{}{priority})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (s *reportService) writeResultsSheet(f *excelize.File, report *PersonReport) error {
	header := []interface{}{"Result ID", "Test ID", "Domain", "Score", "Percentage", "Passed", "Time spent (s)", "Completed at"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}

	for i, result := range report.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			result.ID,
			result.TestID,
			result.Test.Domain,
			result.Score,
			result.Percentage,
			result.Passed,
			result.TimeSpent,
			result.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
