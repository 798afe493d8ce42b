package services

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

func newReportFixture(t *testing.T) (*mockRepository, ReportService) {
	t.Helper()
	repo := newMockRepository()
	service := NewReportService(repo, testLogger())

	repo.addUser("candidate-1", models.RoleCandidate)
	repo.addUser("manager-1", models.RoleManager)
	repo.addUser("hr-1", models.RoleHRAdmin)
	repo.addTest(&models.Test{ID: 1, Domain: "a", Level: models.LevelIntermediate})
	repo.addTest(&models.Test{ID: 2, Domain: "b", Level: models.LevelIntermediate})
	repo.addTest(&models.Test{ID: 3, Domain: "c", Level: models.LevelIntermediate})

	seed := []struct {
		testID     uint
		percentage int
		passed     bool
	}{
		{1, 50, false},
		{2, 65, false},
		{3, 80, true},
	}
	for i, s := range seed {
		result := &models.TestResult{
			PersonID:   "candidate-1",
			TestID:     s.testID,
			SessionID:  uint(i + 1),
			Percentage: s.percentage,
			Passed:     s.passed,
		}
		if _, err := repo.Result().CreateIdempotent(context.Background(), result); err != nil {
			t.Fatalf("seed result: %v", err)
		}
	}
	return repo, service
}

func TestPersonReportPriorities(t *testing.T) {
	_, service := newReportFixture(t)

	report, err := service.PersonReport(context.Background(), "candidate-1", "manager-1")
	if err != nil {
		t.Fatalf("PersonReport() error = %v", err)
	}

	want := []string{"a (50% avg)", "b (65% avg)"}
	if !reflect.DeepEqual(report.TrainingPriorities, want) {
		t.Errorf("TrainingPriorities = %v, want %v", report.TrainingPriorities, want)
	}
	if report.TotalResults != 3 {
		t.Errorf("TotalResults = %d, want 3", report.TotalResults)
	}
	// (50+65+80)/3 = 65
	if report.AverageScore != 65 {
		t.Errorf("AverageScore = %d, want 65", report.AverageScore)
	}
}

func TestPersonReportSelfAccess(t *testing.T) {
	_, service := newReportFixture(t)

	if _, err := service.PersonReport(context.Background(), "candidate-1", "candidate-1"); err != nil {
		t.Fatalf("own report: error = %v, want success", err)
	}

	_, err := service.PersonReport(context.Background(), "manager-1", "candidate-1")
	if !IsPermissionError(err) {
		t.Fatalf("other person's report: error = %v, want permission error", err)
	}
}

func TestPersonReportHonorsResultVisibility(t *testing.T) {
	repo, service := newReportFixture(t)

	// Hide the domain-c result from its owner.
	repo.addAssignment(&models.Assignment{
		PersonID:       "candidate-1",
		TestID:         3,
		Status:         models.AssignmentCompleted,
		MaxAttempts:    1,
		ResultsVisible: false,
	})

	report, err := service.PersonReport(context.Background(), "candidate-1", "candidate-1")
	if err != nil {
		t.Fatalf("own report: error = %v", err)
	}
	if report.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want 2 (hidden result excluded)", report.TotalResults)
	}
	// (50+65)/2 = 58 once the hidden 80% result is out of the aggregates.
	if report.AverageScore != 58 {
		t.Errorf("AverageScore = %d, want 58", report.AverageScore)
	}
	for _, result := range report.Results {
		if result.TestID == 3 {
			t.Errorf("hidden result for test 3 leaked into own report")
		}
	}

	// Report capability holders still see the full history.
	managerView, err := service.PersonReport(context.Background(), "candidate-1", "manager-1")
	if err != nil {
		t.Fatalf("manager report: error = %v", err)
	}
	if managerView.TotalResults != 3 {
		t.Errorf("manager TotalResults = %d, want 3", managerView.TotalResults)
	}
}

func TestDomainReport(t *testing.T) {
	_, service := newReportFixture(t)

	rows, err := service.DomainReport(context.Background(), "manager-1")
	if err != nil {
		t.Fatalf("DomainReport() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Domain != "a" || rows[0].AverageScore != 50 || rows[0].PassRate != 0 {
		t.Errorf("rows[0] = %+v, want domain a at 50%% with zero pass rate", rows[0])
	}
	if rows[2].Domain != "c" || rows[2].PassRate != 1 {
		t.Errorf("rows[2] = %+v, want domain c fully passed", rows[2])
	}
}

func TestExportPersonReport(t *testing.T) {
	_, service := newReportFixture(t)

	data, err := service.ExportPersonReport(context.Background(), "candidate-1", "hr-1")
	if err != nil {
		t.Fatalf("ExportPersonReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != resultsSheet {
		t.Errorf("sheets = %v, want [%s %s]", sheets, summarySheet, resultsSheet)
	}

	person, err := f.GetCellValue(summarySheet, "B1")
	if err != nil {
		t.Fatalf("read summary cell: %v", err)
	}
	if person != "candidate-1" {
		t.Errorf("summary person cell = %q, want candidate-1", person)
	}

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatalf("read results sheet: %v", err)
	}
	if len(rows) != 4 { // header + three results
		t.Errorf("results sheet has %d rows, want 4", len(rows))
	}
}

func TestExportRequiresExportCapability(t *testing.T) {
	_, service := newReportFixture(t)

	// Managers can view reports but not export them.
	_, err := service.ExportPersonReport(context.Background(), "candidate-1", "manager-1")
	if !IsPermissionError(err) {
		t.Fatalf("ExportPersonReport() by manager: error = %v, want permission error", err)
	}
}
