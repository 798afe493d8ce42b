package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

func TestClassifySkillLevel(t *testing.T) {
	tests := []struct {
		name       string
		percentage int
		want       models.SkillLevel
	}{
		{"expert at upper band", 90, models.LevelExpert},
		{"expert above band", 100, models.LevelExpert},
		{"advanced at lower bound", 75, models.LevelAdvanced},
		{"advanced below expert", 89, models.LevelAdvanced},
		{"intermediate at lower bound", 60, models.LevelIntermediate},
		{"beginner just below intermediate", 59, models.LevelBeginner},
		{"beginner at zero", 0, models.LevelBeginner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySkillLevel(tt.percentage); got != tt.want {
				t.Errorf("ClassifySkillLevel(%d) = %v, want %v", tt.percentage, got, tt.want)
			}
		})
	}
}

func eventsWithSeverity(severity models.ProctoringSeverity, n int) []models.ProctoringEvent {
	events := make([]models.ProctoringEvent, n)
	for i := range events {
		events[i] = models.ProctoringEvent{
			Type:      "tab_switch",
			Timestamp: time.Date(2026, 3, 1, 10, 0, i, 0, time.UTC),
			Severity:  severity,
		}
	}
	return events
}

func TestAnalyzeSecurity(t *testing.T) {
	tests := []struct {
		name   string
		events []models.ProctoringEvent
		want   models.SecurityAnalysis
	}{
		{
			name:   "clean session",
			events: nil,
			want:   models.SecurityAnalysis{ViolationCount: 0, OverallSecurityScore: 100, SecurityLevel: models.SecurityExcellent},
		},
		{
			name:   "four medium events band fair despite score eighty",
			events: eventsWithSeverity(models.SeverityMedium, 4),
			want:   models.SecurityAnalysis{ViolationCount: 4, OverallSecurityScore: 80, SecurityLevel: models.SecurityFair},
		},
		{
			name:   "three high events stay in good band",
			events: eventsWithSeverity(models.SeverityHigh, 3),
			want:   models.SecurityAnalysis{ViolationCount: 3, OverallSecurityScore: 70, SecurityLevel: models.SecurityGood},
		},
		{
			name:   "seven events band poor",
			events: eventsWithSeverity(models.SeverityMedium, 7),
			want:   models.SecurityAnalysis{ViolationCount: 7, OverallSecurityScore: 65, SecurityLevel: models.SecurityPoor},
		},
		{
			name:   "severity-less events deduct flat five",
			events: eventsWithSeverity("", 2),
			want:   models.SecurityAnalysis{ViolationCount: 2, OverallSecurityScore: 90, SecurityLevel: models.SecurityGood},
		},
		{
			name:   "low severity counts but does not deduct",
			events: eventsWithSeverity(models.SeverityLow, 3),
			want:   models.SecurityAnalysis{ViolationCount: 3, OverallSecurityScore: 100, SecurityLevel: models.SecurityGood},
		},
		{
			name:   "score floors at zero",
			events: eventsWithSeverity(models.SeverityHigh, 12),
			want:   models.SecurityAnalysis{ViolationCount: 12, OverallSecurityScore: 0, SecurityLevel: models.SecurityPoor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnalyzeSecurity(tt.events); got != tt.want {
				t.Errorf("AnalyzeSecurity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	test := &models.Test{
		ID:           5,
		Title:        "Go Fundamentals",
		Domain:       "backend",
		Level:        models.LevelIntermediate,
		PassingScore: 70,
		Duration:     60,
	}
	result := &models.TestResult{
		ID:         1,
		PersonID:   "p-1",
		TestID:     5,
		SessionID:  9,
		Score:      9,
		Percentage: 92,
		Passed:     true,
		TimeSpent:  1800,
	}

	analysis, err := Analyze(AnalysisInput{Result: result, Test: test})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if analysis.SkillLevel != models.LevelExpert {
		t.Errorf("SkillLevel = %v, want %v", analysis.SkillLevel, models.LevelExpert)
	}
	wantDomain := models.DomainPerformance{Domain: "backend", Level: models.LevelIntermediate, Score: 92, Passed: true}
	if len(analysis.DomainPerformance) != 1 || analysis.DomainPerformance[0] != wantDomain {
		t.Errorf("DomainPerformance = %+v, want [%+v]", analysis.DomainPerformance, wantDomain)
	}
	if got := analysis.StrengthAreas; len(got) != 1 || got[0] != "backend" {
		t.Errorf("StrengthAreas = %v, want [backend]", got)
	}
	if len(analysis.SkillGaps) != 0 {
		t.Errorf("SkillGaps = %v, want empty", analysis.SkillGaps)
	}
	if analysis.PredictiveAnalytics.FuturePerformance != 100 {
		t.Errorf("FuturePerformance = %d, want 100 (capped)", analysis.PredictiveAnalytics.FuturePerformance)
	}
	if !analysis.CompetencyMapping.MeetsRequired {
		t.Error("CompetencyMapping.MeetsRequired = false, want true for expert vs intermediate test")
	}
}

func TestAnalyzeLowScoreFlagsGap(t *testing.T) {
	test := &models.Test{ID: 2, Domain: "security", Level: models.LevelAdvanced, Duration: 30}
	result := &models.TestResult{ID: 3, Percentage: 45, Passed: false, TimeSpent: 1200}

	analysis, err := Analyze(AnalysisInput{Result: result, Test: test})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if analysis.SkillLevel != models.LevelBeginner {
		t.Errorf("SkillLevel = %v, want beginner", analysis.SkillLevel)
	}
	if got := analysis.SkillGaps; len(got) != 1 || got[0] != "security" {
		t.Errorf("SkillGaps = %v, want [security]", got)
	}
	if len(analysis.StrengthAreas) != 0 {
		t.Errorf("StrengthAreas = %v, want empty", analysis.StrengthAreas)
	}
	if analysis.CompetencyMapping.TargetLevel != models.LevelIntermediate {
		t.Errorf("TargetLevel = %v, want intermediate", analysis.CompetencyMapping.TargetLevel)
	}
	if analysis.CompetencyMapping.GapToTarget != 15 {
		t.Errorf("GapToTarget = %d, want 15", analysis.CompetencyMapping.GapToTarget)
	}
	if analysis.CompetencyMapping.MeetsRequired {
		t.Error("MeetsRequired = true, want false for beginner vs advanced test")
	}
	if len(analysis.TrainingRecommendations) == 0 {
		t.Error("TrainingRecommendations empty, want at least the gap recommendation")
	}
}

func TestAnalyzeMissingInputs(t *testing.T) {
	if _, err := Analyze(AnalysisInput{}); err == nil {
		t.Fatal("Analyze() with no inputs: expected error")
	}
	if _, err := Analyze(AnalysisInput{Result: &models.TestResult{}}); err == nil {
		t.Fatal("Analyze() without test: expected error")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	test := &models.Test{ID: 1, Domain: "frontend", Level: models.LevelIntermediate, Duration: 45}
	result := &models.TestResult{ID: 7, Percentage: 68, TimeSpent: 2000}
	events := eventsWithSeverity(models.SeverityMedium, 2)

	first, err := Analyze(AnalysisInput{Result: result, Test: test, Events: events})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Analyze(AnalysisInput{Result: result, Test: test, Events: events})
		if err != nil {
			t.Fatalf("run %d: Analyze() error = %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: analysis differs:\nfirst = %+v\nagain = %+v", i, first, again)
		}
	}
}

func TestAggregateDomainsAndPriorities(t *testing.T) {
	results := []*models.TestResult{
		{Percentage: 50, Test: models.Test{Domain: "a"}},
		{Percentage: 65, Test: models.Test{Domain: "b"}},
		{Percentage: 80, Test: models.Test{Domain: "c"}},
	}

	averages := AggregateDomains(results)
	priorities := TrainingPriorities(averages)

	want := []string{"a (50% avg)", "b (65% avg)"}
	if !reflect.DeepEqual(priorities, want) {
		t.Errorf("TrainingPriorities() = %v, want %v", priorities, want)
	}
}

func TestAggregateDomainsAveragesMultipleResults(t *testing.T) {
	results := []*models.TestResult{
		{Percentage: 60, Test: models.Test{Domain: "data"}},
		{Percentage: 71, Test: models.Test{Domain: "data"}},
		{Percentage: 90, Test: models.Test{Domain: "cloud"}},
	}

	averages := AggregateDomains(results)
	if len(averages) != 2 {
		t.Fatalf("AggregateDomains() returned %d domains, want 2", len(averages))
	}
	// 60+71 = 131 / 2 = 65.5 rounds to 66
	if averages[0].Domain != "data" || averages[0].Average != 66 {
		t.Errorf("averages[0] = %+v, want data at 66", averages[0])
	}
	if averages[1].Domain != "cloud" || averages[1].Average != 90 {
		t.Errorf("averages[1] = %+v, want cloud at 90", averages[1])
	}
}

func TestTrainingPrioritiesCap(t *testing.T) {
	averages := []DomainAverage{
		{Domain: "a", Average: 10}, {Domain: "b", Average: 20}, {Domain: "c", Average: 30},
		{Domain: "d", Average: 40}, {Domain: "e", Average: 50}, {Domain: "f", Average: 60},
	}
	priorities := TrainingPriorities(averages)
	if len(priorities) != 5 {
		t.Fatalf("TrainingPriorities() returned %d entries, want 5", len(priorities))
	}
	if priorities[0] != "a (10% avg)" {
		t.Errorf("priorities[0] = %q, want weakest domain first", priorities[0])
	}
}
