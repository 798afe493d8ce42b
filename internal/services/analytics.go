package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

// Skill-level band boundaries, inclusive lower bounds. The same boundaries
// drive classification, strengths (>= advanced) and gaps (< intermediate).
const (
	bandIntermediate = 60
	bandAdvanced     = 75
	bandExpert       = 90
)

// trainingPriorityThreshold marks a domain average as needing attention.
const trainingPriorityThreshold = 70

// maxTrainingPriorities caps the priority list.
const maxTrainingPriorities = 5

// AnalysisInput bundles everything the derivation reads. Candidate may be
// nil; Events come from the session when one is linked.
type AnalysisInput struct {
	Result    *models.TestResult
	Test      *models.Test
	Candidate *models.User
	Events    []models.ProctoringEvent
}

// Analyze derives the full skill-gap report for one result. The output is
// purely a function of the input: no I/O, no clock, no randomness, so
// repeated calls over the same input produce the same report.
func Analyze(input AnalysisInput) (*models.SkillGapAnalysis, error) {
	if input.Result == nil || input.Test == nil {
		return nil, fmt.Errorf("%w: result and test are required", ErrAnalyticsGenerationFailed)
	}

	percentage := input.Result.Percentage
	security := AnalyzeSecurity(input.Events)

	domainPoint := models.DomainPerformance{
		Domain: input.Test.Domain,
		Level:  input.Test.Level,
		Score:  percentage,
		Passed: input.Result.Passed,
	}

	analysis := &models.SkillGapAnalysis{
		SkillLevel:          ClassifySkillLevel(percentage),
		DomainPerformance:   []models.DomainPerformance{domainPoint},
		SkillGaps:           []string{},
		StrengthAreas:       []string{},
		SecurityAnalysis:    security,
		PredictiveAnalytics: derivePredictive(input.Result, input.Test, security),
		CompetencyMapping:   mapCompetency(input.Test, percentage),
	}

	if percentage < bandIntermediate {
		analysis.SkillGaps = append(analysis.SkillGaps, input.Test.Domain)
	}
	if percentage >= bandAdvanced {
		analysis.StrengthAreas = append(analysis.StrengthAreas, input.Test.Domain)
	}

	analysis.TrainingRecommendations = buildRecommendations(input.Test, analysis)

	return analysis, nil
}

// ClassifySkillLevel places a percentage on the fixed band ladder.
func ClassifySkillLevel(percentage int) models.SkillLevel {
	switch {
	case percentage >= bandExpert:
		return models.LevelExpert
	case percentage >= bandAdvanced:
		return models.LevelAdvanced
	case percentage >= bandIntermediate:
		return models.LevelIntermediate
	default:
		return models.LevelBeginner
	}
}

// AnalyzeSecurity scores session integrity from the proctoring stream.
// Every event counts as one violation. The score starts at 100 and loses
// 10 per high-severity event, 5 per medium; events carrying no severity
// lose a flat 5. The level bands on violation count, not on the score, so
// the two derivations can legitimately disagree in mixed streams.
func AnalyzeSecurity(events []models.ProctoringEvent) models.SecurityAnalysis {
	score := 100
	for _, event := range events {
		switch event.Severity {
		case models.SeverityHigh:
			score -= 10
		case models.SeverityMedium:
			score -= 5
		case models.SeverityLow:
			// recorded, not penalized
		default:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}

	count := len(events)
	var level models.SecurityLevel
	switch {
	case count == 0:
		level = models.SecurityExcellent
	case count <= 3:
		level = models.SecurityGood
	case count <= 6:
		level = models.SecurityFair
	default:
		level = models.SecurityPoor
	}

	return models.SecurityAnalysis{
		ViolationCount:       count,
		OverallSecurityScore: score,
		SecurityLevel:        level,
	}
}

// derivePredictive computes the forecast fields. These are explicit
// heuristics over (percentage, time spent, security score); each is
// deterministic and non-decreasing in percentage.
func derivePredictive(result *models.TestResult, test *models.Test, security models.SecurityAnalysis) models.PredictiveAnalytics {
	percentage := result.Percentage

	future := percentage + 15
	if future > 100 {
		future = 100
	}

	consistency := percentage - 5*security.ViolationCount
	if consistency < 0 {
		consistency = 0
	}

	retention := int(math.Round(float64(percentage)*0.9)) + 10
	if retention > 100 {
		retention = 100
	}

	promotion := (percentage + security.OverallSecurityScore) / 2

	return models.PredictiveAnalytics{
		FuturePerformance:  future,
		ConsistencyScore:   consistency,
		SpeedScore:         deriveSpeedScore(result.TimeSpent, test.Duration),
		RetentionForecast:  retention,
		PromotionReadiness: promotion,
	}
}

// deriveSpeedScore rates time usage against the test's allotted duration.
// Finishing in half the window or less scores 100; using the full window
// scores 50; overruns degrade toward 0. Unknown duration or time reads as
// a neutral 50.
func deriveSpeedScore(timeSpentSeconds, durationMinutes int) int {
	if durationMinutes <= 0 || timeSpentSeconds <= 0 {
		return 50
	}

	allotted := durationMinutes * 60
	used := float64(timeSpentSeconds) / float64(allotted)
	score := int(math.Round(100 - used*50))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// mapCompetency places the candidate on the ladder relative to the test's
// declared level.
func mapCompetency(test *models.Test, percentage int) models.CompetencyMapping {
	current := ClassifySkillLevel(percentage)

	var target models.SkillLevel
	var gap int
	switch current {
	case models.LevelBeginner:
		target, gap = models.LevelIntermediate, bandIntermediate-percentage
	case models.LevelIntermediate:
		target, gap = models.LevelAdvanced, bandAdvanced-percentage
	case models.LevelAdvanced:
		target, gap = models.LevelExpert, bandExpert-percentage
	default:
		target, gap = models.LevelExpert, 0
	}

	return models.CompetencyMapping{
		Domain:        test.Domain,
		CurrentLevel:  current,
		TargetLevel:   target,
		GapToTarget:   gap,
		MeetsRequired: levelRank(current) >= levelRank(test.Level),
	}
}

func levelRank(level models.SkillLevel) int {
	switch level {
	case models.LevelExpert:
		return 3
	case models.LevelAdvanced:
		return 2
	case models.LevelIntermediate:
		return 1
	default:
		return 0
	}
}

// buildRecommendations emits fixed-form guidance from the derived report.
// Kept deterministic; an AI narrative can be layered on top but never
// replaces these.
func buildRecommendations(test *models.Test, analysis *models.SkillGapAnalysis) []string {
	recs := make([]string, 0, 3)

	for _, gap := range analysis.SkillGaps {
		recs = append(recs, fmt.Sprintf("Complete foundational training in %s", gap))
	}
	if analysis.SkillLevel == models.LevelIntermediate {
		recs = append(recs, fmt.Sprintf("Take an advanced course in %s to close the gap to the next level", test.Domain))
	}
	if analysis.SecurityAnalysis.SecurityLevel == models.SecurityFair || analysis.SecurityAnalysis.SecurityLevel == models.SecurityPoor {
		recs = append(recs, "Review assessment integrity guidelines before the next attempt")
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Maintain proficiency in %s with periodic refreshers", test.Domain))
	}
	return recs
}

// DomainAverage is one aggregated domain score across many results.
type DomainAverage struct {
	Domain  string
	Average int
	Count   int
}

// AggregateDomains buckets results by their test's domain and averages the
// percentages, rounding half up.
func AggregateDomains(results []*models.TestResult) []DomainAverage {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range results {
		domain := r.Test.Domain
		if domain == "" {
			continue
		}
		sums[domain] += r.Percentage
		counts[domain]++
	}

	averages := make([]DomainAverage, 0, len(sums))
	for domain, sum := range sums {
		averages = append(averages, DomainAverage{
			Domain:  domain,
			Average: int(math.Round(float64(sum) / float64(counts[domain]))),
			Count:   counts[domain],
		})
	}
	sort.Slice(averages, func(i, j int) bool {
		if averages[i].Average != averages[j].Average {
			return averages[i].Average < averages[j].Average
		}
		return averages[i].Domain < averages[j].Domain
	})
	return averages
}

// TrainingPriorities lists the domains that need attention: average below
// 70, ascending by score so the weakest area leads, capped at five.
func TrainingPriorities(averages []DomainAverage) []string {
	priorities := make([]string, 0, maxTrainingPriorities)
	for _, avg := range averages {
		if avg.Average >= trainingPriorityThreshold {
			continue
		}
		priorities = append(priorities, fmt.Sprintf("%s (%d%% avg)", avg.Domain, avg.Average))
		if len(priorities) == maxTrainingPriorities {
			break
		}
	}
	return priorities
}
