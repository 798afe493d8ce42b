package models

// DomainPerformance is one scored data point for a subject-matter domain.
type DomainPerformance struct {
	Domain string     `json:"domain"`
	Level  SkillLevel `json:"level"`
	Score  int        `json:"score"` // percentage
	Passed bool       `json:"passed"`
}

type SecurityLevel string

const (
	SecurityExcellent SecurityLevel = "Excellent"
	SecurityGood      SecurityLevel = "Good"
	SecurityFair      SecurityLevel = "Fair"
	SecurityPoor      SecurityLevel = "Poor"
)

// SecurityAnalysis scores session integrity from the proctoring event
// stream. The score starts at 100 and is deducted per violation; the level
// bands on violation count, not on the score.
type SecurityAnalysis struct {
	ViolationCount       int           `json:"violation_count"`
	OverallSecurityScore int           `json:"overall_security_score"`
	SecurityLevel        SecurityLevel `json:"security_level"`
}

// PredictiveAnalytics holds explicit heuristics, not fitted models. Every
// field is a deterministic function of the result's percentage, time spent
// and proctoring event count, and monotone in percentage.
type PredictiveAnalytics struct {
	FuturePerformance  int `json:"future_performance"`
	ConsistencyScore   int `json:"consistency_score"`
	SpeedScore         int `json:"speed_score"`
	RetentionForecast  int `json:"retention_forecast"`
	PromotionReadiness int `json:"promotion_readiness"`
}

// CompetencyMapping places the candidate on the fixed skill ladder.
type CompetencyMapping struct {
	Domain        string     `json:"domain"`
	CurrentLevel  SkillLevel `json:"current_level"`
	TargetLevel   SkillLevel `json:"target_level"`
	GapToTarget   int        `json:"gap_to_target"` // percentage points to the next band
	MeetsRequired bool       `json:"meets_required"`
}

// SkillGapAnalysis is the full derived report for one result. It is purely
// a function of (result, test, candidate, proctoring events) and is
// reproducible on repeated calls for the same inputs.
type SkillGapAnalysis struct {
	SkillLevel              SkillLevel          `json:"skill_level"`
	DomainPerformance       []DomainPerformance `json:"domain_performance"`
	SkillGaps               []string            `json:"skill_gaps"`
	StrengthAreas           []string            `json:"strength_areas"`
	SecurityAnalysis        SecurityAnalysis    `json:"security_analysis"`
	PredictiveAnalytics     PredictiveAnalytics `json:"predictive_analytics"`
	TrainingRecommendations []string            `json:"training_recommendations"`
	CompetencyMapping       CompetencyMapping   `json:"competency_mapping"`
}
