package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ketan-bobby/skillpulse/internal/ai"
	"github.com/ketan-bobby/skillpulse/internal/models"
)

type narrativeService struct {
	providers []ai.Provider
	logger    *slog.Logger
}

// NewNarrativeService builds the AI summary layer over an explicit,
// ordered provider chain. An empty chain is valid: Summarize then reports
// ai.ErrNoProviders and callers degrade to the deterministic report.
func NewNarrativeService(providers []ai.Provider, logger *slog.Logger) NarrativeService {
	return &narrativeService{providers: providers, logger: logger}
}

func (s *narrativeService) Summarize(ctx context.Context, analysis *models.SkillGapAnalysis, test *models.Test) (string, error) {
	prompt := buildNarrativePrompt(analysis, test)

	summary, err := ai.CompleteWithFallback(ctx, s.providers, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func buildNarrativePrompt(analysis *models.SkillGapAnalysis, test *models.Test) string {
	var b strings.Builder
	b.WriteString("Write a two-sentence development summary for an employee assessment.\n")
	fmt.Fprintf(&b, "Domain: %s. Skill level: %s.\n", test.Domain, analysis.SkillLevel)
	if len(analysis.SkillGaps) > 0 {
		fmt.Fprintf(&b, "Gap areas: %s.\n", strings.Join(analysis.SkillGaps, ", "))
	}
	if len(analysis.StrengthAreas) > 0 {
		fmt.Fprintf(&b, "Strengths: %s.\n", strings.Join(analysis.StrengthAreas, ", "))
	}
	fmt.Fprintf(&b, "Integrity level: %s.\n", analysis.SecurityAnalysis.SecurityLevel)
	b.WriteString("Address the employee directly and stay factual.")
	return b.String()
}
