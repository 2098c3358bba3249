// internal/matching/scoring/calculator_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talent-matching/internal/common/config"
	"talent-matching/internal/matching/profile"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Weights: config.WeightsConfig{
			Skills:       0.40,
			Experience:   0.25,
			Compensation: 0.20,
			Location:     0.15,
		},
		Scoring: config.ScoringConfig{
			ExperiencePenaltyPerTier: 25,
			NeutralScore:             70,
			LocationMismatchScore:    40,
		},
	}
}

func candidateProfile(skills []string, tier profile.ExperienceTier) profile.AttributeProfile {
	return profile.AttributeProfile{
		EntityID:   "cand-1",
		Kind:       "candidate",
		Skills:     skills,
		Experience: tier,
	}
}

func jobProfile(skills []string, tier profile.ExperienceTier, remote bool) profile.AttributeProfile {
	return profile.AttributeProfile{
		EntityID:   "job-1",
		Kind:       "job",
		Skills:     skills,
		Experience: tier,
		Remote:     remote,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestCalculator_Score_WeightedComposite(t *testing.T) {
	calc := NewCalculator(createTestMatchingConfig())

	tests := []struct {
		name              string
		candidate         profile.AttributeProfile
		job               profile.AttributeProfile
		expectedScore     int
		expectedTier      Tier
		validateBreakdown func(t *testing.T, b Breakdown)
	}{
		{
			name:          "perfect match",
			candidate:     candidateProfile([]string{"go", "sql"}, profile.TierSenior),
			job:           jobProfile([]string{"go", "sql"}, profile.TierSenior, true),
			expectedScore: 100,
			expectedTier:  TierExcellent,
			validateBreakdown: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 100, b.SkillOverlap)
				assert.Equal(t, 100, b.ExperienceFit)
				assert.Equal(t, 100, b.CompensationFit)
				assert.Equal(t, 100, b.LocationFit)
			},
		},
		{
			name:          "partial skills one tier above remote job",
			candidate:     candidateProfile([]string{"react", "typescript"}, profile.TierSenior),
			job:           jobProfile([]string{"react", "typescript", "node"}, profile.TierMiddle, true),
			expectedScore: 81, // 67*0.40 + 75*0.25 + 100*0.20 + 100*0.15 = 26.8+18.75+20+15 = 80.55
			expectedTier:  TierGood,
			validateBreakdown: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 67, b.SkillOverlap)
				assert.Equal(t, 75, b.ExperienceFit)
				assert.Equal(t, 100, b.CompensationFit)
				assert.Equal(t, 100, b.LocationFit)
			},
		},
		{
			name:          "no required skills is a full skill match",
			candidate:     candidateProfile(nil, profile.TierJunior),
			job:           jobProfile(nil, profile.TierJunior, true),
			expectedScore: 100,
			expectedTier:  TierExcellent,
			validateBreakdown: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 100, b.SkillOverlap)
			},
		},
		{
			name:          "unknown experience scores neutral",
			candidate:     candidateProfile([]string{"go"}, profile.TierUnknown),
			job:           jobProfile([]string{"go"}, profile.TierSenior, true),
			expectedScore: 93, // 100*0.40 + 70*0.25 + 100*0.20 + 100*0.15 = 92.5
			expectedTier:  TierExcellent,
			validateBreakdown: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 70, b.ExperienceFit)
			},
		},
		{
			name:          "no skills matched, far experience gap",
			candidate:     candidateProfile([]string{"cobol"}, profile.TierEntry),
			job:           jobProfile([]string{"go", "sql"}, profile.TierLead, true),
			expectedScore: 35, // 0*0.40 + 0*0.25 + 100*0.20 + 100*0.15
			expectedTier:  TierNeedsAttention,
			validateBreakdown: func(t *testing.T, b Breakdown) {
				assert.Equal(t, 0, b.SkillOverlap)
				assert.Equal(t, 0, b.ExperienceFit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.Score(tt.candidate, tt.job)

			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedTier, result.Tier)
			assert.Equal(t, "cand-1", result.CandidateID)
			assert.Equal(t, "job-1", result.JobID)
			if tt.validateBreakdown != nil {
				tt.validateBreakdown(t, result.Breakdown)
			}
		})
	}
}

func TestCalculator_Score_Deterministic(t *testing.T) {
	calc := NewCalculator(createTestMatchingConfig())
	candidate := candidateProfile([]string{"go", "kubernetes"}, profile.TierMiddle)
	job := jobProfile([]string{"go", "kubernetes", "terraform"}, profile.TierSenior, false)

	first := calc.Score(candidate, job)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, calc.Score(candidate, job))
	}
}

func TestCalculator_Score_AlwaysInRange(t *testing.T) {
	calc := NewCalculator(createTestMatchingConfig())

	tiers := []profile.ExperienceTier{
		profile.TierUnknown, profile.TierEntry, profile.TierJunior,
		profile.TierMiddle, profile.TierSenior, profile.TierLead,
	}
	skillSets := [][]string{nil, {"go"}, {"go", "sql", "redis"}}

	for _, candTier := range tiers {
		for _, jobTier := range tiers {
			for _, candSkills := range skillSets {
				for _, jobSkills := range skillSets {
					result := calc.Score(
						candidateProfile(candSkills, candTier),
						jobProfile(jobSkills, jobTier, false),
					)
					assert.GreaterOrEqual(t, result.Score, 0)
					assert.LessOrEqual(t, result.Score, 100)
					assert.Equal(t, ClassifyScore(result.Score), result.Tier)
				}
			}
		}
	}
}

func TestCalculator_CompensationFit(t *testing.T) {
	calc := NewCalculator(createTestMatchingConfig())

	salary := func(min, max int, currency string) *profile.SalaryRange {
		return &profile.SalaryRange{Min: min, Max: max, Currency: currency}
	}

	tests := []struct {
		name      string
		candidate *profile.SalaryRange
		job       *profile.SalaryRange
		expected  int
	}{
		{"both unknown", nil, nil, 100},
		{"candidate unknown", nil, salary(50000, 70000, "usd"), 100},
		{"overlapping ranges", salary(60000, 80000, "usd"), salary(70000, 90000, "usd"), 100},
		{"touching ranges", salary(60000, 70000, "usd"), salary(70000, 80000, "usd"), 100},
		{"currency mismatch is incomparable", salary(60000, 80000, "eur"), salary(10000, 20000, "usd"), 100},
		{"small gap above job range", salary(95000, 105000, "usd"), salary(70000, 90000, "usd"), 83}, // gap 5000 / width 30000
		{"gap exceeding combined width", salary(200000, 210000, "usd"), salary(50000, 60000, "usd"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := candidateProfile([]string{"go"}, profile.TierMiddle)
			candidate.Salary = tt.candidate
			job := jobProfile([]string{"go"}, profile.TierMiddle, true)
			job.Salary = tt.job

			result := calc.Score(candidate, job)
			assert.Equal(t, tt.expected, result.Breakdown.CompensationFit)
		})
	}
}

func TestCalculator_LocationFit(t *testing.T) {
	calc := NewCalculator(createTestMatchingConfig())

	tests := []struct {
		name         string
		candidateLoc string
		jobLoc       string
		remote       bool
		expected     int
	}{
		{"remote job always fits", "berlin", "munich", true, 100},
		{"matching locations", "berlin", "berlin", false, 100},
		{"mismatched locations", "berlin", "munich", false, 40},
		{"unknown candidate location", "", "munich", false, 70},
		{"unknown job location", "berlin", "", false, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := candidateProfile([]string{"go"}, profile.TierMiddle)
			candidate.Location = tt.candidateLoc
			job := jobProfile([]string{"go"}, profile.TierMiddle, tt.remote)
			job.Location = tt.jobLoc

			result := calc.Score(candidate, job)
			assert.Equal(t, tt.expected, result.Breakdown.LocationFit)
		})
	}
}
