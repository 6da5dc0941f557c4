package store

import (
	"time"

	"github.com/jonathan/screeniq/internal/types"
)

// SeedJobs returns the demo job board.
func SeedJobs() []types.Job {
	now := time.Now()
	return []types.Job{
		{
			ID:                   "j1",
			Title:                "Senior Frontend Engineer",
			Company:              "Google",
			Description:          "Lead our next-generation dashboard initiatives. Proficiency in React, TypeScript, and high-performance rendering is mandatory.",
			Department:           "Engineering",
			ExperienceLevel:      "Senior",
			Skills:               []string{"React", "TypeScript", "Tailwind"},
			Status:               types.JobStatusActive,
			CreatedAt:            now,
			CutoffScore:          75,
			ProctoringEnabled:    true,
			DifficultySetting:    types.DifficultyHard,
			MarketBenchmarkScore: 82,
			IdealSkillProfile:    map[string]float64{"Technical": 95, "Logic": 85, "Domain": 80},
			RejectionDelay:       "24 Hours",
			AutoNotify:           true,
		},
		{
			ID:                   "j2",
			Title:                "Product Designer",
			Company:              "Airbnb",
			Description:          "Crafting meaningful experiences for global travelers. Focus on mobile-first design and accessibility.",
			Department:           "Design",
			ExperienceLevel:      "Mid",
			Skills:               []string{"Figma", "UI/UX", "Prototyping"},
			Status:               types.JobStatusActive,
			CreatedAt:            now,
			CutoffScore:          65,
			ProctoringEnabled:    true,
			DifficultySetting:    types.DifficultyMedium,
			MarketBenchmarkScore: 75,
			IdealSkillProfile:    map[string]float64{"Design": 90, "Interaction": 80, "Logic": 70},
			RejectionDelay:       "Instant",
		},
		{
			ID:                   "j3",
			Title:                "Backend Engineer (Go/Node)",
			Company:              "Netflix",
			Description:          "Scaling services that handle millions of concurrent streams. Deep knowledge of microservices and Go is required.",
			Department:           "Engineering",
			ExperienceLevel:      "Senior",
			Skills:               []string{"Go", "Node.js", "Distributed Systems"},
			Status:               types.JobStatusActive,
			CreatedAt:            now,
			CutoffScore:          80,
			ProctoringEnabled:    true,
			DifficultySetting:    types.DifficultyHard,
			MarketBenchmarkScore: 85,
			IdealSkillProfile:    map[string]float64{"Backend": 95, "Systems": 90, "Logic": 85},
			RejectionDelay:       "3 Days",
			AutoNotify:           true,
		},
	}
}

// SeedCandidates returns the demo candidate pool.
func SeedCandidates() []types.Candidate {
	return []types.Candidate{
		{
			ID:          "c-demo-1",
			Name:        "Alex Rivera",
			Email:       "alex.rivera@tech.io",
			LinkedInURL: "https://linkedin.com/in/alexrivera",
			Applied: []types.Application{
				{
					JobID:          "j1",
					Status:         types.StatusApplied,
					Score:          88,
					Suitability:    91,
					IntegrityScore: 100,
					AppliedAt:      time.Now(),
					Feedback:       "Exceptional performance in technical screening.",
					SkillBreakdown: map[string]float64{"Technical": 95, "Logic": 85, "Domain": 80},
				},
			},
		},
	}
}
