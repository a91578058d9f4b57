package metrics

import (
	"github.com/nvandessel/structsim/internal/models"
	"github.com/nvandessel/structsim/internal/stats"
)

// CategoryCounts tallies state-space outcomes.
type CategoryCounts struct {
	Success      int `json:"success"`
	Fail         int `json:"fail"`
	Catastrophic int `json:"catastrophic"`
}

// Total returns the number of tallied samples.
func (c CategoryCounts) Total() int {
	return c.Success + c.Fail + c.Catastrophic
}

// CatastrophicRate returns the catastrophic share as a percentage with one
// decimal, or 0 for an empty tally.
func (c CategoryCounts) CatastrophicRate() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return stats.Round(float64(c.Catastrophic)/float64(total)*100, 1)
}

// CountCategories tallies the outcome of each sample.
func CountCategories(samples []models.StateSample) CategoryCounts {
	var c CategoryCounts
	for _, s := range samples {
		switch s.Outcome {
		case models.CategorySuccess:
			c.Success++
		case models.CategoryFail:
			c.Fail++
		case models.CategoryCatastrophic:
			c.Catastrophic++
		}
	}
	return c
}
