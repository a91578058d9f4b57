package metrics

import (
	"testing"

	"github.com/nvandessel/structsim/internal/models"
)

func TestCountCategories(t *testing.T) {
	samples := []models.StateSample{
		{Outcome: models.CategorySuccess},
		{Outcome: models.CategorySuccess},
		{Outcome: models.CategoryFail},
		{Outcome: models.CategoryCatastrophic},
	}
	c := CountCategories(samples)
	if c.Success != 2 || c.Fail != 1 || c.Catastrophic != 1 {
		t.Errorf("counts = %+v, want {2 1 1}", c)
	}
	if c.Total() != 4 {
		t.Errorf("Total = %d, want 4", c.Total())
	}
	if c.CatastrophicRate() != 25 {
		t.Errorf("CatastrophicRate = %v, want 25", c.CatastrophicRate())
	}
}

func TestCatastrophicRate_Empty(t *testing.T) {
	var c CategoryCounts
	if c.CatastrophicRate() != 0 {
		t.Errorf("CatastrophicRate() = %v, want 0", c.CatastrophicRate())
	}
}
