// Package estimate quotes the labor hours and cost of a modification
// project. Bundling several modifications into one project adds scheduling
// overhead, so the total grows 10% per additional service before rounding up
// to whole billable hours.
package estimate

import (
	"math"

	"revamp/pkg/model"
)

type Engine struct {
	hourlyRate float64
}

func NewEngine(hourlyRate float64) *Engine {
	return &Engine{hourlyRate: hourlyRate}
}

// Quote estimates a bundle of modification services. An empty bundle quotes
// zero hours and zero cost.
func (e *Engine) Quote(services []model.ModificationService) model.Estimate {
	if len(services) == 0 {
		return model.Estimate{}
	}

	var baseHours float64
	for _, svc := range services {
		baseHours += svc.EstimatedHours
	}

	multiplier := 1 + 0.1*float64(len(services)-1)
	hours := int(math.Ceil(baseHours * multiplier))

	return model.Estimate{
		Hours: hours,
		Cost:  float64(hours) * e.hourlyRate,
	}
}

// HourlyRate returns the configured labor rate.
func (e *Engine) HourlyRate() float64 {
	return e.hourlyRate
}
