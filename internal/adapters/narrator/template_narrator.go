package narrator

import (
	"fmt"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// TemplateNarrator renders a themed explanation for a breach without calling
// any remote generator. One template per metric, a combined template when
// several metrics trip in the same cycle.
type TemplateNarrator struct {
	location string
}

func New(location string) *TemplateNarrator {
	if location == "" {
		location = "Lab-A"
	}
	return &TemplateNarrator{location: location}
}

func (n *TemplateNarrator) Explain(a *domain.Assessment, verdicts []domain.Verdict) string {
	if a == nil || a.Level == 0 {
		return fmt.Sprintf("All clear in %s. Sensor readings within normal parameters.", n.location)
	}

	if len(a.Metrics) > 1 {
		return fmt.Sprintf(
			"Critical alert! Multiple sensor anomalies detected simultaneously in %s. "+
				"This pattern matches previous Gate formations. Breach level %d: %s.",
			n.location, a.Level, a.Label)
	}

	// Single metric: narrate the verdict that tripped it.
	for _, v := range verdicts {
		if !v.Anomalous {
			continue
		}
		return n.metricTemplate(v)
	}
	return fmt.Sprintf(
		"Warning! Anomalous readings detected in %s. Breach level %d: %s. "+
			"Possible interdimensional interference.",
		n.location, a.Level, a.Label)
}

func (n *TemplateNarrator) metricTemplate(v domain.Verdict) string {
	switch v.Metric {
	case domain.MetricTemperature:
		return fmt.Sprintf(
			"Warning! Thermal anomaly detected in %s. Temperature spiked to %.1f, "+
				"the same readings we saw before the Demogorgon emerged. "+
				"The Upside Down is bleeding through.",
			n.location, v.Value)
	case domain.MetricGas:
		return fmt.Sprintf(
			"Alert! Gas concentration in %s at %.1f. Atmospheric composition is "+
				"shifting, signature of the Upside Down. Seal ventilation and "+
				"initiate containment.",
			n.location, v.Value)
	case domain.MetricVibration:
		return fmt.Sprintf(
			"Warning! Seismic activity detected in %s: %.2f. These tremors match "+
				"the frequency of interdimensional tunneling. The Demogorgons may "+
				"be burrowing beneath us.",
			n.location, v.Value)
	case domain.MetricCPUUsage:
		return fmt.Sprintf(
			"Warning! System overload in %s: %.1f. Electromagnetic interference "+
				"from the Gate can disrupt our systems. The Mind Flayer may be "+
				"probing our network.",
			n.location, v.Value)
	default:
		return fmt.Sprintf(
			"Warning! Anomalous %s readings detected in %s: %.2f. Stay vigilant "+
				"for signs of the Upside Down.",
			v.Metric, n.location, v.Value)
	}
}

var _ ports.Narrator = (*TemplateNarrator)(nil)
