package analyzer

import (
	"fmt"
	"time"
)

// DetectSpikes returns the days whose escalation rate meets or exceeds
// thresholdPct (inclusive boundary). Days with an undefined rate are
// never spikes. The result preserves rollup order; empty means no
// spikes, which is a normal outcome.
func DetectSpikes(rollup []DayStat, thresholdPct float64) []Spike {
	var spikes []Spike
	for _, d := range rollup {
		if d.EscalationRate == nil {
			continue
		}
		pct := *d.EscalationRate * 100
		if pct >= thresholdPct {
			spikes = append(spikes, Spike{
				Date:          d.Date,
				Sessions:      d.Sessions,
				EscalationPct: pct,
			})
		}
	}
	return spikes
}

// SpikeAlerts turns flagged days into leveled alerts for the alert
// panel. A day at twice the threshold or more is critical, otherwise
// warning.
func SpikeAlerts(spikes []Spike, thresholdPct float64) []Alert {
	now := time.Now()
	var alerts []Alert
	for _, s := range spikes {
		level := "warning"
		if thresholdPct > 0 && s.EscalationPct >= 2*thresholdPct {
			level = "critical"
		}
		alerts = append(alerts, Alert{
			Level:   level,
			Title:   fmt.Sprintf("Escalation spike on %s", s.Date),
			Message: fmt.Sprintf("%.1f%% of %d sessions escalated (threshold %.0f%%)", s.EscalationPct, s.Sessions, thresholdPct),
			Time:    now,
		})
	}
	return alerts
}
