// Package config provides configuration loading and defaults for inferscope.
package config

// DefaultConfigDir is the default location for inferscope configuration.
const DefaultConfigDir = "~/.config/inferscope"

// DefaultDBName is the filename for the SQLite snapshot database.
const DefaultDBName = "inferscope.db"

// DefaultSpikeThreshold is the escalation spike threshold percentage.
const DefaultSpikeThreshold = 30.0

// SpikeThresholdMin and SpikeThresholdMax bound the slider presented to
// operators. They are UI affordances: the detector itself accepts any
// value in [0,100].
const (
	SpikeThresholdMin  = 10.0
	SpikeThresholdMax  = 80.0
	SpikeThresholdStep = 5.0
)

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
