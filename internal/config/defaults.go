// Package config provides configuration loading and defaults for combatlens.
package config

import "time"

// DefaultConfigDir is the default location for combatlens configuration.
const DefaultConfigDir = "~/.config/combatlens"

// DefaultDBName is the filename for the SQLite report archive.
const DefaultDBName = "combatlens.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultProfileDirs are searched for <name>.toml profiles before the
// builtins.
var DefaultProfileDirs = []string{"~/.config/combatlens/profiles"}

// DefaultProfile is used when neither --profile nor the log header names one.
const DefaultProfile = "subtlety-rogue"

// DefaultThresholds are the offsets from recommended efficiency at which
// cast-efficiency issues become regular and major.
var DefaultThresholds = Thresholds{
	RegularOffset: 0.05,
	MajorOffset:   0.15,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level:  "info",
	Format: "text",
}

// DefaultNATS holds the default live-source settings.
var DefaultNATS = NATS{
	URL:     "nats://127.0.0.1:4222",
	Subject: "combatlens.events",
	Timeout: 10 * time.Minute,
}
