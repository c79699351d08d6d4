package suggest

import (
	"fmt"
	"strings"
)

// Severity is the ordinal importance of an issue. Larger is worse.
type Severity int

const (
	SeverityMinor Severity = iota
	SeverityRegular
	SeverityMajor
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityRegular:
		return "regular"
	case SeverityMajor:
		return "major"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a case-insensitive name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "minor":
		return SeverityMinor, nil
	case "regular":
		return SeverityRegular, nil
	case "major":
		return SeverityMajor, nil
	default:
		return SeverityMinor, fmt.Errorf("unknown severity %q", name)
	}
}

// Classify maps a metric value onto a severity. With higherIsWorse, values
// above major are MAJOR and values above regular are REGULAR; otherwise the
// comparisons are "below". Anything else is MINOR.
func Classify(value, regular, major float64, higherIsWorse bool) Severity {
	if higherIsWorse {
		if value > major {
			return SeverityMajor
		}
		if value > regular {
			return SeverityRegular
		}
		return SeverityMinor
	}
	if value < major {
		return SeverityMajor
	}
	if value < regular {
		return SeverityRegular
	}
	return SeverityMinor
}

// Thresholds is a validated pair of classification cut-offs.
type Thresholds struct {
	Regular       float64 `json:"regular"`
	Major         float64 `json:"major"`
	HigherIsWorse bool    `json:"higher_is_worse"`
}

// Validate checks that Major is at least as strict as Regular in the
// configured direction. Run it when thresholds are loaded, not per call.
func (t Thresholds) Validate() error {
	if t.HigherIsWorse && t.Major < t.Regular {
		return fmt.Errorf("major threshold %.4g must not be below regular threshold %.4g when higher is worse", t.Major, t.Regular)
	}
	if !t.HigherIsWorse && t.Major > t.Regular {
		return fmt.Errorf("major threshold %.4g must not be above regular threshold %.4g when lower is worse", t.Major, t.Regular)
	}
	return nil
}

// Classify applies the thresholds to value.
func (t Thresholds) Classify(value float64) Severity {
	return Classify(value, t.Regular, t.Major, t.HigherIsWorse)
}

// Offsets derive cast-efficiency thresholds from an ability's recommended
// efficiency: regular = recommended - Regular, major = recommended - Major.
type Offsets struct {
	Regular float64 `json:"regular"`
	Major   float64 `json:"major"`
}

// DefaultOffsets are the cut-offs used when a profile does not override them.
var DefaultOffsets = Offsets{Regular: 0.05, Major: 0.15}

// For builds the thresholds for a recommended efficiency. When higher is
// worse the offsets are added instead of subtracted.
func (o Offsets) For(recommended float64, higherIsWorse bool) Thresholds {
	if higherIsWorse {
		return Thresholds{Regular: recommended + o.Regular, Major: recommended + o.Major, HigherIsWorse: true}
	}
	return Thresholds{Regular: recommended - o.Regular, Major: recommended - o.Major}
}

// Validate checks the offsets are non-negative and ordered.
func (o Offsets) Validate() error {
	if o.Regular < 0 || o.Major < 0 {
		return fmt.Errorf("threshold offsets must be non-negative (regular %.4g, major %.4g)", o.Regular, o.Major)
	}
	if o.Major < o.Regular {
		return fmt.Errorf("major offset %.4g must not be smaller than regular offset %.4g", o.Major, o.Regular)
	}
	return nil
}
