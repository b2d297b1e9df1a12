package model

import (
	"encoding/json"
	"fmt"
)

// Severity is the overall severity of a scan.
type Severity int

const (
	// SeverityLow means no or only minor barriers were detected.
	SeverityLow Severity = iota
	// SeverityMedium means barriers likely block some users.
	SeverityMedium
)

// String returns "Low" or "Medium".
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the severity by name for stable report fields.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity returns the severity named name.
func ParseSeverity(name string) (Severity, error) {
	for _, v := range []Severity{SeverityLow, SeverityMedium} {
		if v.String() == name {
			return v, nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", name)
}

// Effort is the estimated remediation effort.
type Effort int

const (
	// EffortEasy is a quick fix.
	EffortEasy Effort = iota
	// EffortModerate needs template or component changes.
	EffortModerate
)

// String returns "Easy" or "Moderate".
func (e Effort) String() string {
	switch e {
	case EffortEasy:
		return "Easy"
	case EffortModerate:
		return "Moderate"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the effort by name.
func (e Effort) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON decodes an effort name.
func (e *Effort) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, v := range []Effort{EffortEasy, EffortModerate} {
		if v.String() == name {
			*e = v
			return nil
		}
	}
	return fmt.Errorf("unknown effort %q", name)
}

// Assessment is the severity/effort classification of a scan.
type Assessment struct {
	Severity  Severity `json:"severity"`
	Effort    Effort   `json:"effort"`
	Rationale string   `json:"rationale"`
}
