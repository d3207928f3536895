// internal/fault/severity.go
package fault

import (
	"encoding/json"
	"fmt"
)

// Severity ranks how dangerous a fault is. Higher values are strictly worse,
// so severities compare directly with < and >.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
	SeverityCatastrophic
)

var severityNames = map[Severity]string{
	SeverityLow:          "low",
	SeverityMedium:       "medium",
	SeverityHigh:         "high",
	SeverityCritical:     "critical",
	SeverityCatastrophic: "catastrophic",
}

// Next returns the severity one step above s. The second return is false when
// s is already the ceiling: there is nothing above catastrophic, and callers
// must branch on that instead of inventing a higher level.
func (s Severity) Next() (Severity, bool) {
	if !s.Valid() || s == SeverityCatastrophic {
		return s, false
	}
	return s + 1, true
}

// Valid reports whether s is one of the five defined levels.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity converts the wire form of a severity back to its typed value.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("fault: unknown severity %q", s)
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("fault: cannot encode invalid severity %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fault: severity must be a string: %w", err)
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
