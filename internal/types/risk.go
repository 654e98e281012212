package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel orders risks by severity: Info < Warning < Critical.
type RiskLevel int

const (
	RiskInfo RiskLevel = iota
	RiskWarning
	RiskCritical
)

func (l RiskLevel) String() string {
	switch l {
	case RiskInfo:
		return "Info"
	case RiskWarning:
		return "Warning"
	case RiskCritical:
		return "Critical"
	default:
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
}

// ParseRiskLevel is the inverse of String, case-insensitive.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(s) {
	case "info":
		return RiskInfo, nil
	case "warning":
		return RiskWarning, nil
	case "critical":
		return RiskCritical, nil
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}

func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Risk is a domain finding over the canonical model.
type Risk struct {
	// ID is a stable slug; per-entry rules append the 0-based entry index.
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
	Mitigation  string    `json:"mitigation"`
}
