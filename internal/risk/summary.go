package risk

import (
	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// Summary counts risks per level.
type Summary struct {
	Info     int `json:"info"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Total returns the number of risks counted.
func (s Summary) Total() int {
	return s.Info + s.Warning + s.Critical
}

// Summarize counts the risks of each level.
func Summarize(risks []types.Risk) Summary {
	var s Summary
	for _, r := range risks {
		switch r.Level {
		case types.RiskInfo:
			s.Info++
		case types.RiskWarning:
			s.Warning++
		case types.RiskCritical:
			s.Critical++
		}
	}
	return s
}

// Highest returns the most severe level present. ok is false for an empty
// list.
func Highest(risks []types.Risk) (level types.RiskLevel, ok bool) {
	for i, r := range risks {
		if i == 0 || r.Level > level {
			level = r.Level
		}
	}
	return level, len(risks) > 0
}
