package chart

import "strings"

// Default point color for treatments that match no rule
const DefaultTreatmentColor = "#6b7280"

// colorRule maps a treatment keyword to a display color. Rules are
// checked in slice order and the first substring match wins, so more
// specific keywords must come before generic ones ("Formless Foil"
// has to hit the formless rule, not the foil rule).
type colorRule struct {
	keyword string
	color   string
}

var treatmentColors = []colorRule{
	{"formless", "#a855f7"},
	{"serialized", "#f59e0b"},
	{"foil", "#3b82f6"},
	{"borderless", "#10b981"},
}

// TreatmentColor resolves a treatment string to its display color
// using case-insensitive substring matching in fixed rule order.
func TreatmentColor(treatment string) string {
	t := strings.ToLower(treatment)
	for _, rule := range treatmentColors {
		if strings.Contains(t, rule.keyword) {
			return rule.color
		}
	}
	return DefaultTreatmentColor
}
