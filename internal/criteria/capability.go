package criteria

import "strings"

// DefaultIcon is shown for categories with no registered glyph.
const DefaultIcon = "🤖"

var capabilityIcons = map[string]string{
	"research":     "🔬",
	"thinking":     "💡",
	"debate":       "🗣️",
	"analysis":     "🔍",
	"execution":    "🤖",
	"verification": "✅",
	"models":       "⚡",
	"composition":  "🧩",
}

// Category returns the part of a capability before the first dot.
func Category(capability string) string {
	if i := strings.Index(capability, "."); i >= 0 {
		return capability[:i]
	}
	return capability
}

// IconFor maps a capability to its category glyph.
func IconFor(capability string) string {
	if icon, ok := capabilityIcons[Category(capability)]; ok {
		return icon
	}
	return DefaultIcon
}
