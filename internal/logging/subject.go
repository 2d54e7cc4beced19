package logging

import "strings"

// FormatSubject builds the component/app/format prefix used in console output.
func FormatSubject(component, app, format string) string {
	component = strings.TrimSpace(component)
	app = strings.TrimSpace(app)
	format = strings.ToUpper(strings.TrimSpace(format))
	parts := make([]string, 0, 2)
	if component != "" {
		parts = append(parts, component)
	}
	switch {
	case app != "" && format != "":
		parts = append(parts, app+" ("+format+")")
	case app != "":
		parts = append(parts, app)
	case format != "":
		parts = append(parts, format)
	}
	return strings.Join(parts, " · ")
}
