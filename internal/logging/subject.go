package logging

import "strings"

// FormatSubject builds the service/item/stage subject string used in console output.
func FormatSubject(service, itemKey, stage string) string {
	service = strings.TrimSpace(service)
	itemKey = strings.TrimSpace(itemKey)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	if service != "" {
		parts = append(parts, strings.ToUpper(service))
	}
	switch {
	case itemKey != "" && stage != "":
		parts = append(parts, itemKey+" ("+stage+")")
	case itemKey != "":
		parts = append(parts, itemKey)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
