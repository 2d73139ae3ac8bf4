package ai

import "strings"

// DedupeStack removes case-insensitive duplicates from a tech-stack list,
// keeping the first spelling seen. Unknown technologies are kept verbatim.
func DedupeStack(stack []string) []string {
	if len(stack) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(stack))
	result := make([]string, 0, len(stack))
	for _, tech := range stack {
		tech = strings.TrimSpace(tech)
		if tech == "" {
			continue
		}
		key := strings.ToLower(tech)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, tech)
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
