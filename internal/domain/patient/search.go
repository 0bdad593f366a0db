package patient

import "strings"

// FilterByName keeps the patients whose first or last name contains query,
// ignoring case. An empty query returns patients unchanged. Order is kept.
func FilterByName(patients []*Patient, query string) []*Patient {
	if query == "" {
		return patients
	}
	q := strings.ToLower(query)
	out := make([]*Patient, 0, len(patients))
	for _, p := range patients {
		if p == nil {
			continue
		}
		if strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) {
			out = append(out, p)
		}
	}
	return out
}
