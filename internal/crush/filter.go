package crush

import "strings"

// Filter narrows already-loaded candidates. All comparisons are
// case-insensitive substring matches; an empty field is no constraint.
//
// Query matches name, class or batch. Name, Class and Batch each must
// match their own field.
type Filter struct {
	Query string
	Name  string
	Class string
	Batch string
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Class) == "" &&
		strings.TrimSpace(f.Batch) == ""
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Profile) bool {
	if q := norm(f.Query); q != "" {
		if !contains(p.Name, q) && !contains(p.Class, q) && !contains(p.Batch, q) {
			return false
		}
	}
	if n := norm(f.Name); n != "" && !contains(p.Name, n) {
		return false
	}
	if c := norm(f.Class); c != "" && !contains(p.Class, c) {
		return false
	}
	if b := norm(f.Batch); b != "" && !contains(p.Batch, b) {
		return false
	}
	return true
}

// Apply returns the candidates that pass the filter, preserving order.
func (f Filter) Apply(in []Candidate) []Candidate {
	if f.IsZero() {
		return in
	}
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if f.Match(c.Profile) {
			out = append(out, c)
		}
	}
	return out
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains(field, needle string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), needle)
}
