// Package catalog holds the course/professor/section identities that the
// search graph resolves to, and the rules for spelling them as search strings.
package catalog

import "strings"

// Record identifies a course, a professor, a section, or any combination of them.
// An empty field means the field is absent.
type Record struct {
	Prefix        string `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
	Number        string `json:"number,omitempty" msgpack:"number,omitempty"`
	ProfessorName string `json:"professorName,omitempty" msgpack:"professorName,omitempty"`
	SectionNumber string `json:"sectionNumber,omitempty" msgpack:"sectionNumber,omitempty"`
}

// IsZero reports whether no field is present.
func (r Record) IsZero() bool {
	return r == Record{}
}

// Equal is exact field-wise equality. A field present on one side and
// absent on the other is a mismatch.
func Equal(a, b Record) bool {
	return a == b
}

// Label joins the present fields in canonical order: prefix, number,
// .section, professor. Number and section share a token ("1200.001");
// everything else is separated by a single space.
func Label(r Record) string {
	var sb strings.Builder
	if r.Prefix != "" {
		sb.WriteString(r.Prefix)
	}
	if r.Number != "" {
		sb.WriteByte(' ')
		sb.WriteString(r.Number)
	}
	if r.SectionNumber != "" {
		if r.Number != "" {
			sb.WriteByte('.')
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.SectionNumber)
	}
	if r.ProfessorName != "" {
		sb.WriteByte(' ')
		sb.WriteString(r.ProfessorName)
	}
	return strings.TrimSpace(sb.String())
}

// CompactKey is the unspaced course spelling the corpus indexes: "CS1200",
// or "CS1200.001" when a section is present. Empty when the record has no
// prefix or number.
func CompactKey(r Record) string {
	if r.Prefix == "" || r.Number == "" {
		return ""
	}
	key := r.Prefix + r.Number
	if r.SectionNumber != "" {
		key += "." + r.SectionNumber
	}
	return key
}

// SearchKeys lists every uppercased spelling under which r is indexed.
// Keys are unique and in a fixed order.
func SearchKeys(r Record) []string {
	if r.IsZero() {
		return nil
	}

	var keys []string
	seen := make(map[string]struct{}, 4)
	add := func(k string) {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	compact := CompactKey(r)
	switch {
	case compact != "" && r.ProfessorName != "":
		add(compact + " " + r.ProfessorName)
		add(r.ProfessorName + " " + compact)
	case compact != "":
		add(compact)
	}
	add(Label(r))
	return keys
}

// Dedupe drops later occurrences of records equal to an earlier one,
// preserving order.
func Dedupe(records []Record) []Record {
	if len(records) < 2 {
		return records
	}
	seen := make(map[Record]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Exclude returns records without any entry equal to self.
func Exclude(records []Record, self Record) []Record {
	out := records[:0:0]
	for _, r := range records {
		if Equal(r, self) {
			continue
		}
		out = append(out, r)
	}
	return out
}
