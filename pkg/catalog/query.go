package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidQuery is matched by every *InvalidQueryError via errors.Is.
var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError reports a request that carries neither free text nor a
// usable field combination, or a limit that is absent or not a positive number.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Query parameter names, shared by the HTTP surface and the CLI.
const (
	ParamInput         = "input"
	ParamPrefix        = "prefix"
	ParamNumber        = "number"
	ParamProfessorName = "professorName"
	ParamSectionNumber = "sectionNumber"
	ParamLimit         = "limit"
)

// Query is a parsed lookup: either free text (Raw) or a structured field set.
type Query struct {
	Raw    bool
	Input  string
	Fields Record
	Limit  int
}

// ParseValues reads a Query from request parameters. Free text wins when
// present; otherwise at least one field and a positive numeric limit are required.
func ParseValues(v url.Values) (Query, error) {
	if v.Has(ParamInput) {
		return Query{Raw: true, Input: v.Get(ParamInput)}, nil
	}

	fields := Record{
		Prefix:        strings.TrimSpace(v.Get(ParamPrefix)),
		Number:        strings.TrimSpace(v.Get(ParamNumber)),
		ProfessorName: strings.TrimSpace(v.Get(ParamProfessorName)),
		SectionNumber: strings.TrimSpace(v.Get(ParamSectionNumber)),
	}
	if fields.IsZero() {
		return Query{}, &InvalidQueryError{Reason: "no input or field parameters"}
	}
	if !v.Has(ParamLimit) {
		return Query{}, &InvalidQueryError{Reason: "missing limit"}
	}
	limit, err := ParseLimit(v.Get(ParamLimit))
	if err != nil {
		return Query{}, err
	}
	return Query{Fields: fields, Limit: limit}, nil
}

// ParseLimit parses a positive integer result limit.
func ParseLimit(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &InvalidQueryError{Reason: fmt.Sprintf("limit %q is not a number", s)}
	}
	if n < 1 {
		return 0, &InvalidQueryError{Reason: fmt.Sprintf("limit must be positive, got %d", n)}
	}
	return n, nil
}
