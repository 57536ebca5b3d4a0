package schema

import (
	"regexp"
	"strings"
)

// Constraint markers recognized in column constraint text
const (
	PrimaryKey    = "PRIMARY KEY"
	AutoIncrement = "AUTO_INCREMENT"
	NotNull       = "NOT NULL"
	Unique        = "UNIQUE"
)

// DefaultTo renders a DEFAULT marker with a literal SQL value
func DefaultTo(literal string) string {
	return "DEFAULT " + literal
}

// Constraint joins markers into constraint text
func Constraint(markers ...string) string {
	return strings.Join(markers, " ")
}

// Constraints is the structured form of a column's constraint text.
// Flags are found by marker search, so a marker inside a quoted DEFAULT
// literal (DEFAULT 'NOT NULL') is also reported.
type Constraints struct {
	PrimaryKey      bool
	AutoIncrement   bool
	NotNull         bool
	Unique          bool
	HasDefaultValue bool
	DefaultValue    string
}

var (
	autoIncrementRe = regexp.MustCompile(`(?i)AUTO_INCREMENT`)
	defaultRe       = regexp.MustCompile(`(?i)\bDEFAULT\s+('(?:[^']|'')*'|\((?:[^()]|\([^()]*\))*\)|[^\s,]+)`)
)

// ParseConstraints extracts the structured flags from constraint text
func ParseConstraints(raw string) Constraints {
	upper := strings.ToUpper(raw)
	c := Constraints{
		PrimaryKey:    strings.Contains(upper, PrimaryKey),
		AutoIncrement: strings.Contains(upper, AutoIncrement),
		NotNull:       strings.Contains(upper, NotNull) || strings.Contains(upper, "NOT_NULL"),
		Unique:        strings.Contains(upper, Unique),
	}

	if m := defaultRe.FindStringSubmatch(raw); m != nil {
		c.HasDefaultValue = true
		c.DefaultValue = m[1]
	} else if strings.Contains(upper, "DEFAULT") {
		c.HasDefaultValue = true
	}
	return c
}

// CleanConstraint turns list separators into spaces, expands the NOT_NULL
// marker and rewrites the first AUTO_INCREMENT to the backend modifier,
// dropping it when modifier is empty.
func CleanConstraint(raw, modifier string) string {
	cleaned := strings.ReplaceAll(raw, ",", " ")
	cleaned = strings.ReplaceAll(cleaned, "NOT_NULL", NotNull)

	if loc := autoIncrementRe.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[:loc[0]] + modifier + cleaned[loc[1]:]
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
