package schema

import (
	"strings"
	"sync"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer derives table and column names for struct-tag registration
type Namer interface {
	TableName(typeName string) string
	ColumnName(table, field string) string
}

// NamingStrategy snake_cases names, pluralizing tables unless SingularTable
type NamingStrategy struct {
	TablePrefix   string
	SingularTable bool
}

func (ns NamingStrategy) TableName(typeName string) string {
	name := toDBName(typeName)
	if !ns.SingularTable {
		name = inflection.Plural(name)
	}
	return ns.TablePrefix + name
}

func (ns NamingStrategy) ColumnName(table, field string) string {
	return toDBName(field)
}

var (
	dbNames sync.Map

	// initialisms are title cased before splitting so "UserID" reads as "UserId"
	initialisms = newInitialismReplacer("API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP",
		"HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SKU", "SLA", "SMTP", "SQL", "SSH",
		"TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS")
)

func newInitialismReplacer(words ...string) *strings.Replacer {
	title := cases.Title(language.Und)
	pairs := make([]string, 0, len(words)*2)
	for _, word := range words {
		pairs = append(pairs, word, title.String(word))
	}
	return strings.NewReplacer(pairs...)
}

// toDBName converts a Go identifier to snake_case
func toDBName(name string) string {
	if name == "" {
		return ""
	}
	if v, ok := dbNames.Load(name); ok {
		return v.(string)
	}

	runes := []rune(initialisms.Replace(name))
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && startsWord(runes, i) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	result := b.String()
	dbNames.Store(name, result)
	return result
}

// startsWord reports whether the upper case rune at i begins a new word:
// after a lower case letter or digit, or as the last capital of an acronym
// followed by lower case ("PFAnd").
func startsWord(runes []rune, i int) bool {
	prev := runes[i-1]
	switch {
	case prev == '_':
		return false
	case unicode.IsLower(prev), unicode.IsDigit(prev):
		return true
	}
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
