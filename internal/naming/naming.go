package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Template variable keys populated from a Variants set.
const (
	KeyPascal     = "SERVICE_NAME"
	KeyCamel      = "service_name"
	KeySnake      = "service_snake"
	KeyUpperSnake = "SERVICE_SNAKE"
	KeyPackage    = "PACKAGE_NAME"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Variants holds every naming convention derived from one service name.
// It is created once per invocation and never mutated.
type Variants struct {
	Name       string // verbatim input, used for paths
	Pascal     string // e.g., "OrderBook"
	Camel      string // e.g., "orderBook"
	Snake      string // e.g., "order_book"
	UpperSnake string // e.g., "ORDER_BOOK"
	Package    string // protocol package name, equal to Snake
}

// ValidationError reports a service name that cannot be used.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid service name %q: %s", e.Name, e.Reason)
}

// Validate rejects empty names and anything that could escape the services
// directory once joined into a path.
func Validate(name string) error {
	if name == "" {
		return &ValidationError{Name: name, Reason: "name is required"}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`+"\x00") {
		return &ValidationError{Name: name, Reason: "path separators and '..' are not allowed"}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{Name: name, Reason: "must match pattern [A-Za-z][A-Za-z0-9_-]*"}
	}
	return nil
}

// Derive computes the naming variants for name. Only the first rune is
// re-cased; the remainder is kept verbatim, so "order-book" stays hyphenated.
// For names accepted by Validate, Snake == strings.ToLower(UpperSnake). That
// does not hold for runes whose case mapping does not round-trip ('ı', 'ſ'),
// which Validate rejects.
func Derive(name string) Variants {
	pascal := upperFirst(name)
	snake := toSnake(pascal)
	return Variants{
		Name:       name,
		Pascal:     pascal,
		Camel:      lowerFirst(pascal),
		Snake:      snake,
		UpperSnake: strings.ToUpper(snake),
		Package:    snake,
	}
}

// Vars returns the template variable mapping for v.
func (v Variants) Vars() map[string]string {
	return map[string]string{
		KeyPascal:     v.Pascal,
		KeyCamel:      v.Camel,
		KeySnake:      v.Snake,
		KeyUpperSnake: v.UpperSnake,
		KeyPackage:    v.Package,
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// toSnake inserts '_' before every upper-case rune except the first, then
// lower-cases the result.
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
