package manifest

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Result is the outcome of checking one manifest.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Issue is one schema violation.
type Issue struct {
	Path    string // JSON pointer into the manifest, e.g. "/metadata/name"
	Message string
	Keyword string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Validate checks a rendered YAML manifest. Schema violations are reported
// in the Result; the error is for input that cannot be checked at all.
func Validate(data []byte) (*Result, error) {
	s, err := schema()
	if err != nil {
		return nil, err
	}
	inst, err := decode(data)
	if err != nil {
		return nil, err
	}

	err = s.Validate(inst)
	if err == nil {
		return &Result{Valid: true}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	issues := leafIssues(verr, nil)
	if len(issues) == 0 {
		issues = []Issue{{Message: verr.Error()}}
	}
	return &Result{Issues: uniqueIssues(issues)}, nil
}

// ValidateFile validates the manifest stored at path.
func ValidateFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// decode turns YAML into the generic JSON value the schema library
// validates, going through encoding/json so numbers become json.Number.
func decode(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	raw, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("converting manifest to JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

// stringKeys rewrites map[any]any (non-string YAML keys) into
// map[string]any so the value can be marshalled as JSON.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = stringKeys(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = stringKeys(e)
		}
		return v
	}
	return v
}

// Keywords that only group nested failures.
var groupingKeywords = map[string]bool{"": true, "$ref": true, "allOf": true, "oneOf": true, "then": true}

func leafIssues(verr *jsonschema.ValidationError, acc []Issue) []Issue {
	if len(verr.Causes) > 0 {
		for _, c := range verr.Causes {
			acc = leafIssues(c, acc)
		}
		return acc
	}
	if verr.ErrorKind == nil {
		return acc
	}
	var keyword string
	if kp := verr.ErrorKind.KeywordPath(); len(kp) > 0 {
		keyword = kp[len(kp)-1]
	}
	if groupingKeywords[keyword] {
		return acc
	}
	var path string
	if len(verr.InstanceLocation) > 0 {
		path = "/" + strings.Join(verr.InstanceLocation, "/")
	}
	return append(acc, Issue{Path: path, Keyword: keyword, Message: verr.ErrorKind.LocalizedString(printer)})
}

// uniqueIssues sorts issues by path and drops exact repeats.
func uniqueIssues(issues []Issue) []Issue {
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Keyword, b.Keyword), cmp.Compare(a.Message, b.Message))
	})
	return slices.Compact(issues)
}
