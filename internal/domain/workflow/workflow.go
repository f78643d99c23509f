// Package workflow post-processes generated CI workflow text.
package workflow

import (
	"fmt"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"gopkg.in/yaml.v3"
)

// StripFences removes a surrounding markdown code fence (``` or ```yaml) and
// trims whitespace. Text without a fence is only trimmed.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CheckPrefix reports ErrMalformedOutput unless the workflow starts with "name:".
func CheckPrefix(yamlText string) error {
	if !strings.HasPrefix(yamlText, "name:") {
		return fmt.Errorf("generated workflow does not start with \"name:\": %w", domain.ErrMalformedOutput)
	}
	return nil
}

// Validate checks the prefix and, when strict, parses the document and
// requires the top-level "on" and "jobs" keys.
func Validate(yamlText string, strict bool) error {
	if err := CheckPrefix(yamlText); err != nil {
		return err
	}
	if !strict {
		return nil
	}

	// "on" is kept as a string key by decoding into yaml.Node.
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &doc); err != nil {
		return fmt.Errorf("parsing generated workflow: %v: %w", err, domain.ErrMalformedOutput)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("generated workflow is not a mapping: %w", domain.ErrMalformedOutput)
	}
	keys := map[string]bool{}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys[root.Content[i].Value] = true
	}
	for _, k := range []string{"on", "jobs"} {
		if !keys[k] {
			return fmt.Errorf("generated workflow has no %q key: %w", k, domain.ErrMalformedOutput)
		}
	}
	return nil
}

// Normalize strips fences and validates the result.
func Normalize(text string, strict bool) (string, error) {
	out := StripFences(text)
	if err := Validate(out, strict); err != nil {
		return "", err
	}
	return out, nil
}
