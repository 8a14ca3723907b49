package mdv

import (
	"regexp"
	"strings"
)

var referenceDefinitionPattern = regexp.MustCompile(`(?m)^\[([^\]]+)\]:[ \t]*(\S+)`)

// ReferenceMap maps lower-cased reference labels to their targets.
type ReferenceMap map[string]string

// BuildReferences collects every [label]: target definition line in text.
// Labels are matched case-insensitively and later definitions win.
func BuildReferences(text string) ReferenceMap {
	refs := ReferenceMap{}
	for _, m := range referenceDefinitionPattern.FindAllStringSubmatch(text, -1) {
		refs[strings.ToLower(m[1])] = m[2]
	}
	return refs
}

// Resolve returns the target defined for label.
func (r ReferenceMap) Resolve(label string) (string, bool) {
	if r == nil {
		return "", false
	}
	target, ok := r[strings.ToLower(label)]
	return target, ok
}
