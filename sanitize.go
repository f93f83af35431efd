package trailpack

import (
	"regexp"
	"strings"
)

// Naming patterns shared by package and resource names.
var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9\-_.]+$`)
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9\-.]+)?$`)
)

// ValidResourceName reports whether name matches the resource slug pattern.
func ValidResourceName(name string) bool {
	return name != "" && slugPattern.MatchString(name)
}

// ValidPackageName reports whether name matches the package name rules:
// the slug pattern plus no leading or trailing dot.
func ValidPackageName(name string) bool {
	if !ValidResourceName(name) {
		return false
	}
	return !strings.HasPrefix(name, ".") && !strings.HasSuffix(name, ".")
}

// SanitizeResourceName derives a valid slug from an arbitrary name:
// lowercase, whitespace to underscores, disallowed characters dropped,
// separator runs collapsed and trimmed. The result may be empty when the
// input contains no usable characters.
func SanitizeResourceName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		}
	}
	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "-_.")
}

// ValidateAndSanitizeResourceName checks name against the slug pattern and,
// on mismatch, computes a sanitized suggestion. It never renames on its own:
// with autoFix false the original name is returned alongside the suggestion,
// with autoFix true the suggestion is applied. The suggestion is empty for
// names that are already valid.
func ValidateAndSanitizeResourceName(name string, autoFix bool) (ok bool, result string, suggestion string) {
	if ValidResourceName(name) {
		return true, name, ""
	}
	suggestion = SanitizeResourceName(name)
	if autoFix && suggestion != "" {
		return false, suggestion, suggestion
	}
	return false, name, suggestion
}
