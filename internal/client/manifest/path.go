package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	unsafeRune = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// normalizeName flattens a declared file name into a single safe path segment.
func normalizeName(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/")

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	s = strings.Join(segments, "-")
	s = whitespace.ReplaceAllString(s, "-")
	s = unsafeRune.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// StablePath returns the manifest path for the file at the zero-based
// position index and records it in seen. The result is unique within seen.
func StablePath(name string, index int, seen map[string]struct{}) string {
	fallback := fmt.Sprintf("file-%d", index+1)
	if name == "" {
		name = fallback
	}

	normalized := normalizeName(name)
	if normalized == "" {
		normalized = fallback
	}

	return dedupe(fmt.Sprintf("%03d-%s", index+1, normalized), seen)
}

func dedupe(path string, seen map[string]struct{}) string {
	candidate := path
	for suffix := 2; ; suffix++ {
		if _, taken := seen[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d", path, suffix)
	}

	seen[candidate] = struct{}{}
	return candidate
}
