package analyzer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignoreList holds patterns from the scan root's .gitignore. Matching covers
// the common cases (literal names, directory patterns, leading/trailing
// wildcards, negation) rather than the full gitignore grammar.
type ignoreList struct {
	root     string
	patterns []string
	negated  []string
}

func loadIgnoreList(root string) *ignoreList {
	il := &ignoreList{root: root}

	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return il
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			il.negated = append(il.negated, rest)
		} else {
			il.patterns = append(il.patterns, line)
		}
	}
	return il
}

// Match reports whether the path, relative to the scan root, is ignored.
func (il *ignoreList) Match(rel string) bool {
	rel = filepath.ToSlash(rel)

	ignored := false
	for _, pattern := range il.patterns {
		if matchPattern(pattern, rel) {
			ignored = true
			break
		}
	}
	if !ignored {
		return false
	}
	for _, pattern := range il.negated {
		if matchPattern(pattern, rel) {
			return false
		}
	}
	return true
}

func matchPattern(pattern, rel string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
		for _, part := range strings.Split(rel, "/") {
			if part == dir {
				return true
			}
		}
		return false
	}

	if rooted, ok := strings.CutPrefix(pattern, "/"); ok {
		return matchComponent(rooted, rel)
	}

	if matchComponent(pattern, rel) {
		return true
	}
	parts := strings.Split(rel, "/")
	for i := range parts {
		if matchComponent(pattern, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	if !strings.Contains(pattern, "/") {
		for _, part := range parts {
			if matchComponent(pattern, part) {
				return true
			}
		}
	}
	return false
}

func matchComponent(pattern, text string) bool {
	if pattern == text {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(text, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(text, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(text, pattern[:len(pattern)-1])
	}
	return false
}
