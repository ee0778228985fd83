package entities

import (
	"testing"
)

func TestGlobMatcher_ExactMatch(t *testing.T) {
	m := NewGlobMatcher("static/logo.png")

	tests := []struct {
		text     string
		expected bool
	}{
		{"static/logo.png", true},
		{"static/icon.png", false},
		{"assets/logo.png", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_PrefixWildcard(t *testing.T) {
	m := NewGlobMatcher("static/*")

	tests := []struct {
		text     string
		expected bool
	}{
		{"static/", true},
		{"static/logo.png", true},
		{"static/css/app.css", true},
		{"templates/main.go.tmpl", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_SuffixWildcard(t *testing.T) {
	m := NewGlobMatcher("*.tmpl")

	tests := []struct {
		text     string
		expected bool
	}{
		{"main.go.tmpl", true},
		{"handlers.go.tmpl", true},
		{"tmpl", false}, // No dot before "tmpl"
		{"main.go", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_MiddleWildcard(t *testing.T) {
	m := NewGlobMatcher("templates/*.tmpl")

	tests := []struct {
		text     string
		expected bool
	}{
		{"templates/main.tmpl", true},
		{"templates/handlers.tmpl", true},
		{"templates/.tmpl", true},
		{"templates/main.go", false},
		{"assets/main.tmpl", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_MultipleWildcards(t *testing.T) {
	m := NewGlobMatcher("*static*")

	tests := []struct {
		text     string
		expected bool
	}{
		{"assets/static/logo.png", true},
		{"static", true}, // minimal match
		{"css/theme.css", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_MatchAll(t *testing.T) {
	m := NewGlobMatcher("*")

	tests := []string{
		"static/logo.png",
		"main.go.tmpl",
		"",
		"hooks/pre.sh",
	}

	for _, text := range tests {
		if !m.Match(text) {
			t.Errorf("Match(%q) = false, want true (should match everything)", text)
		}
	}
}

func TestGlobMatcher_SingleCharWildcard(t *testing.T) {
	m := NewGlobMatcher("icon-?.svg")

	tests := []struct {
		text     string
		expected bool
	}{
		{"icon-1.svg", true},
		{"icon-a.svg", true},
		{"icon-x.svg", true},
		{"icon-10.svg", false},
		{"icon-.svg", false},
		{"icon.svg", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_MixedWildcards(t *testing.T) {
	m := NewGlobMatcher("icon-?-*.svg")

	tests := []struct {
		text     string
		expected bool
	}{
		{"icon-1-small.svg", true},
		{"icon-a-large.svg", true},
		{"icon-x-.svg", true},
		{"icon-10-small.svg", false}, // ? matches single char
		{"icon-small.svg", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestGlobMatcher_EdgeCases(t *testing.T) {
	tests := []struct {
		pattern  string
		text     string
		expected bool
	}{
		{"", "", true},           // empty matches empty
		{"", "text", false},      // empty doesn't match non-empty
		{"text", "", false},      // non-empty doesn't match empty
		{"**", "anything", true}, // multiple wildcards
		{"*a*b*", "aXb", true},   // overlapping wildcards
		{"*a*b*", "ab", true},    // consecutive letters
		{"*a*b*", "ba", false},   // wrong order
	}

	for _, tt := range tests {
		m := NewGlobMatcher(tt.pattern)
		if got := m.Match(tt.text); got != tt.expected {
			t.Errorf("NewGlobMatcher(%q).Match(%q) = %v, want %v",
				tt.pattern, tt.text, got, tt.expected)
		}
	}
}
