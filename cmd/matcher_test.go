package cmd

import "testing"

func newTestMatcher(t *testing.T, keyword, command string) *Matcher {
	t.Helper()
	cfg := NewCommandConfig(&Definition{Keyword: keyword, Command: command}, nil)
	m := newMatcher(cfg)
	if m == nil {
		t.Fatalf("newMatcher(%q) returned nil", keyword)
	}
	return m
}

func TestMatcherExactKeyword(t *testing.T) {
	m := newTestMatcher(t, "snap", "img2sixel /dev/video0")
	args := m.build([]string{"snap"})
	if len(args) != 2 || args[0] != "img2sixel" || args[1] != "/dev/video0" {
		t.Fatalf("got %v, want [img2sixel /dev/video0]", args)
	}
}

func TestMatcherRejectsNonMatchingKeyword(t *testing.T) {
	m := newTestMatcher(t, "snap", "img2sixel /dev/video0")
	if args := m.build([]string{"other"}); args != nil {
		t.Fatalf("expected no match, got %v", args)
	}
}

func TestMatcherWildcardSubstitution(t *testing.T) {
	m := newTestMatcher(t, "snap *", "img2sixel -o - *.ppm")
	args := m.build([]string{"snap", "camera1"})
	if len(args) != 4 || args[3] != "camera1.ppm" {
		t.Fatalf("got %v, want [img2sixel -o - camera1.ppm]", args)
	}
}

func TestMatcherWildcardEscapesShellMetacharacters(t *testing.T) {
	m := newTestMatcher(t, "snap *", "echo *")
	args := m.build([]string{"snap", "a;rm -rf /"})
	// shellwords が結果を再パースするので、エスケープされていれば
	// ワイルドカード全体が単一の引数として戻る。
	if len(args) != 2 || args[1] != "a;rm -rf /" {
		t.Fatalf("wildcard was not safely round-tripped through shell escaping: %v", args)
	}
}

func TestMatcherWildcardConsumesTrailingWords(t *testing.T) {
	m := newTestMatcher(t, "snap *", "img2sixel *")
	args := m.build([]string{"snap", "camera1", "extra", "words"})
	if len(args) != 2 || args[1] != "camera1 extra words" {
		t.Fatalf("got %v, want wildcard to absorb all trailing words", args)
	}
}

func TestMatcherTooFewKeywordsNeverMatches(t *testing.T) {
	m := newTestMatcher(t, "snap camera", "img2sixel")
	if args := m.build([]string{"snap"}); args != nil {
		t.Fatalf("expected no match with too few keywords, got %v", args)
	}
}
