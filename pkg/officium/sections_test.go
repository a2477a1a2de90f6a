package officium

import (
	"strings"
	"testing"
)

func TestParseSections_GuardedDuplicate(t *testing.T) {
	files := stubReader{
		"Latin": {
			"Sancti/01-01.txt": "[Rank]\nDuplex\n[Rank](xyz-never-true)\nAlternate\n",
		},
	}
	r := newTestResolver(t, files, nil)

	sections, found, err := r.Resolve("Latin", "Sancti/01-01.txt", ResolveNone)
	if err != nil || !found {
		t.Fatalf("resolve failed: found=%v err=%v", found, err)
	}
	if got := strings.TrimSpace(sections["Rank"]); got != "Duplex" {
		t.Errorf("falsely guarded duplicate must stay invisible: got %q", got)
	}
	if _, ok := sections["Rank"]; !ok {
		t.Error("section Rank missing entirely")
	}
}

func TestParseSections_TrueGuardWins(t *testing.T) {
	files := stubReader{
		"Latin": {
			"Sancti/01-01.txt": "[Oratio]\nFirst\n[Oratio](tempore Adventus)\nSecond\n",
		},
	}
	r := newTestResolver(t, files, nil)

	sections, _, err := r.Resolve("Latin", "Sancti/01-01.txt", ResolveNone)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := strings.TrimSpace(sections["Oratio"]); got != "Second" {
		t.Errorf("later true-guarded occurrence should win: got %q", got)
	}
}

func TestParseSections_PreambleAndNames(t *testing.T) {
	files := stubReader{
		"Latin": {
			"Sancti/01-01.txt": "@Commune/C10\n[Ant Vespera 1]\nMagnum\n[Responsory #2, Short: a-b]\nBody\n",
		},
	}
	r := newTestResolver(t, files, nil)

	sections, _, err := r.Resolve("Latin", "Sancti/01-01.txt", ResolveNone)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if sections[PreambleSection] != "@Commune/C10\n" {
		t.Errorf("pre-header lines belong to the preamble: got %q", sections[PreambleSection])
	}
	if strings.TrimSpace(sections["Ant Vespera 1"]) != "Magnum" {
		t.Errorf("unexpected body for spaced section name: %q", sections["Ant Vespera 1"])
	}
	if strings.TrimSpace(sections["Responsory #2, Short: a-b"]) != "Body" {
		t.Errorf("punctuated section name not parsed: %v", sections)
	}
}

func TestParseSections_EmptySection(t *testing.T) {
	files := stubReader{
		"Latin": {
			"Sancti/01-01.txt": "[Empty]\n[Next]\nText\n",
		},
	}
	r := newTestResolver(t, files, nil)

	sections, _, err := r.Resolve("Latin", "Sancti/01-01.txt", ResolveNone)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	body, ok := sections["Empty"]
	if !ok {
		t.Fatal("empty section should still be present")
	}
	if body != "" {
		t.Errorf("empty section body should be the empty string, got %q", body)
	}
}
