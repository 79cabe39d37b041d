package covergen

import (
	"strings"
	"testing"

	"coverstudio/internal/domain"
)

func TestBuildPromptBirthdayScenario(t *testing.T) {
	req := domain.CoverRequest{
		Occasion:    "Birthday",
		Vibe:        "Fun",
		Style:       "Illustration",
		Colors:      []string{"Pink", "Gold"},
		IncludeText: domain.Bool(true),
		EventTitle:  "Sam's Party",
	}
	lines := strings.Split(BuildPrompt(req), "\n")

	want := []string{
		"Create a premium square cover image for an event invite.",
		"Occasion: Birthday",
		"Vibe: Fun",
		"Style: Illustration",
		"Dominant colors: Pink, Gold",
		`Include the text "Sam's Party" in a tasteful way.`,
		"Keep text legible and integrated with the design.",
		"Design should feel premium and invite-worthy.",
		PromptClosing,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestBuildPromptFullOrder(t *testing.T) {
	req := domain.CoverRequest{
		EventTitle:   "Gala",
		Description:  "  black tie dinner  ",
		Occasion:     "Gala",
		Vibe:         "Elegant",
		Style:        "Photo",
		Colors:       []string{"Black", "", "Gold"},
		Layout:       "Centered",
		Lighting:     "Candlelight",
		Texture:      "Matte",
		Typography:   "Serif",
		ExtraDetails: "chandeliers",
	}
	got := BuildPrompt(req)
	order := []string{
		"Occasion: Gala",
		"Vibe: Elegant",
		"Style: Photo",
		"Dominant colors: Black, Gold",
		"Layout/composition: Centered",
		"Lighting: Candlelight",
		"Texture/finish: Matte",
		"User description (max 100 chars): black tie dinner",
		`Include the text "Gala" in a tasteful way.`,
		"Typography direction: Serif",
		"Keep text legible and integrated with the design.",
		"Extra details: chandeliers",
		"Design should feel premium and invite-worthy.",
	}
	last := -1
	for _, line := range order {
		idx := strings.Index(got, line+"\n")
		if idx < 0 {
			t.Fatalf("missing line %q in:\n%s", line, got)
		}
		if idx <= last {
			t.Fatalf("line %q out of order", line)
		}
		last = idx
	}
	if !strings.HasSuffix(got, "\n"+PromptClosing) {
		t.Fatalf("prompt must end with the closing directive:\n%s", got)
	}
}

func TestBuildPromptOmitsEmptyAttributes(t *testing.T) {
	got := BuildPrompt(domain.CoverRequest{Occasion: "Wedding", Vibe: "Calm", Style: "Watercolor", Layout: "   "})
	for _, prefix := range []string{"Dominant colors:", "Layout/composition:", "Lighting:", "Texture/finish:", "User description", "Typography direction:", "Extra details:"} {
		if strings.Contains(got, prefix) {
			t.Fatalf("unexpected %q in:\n%s", prefix, got)
		}
	}
	if !strings.Contains(got, `Include the text "Untitled Event" in a tasteful way.`) {
		t.Fatalf("default title missing:\n%s", got)
	}
}

func TestBuildPromptWithoutText(t *testing.T) {
	for name, req := range map[string]domain.CoverRequest{
		"flag off": {Occasion: "A", Vibe: "B", Style: "C", IncludeText: domain.Bool(false), Typography: "Serif"},
		"no text":  {Occasion: "A", Vibe: "B", Style: "C", Typography: "NO TEXT"},
	} {
		t.Run(name, func(t *testing.T) {
			got := BuildPrompt(req)
			if !strings.Contains(got, "\nDo not include any text.\n") {
				t.Fatalf("missing no-text directive:\n%s", got)
			}
			if strings.Contains(got, "Include the text") || strings.Contains(got, "Typography direction") {
				t.Fatalf("text directives must be absent:\n%s", got)
			}
		})
	}
}

func TestBuildPromptCapsColors(t *testing.T) {
	got := BuildPrompt(domain.CoverRequest{
		Occasion: "A", Vibe: "B", Style: "C",
		Colors: []string{"1", "2", "3", "4", "5", "6", "7"},
	})
	if !strings.Contains(got, "Dominant colors: 1, 2, 3, 4, 5\n") {
		t.Fatalf("colours not capped at five:\n%s", got)
	}
}
