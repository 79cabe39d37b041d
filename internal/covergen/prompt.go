package covergen

import (
	"fmt"
	"strings"

	"coverstudio/internal/domain"
)

const (
	promptOpening = "Create a premium square cover image for an event invite."
	promptInvite  = "Design should feel premium and invite-worthy."
	// PromptClosing is always the last line of a built prompt.
	PromptClosing = "High quality, modern, visually striking. No watermarks, no logos, no brand names."
)

// BuildPrompt turns a validated cover request into the instruction sent to the
// image provider. One line per populated attribute, in a fixed order.
func BuildPrompt(req domain.CoverRequest) string {
	lines := []string{promptOpening}

	lines = append(lines,
		"Occasion: "+strings.TrimSpace(req.Occasion),
		"Vibe: "+strings.TrimSpace(req.Vibe),
		"Style: "+strings.TrimSpace(req.Style),
	)

	if colors := req.DominantColors(); len(colors) > 0 {
		lines = append(lines, "Dominant colors: "+strings.Join(colors, ", "))
	}
	if layout := strings.TrimSpace(req.Layout); layout != "" {
		lines = append(lines, "Layout/composition: "+layout)
	}
	if lighting := strings.TrimSpace(req.Lighting); lighting != "" {
		lines = append(lines, "Lighting: "+lighting)
	}
	if texture := strings.TrimSpace(req.Texture); texture != "" {
		lines = append(lines, "Texture/finish: "+texture)
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		lines = append(lines, "User description (max 100 chars): "+desc)
	}

	if req.WantsText() {
		lines = append(lines, fmt.Sprintf("Include the text \"%s\" in a tasteful way.", req.Title()))
		if typography := strings.TrimSpace(req.Typography); typography != "" {
			lines = append(lines, "Typography direction: "+typography)
		}
		lines = append(lines, "Keep text legible and integrated with the design.")
	} else {
		lines = append(lines, "Do not include any text.")
	}

	if extra := strings.TrimSpace(req.ExtraDetails); extra != "" {
		lines = append(lines, "Extra details: "+extra)
	}

	lines = append(lines, promptInvite, PromptClosing)
	return strings.Join(lines, "\n")
}
