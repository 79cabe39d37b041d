package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxDescriptionLength is measured in characters after trimming.
	MaxDescriptionLength = 100
	// MaxColors caps the dominant colour selection.
	MaxColors = 5
	// DefaultEventTitle is used when the request carries no title.
	DefaultEventTitle = "Untitled Event"
	// NoTextTypography disables in-image text regardless of IncludeText.
	NoTextTypography = "no text"
)

// CoverRequest is the structured cover description sent by the editor.
type CoverRequest struct {
	EventTitle   string   `json:"eventTitle,omitempty"`
	Description  string   `json:"description,omitempty"`
	Occasion     string   `json:"occasion"`
	Vibe         string   `json:"vibe"`
	Style        string   `json:"style"`
	Colors       []string `json:"colors,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	Lighting     string   `json:"lighting,omitempty"`
	Texture      string   `json:"texture,omitempty"`
	Typography   string   `json:"typography,omitempty"`
	IncludeText  *bool    `json:"includeText,omitempty"`
	ExtraDetails string   `json:"extraDetails,omitempty"`
}

// Title returns the trimmed event title, or DefaultEventTitle when empty.
func (r CoverRequest) Title() string {
	if t := strings.TrimSpace(r.EventTitle); t != "" {
		return t
	}
	return DefaultEventTitle
}

// WantsText reports whether the title should be rendered inside the image.
// An absent includeText flag means true; typography "no text" always wins.
func (r CoverRequest) WantsText() bool {
	include := r.IncludeText == nil || *r.IncludeText
	if !include {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(r.Typography), NoTextTypography)
}

// DominantColors returns at most MaxColors trimmed, non-empty colours.
func (r CoverRequest) DominantColors() []string {
	out := make([]string, 0, MaxColors)
	for _, c := range r.Colors {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == MaxColors {
			break
		}
	}
	return out
}

// Validate checks the rules enforced at the server boundary.
func (r CoverRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Occasion) == "" {
		missing = append(missing, "occasion")
	}
	if strings.TrimSpace(r.Vibe) == "" {
		missing = append(missing, "vibe")
	}
	if strings.TrimSpace(r.Style) == "" {
		missing = append(missing, "style")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   strings.Join(missing, ","),
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Description)) > MaxDescriptionLength {
		return &ValidationError{
			Field:   "description",
			Message: "Description must be 100 characters or less",
		}
	}
	return nil
}

// ValidateSelection applies Validate plus the colour cap the editor enforces
// before a request leaves the client.
func (r CoverRequest) ValidateSelection() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(r.Colors) > MaxColors {
		return &ValidationError{
			Field:   "colors",
			Message: "Pick up to 5 colors",
		}
	}
	return nil
}

// CoverImage is a generated cover held in memory only.
type CoverImage struct {
	Data []byte
	MIME string
}

// CoverResponse is the wire shape of a successful generation.
type CoverResponse struct {
	B64  string `json:"b64"`
	MIME string `json:"mime"`
}

// ErrorResponse is the wire shape of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Bool returns a pointer to v, handy for optional request flags.
func Bool(v bool) *bool {
	return &v
}
