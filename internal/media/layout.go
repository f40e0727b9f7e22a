package media

import (
	"fmt"
	"strings"
)

// Layout names one of the six compositing arrangements applied at export
// time. Layouts are stateless and independent of how a recording was
// captured.
type Layout string

const (
	LayoutVerticalBottom Layout = "Vertical Bottom"
	LayoutVerticalTop    Layout = "Vertical Top"
	LayoutDownRight      Layout = "Down Right"
	LayoutDownLeft       Layout = "Down Left"
	LayoutTopRight       Layout = "Top Right"
	LayoutTopLeft        Layout = "Top Left"
)

// AllLayouts lists every layout in presentation order.
func AllLayouts() []Layout {
	return []Layout{
		LayoutVerticalBottom,
		LayoutVerticalTop,
		LayoutDownRight,
		LayoutDownLeft,
		LayoutTopRight,
		LayoutTopLeft,
	}
}

var layoutSet = func() map[Layout]struct{} {
	set := make(map[Layout]struct{}, 6)
	for _, layout := range AllLayouts() {
		set[layout] = struct{}{}
	}
	return set
}()

// Slug returns the layout name lowercased with spaces replaced by
// underscores, as used in export file names.
func (l Layout) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(l)), " ", "_")
}

// Valid reports whether the layout is one of the six known variants.
func (l Layout) Valid() bool {
	_, ok := layoutSet[l]
	return ok
}

// Portrait reports whether the layout renders a 1080x1920 canvas instead of
// the default 1920x1080.
func (l Layout) Portrait() bool {
	return l == LayoutVerticalBottom || l == LayoutVerticalTop
}

// ParseLayout resolves a layout from its display name or slug, case
// insensitively.
func ParseLayout(value string) (Layout, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.ReplaceAll(normalized, "-", " ")
	for _, layout := range AllLayouts() {
		if strings.ToLower(string(layout)) == normalized {
			return layout, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", value)
}
