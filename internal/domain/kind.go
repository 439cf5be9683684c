package domain

import (
	"fmt"
	"strings"
)

// Kind selects the display template for a catalog position.
type Kind int

const (
	KindNormal Kind = iota
	KindPopular
)

func (k Kind) String() string {
	switch k {
	case KindPopular:
		return "popular"
	case KindNormal:
		return "normal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Orientation is the viewport orientation the list is rendered for.
type Orientation int

const (
	OrientationPortrait Orientation = iota
	OrientationLandscape
)

func (o Orientation) String() string {
	if o == OrientationLandscape {
		return "landscape"
	}
	return "portrait"
}

// ParseOrientation accepts "portrait" or "landscape"; empty means portrait.
func ParseOrientation(raw string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "portrait":
		return OrientationPortrait, nil
	case "landscape":
		return OrientationLandscape, nil
	default:
		return OrientationPortrait, fmt.Errorf("unknown orientation %q", raw)
	}
}
