package render

import (
	"strings"

	"github.com/gogpu/gg"
)

var namedColors = map[string]gg.RGBA{
	"black":  gg.Black,
	"white":  gg.White,
	"red":    gg.RGB(1, 0, 0),
	"green":  gg.RGB(0, 1, 0),
	"blue":   gg.RGB(0, 0, 1),
	"yellow": gg.RGB(1, 1, 0),
}

// ParseColor resolves a stroke color token. ok is false when the token is not
// recognised, in which case black is returned.
func ParseColor(token string) (gg.RGBA, bool) {
	token = strings.TrimSpace(token)
	if c, found := namedColors[strings.ToLower(token)]; found {
		return c, true
	}
	if !strings.HasPrefix(token, "#") {
		return gg.Black, false
	}
	hex := token[1:]
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.Black, false
	}
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return gg.Black, false
		}
	}
	return gg.Hex(hex), true
}
