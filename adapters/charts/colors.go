package charts

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"bizwiz/internal/errors"

	"golang.org/x/image/colornames"
)

// ParseColor resolves an SVG colour name ("green", "grey"), a hex string
// ("#808B96" or "#888") or a grey level between 0 and 1 (".7").
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return nil, errors.InvalidInput("empty colour")
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") {
		return parseHex(name[1:])
	}
	if level, err := strconv.ParseFloat(name, 64); err == nil {
		if level < 0 || level > 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("grey level %q must be between 0 and 1", s))
		}
		v := uint8(level*255 + 0.5)
		return color.RGBA{R: v, G: v, B: v, A: 255}, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown colour %q", s))
}

func parseHex(h string) (color.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid hex colour #%s", h))
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid hex colour #%s", h))
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// colors parses a list of named options, stopping at the first bad one
func colors(names map[string]string) (map[string]color.Color, error) {
	out := make(map[string]color.Color, len(names))
	for field, name := range names {
		c, err := ParseColor(name)
		if err != nil {
			return nil, errors.Wrap(err, field)
		}
		out[field] = c
	}
	return out, nil
}

// LightPalette returns n colours blending from near white to base
func LightPalette(base color.Color, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	light := mix(base, color.White, 0.88)
	if n == 1 {
		return []color.Color{base}
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = mix(light, base, float64(i)/float64(n-1))
	}
	return out
}

// mix blends a toward b by t in [0, 1]
func mix(a, b color.Color, t float64) color.Color {
	ar, ag, ab, _ := toRGB(a)
	br, bg, bb, _ := toRGB(b)
	lerp := func(x, y float64) uint8 { return uint8(x + (y-x)*t + 0.5) }
	return color.RGBA{R: lerp(ar, br), G: lerp(ag, bg), B: lerp(ab, bb), A: 255}
}

func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := toRGB(c)
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(alpha*255 + 0.5)}
}

// luminance is the relative brightness of c in [0, 1]
func luminance(c color.Color) float64 {
	r, g, b, _ := toRGB(c)
	return (0.299*r + 0.587*g + 0.114*b) / 255
}

func toRGB(c color.Color) (r, g, b, a float64) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(nc.R), float64(nc.G), float64(nc.B), float64(nc.A)
}
