// Package color parses and formats the color notations offered by the
// developer color converter pages.
package color

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Format is a color notation.
type Format string

const (
	HEX  Format = "hex"
	RGB  Format = "rgb"
	HSL  Format = "hsl"
	CMYK Format = "cmyk"
)

// ErrUnsupported is returned for a notation that cannot be parsed.
var ErrUnsupported = errors.New("unsupported color value")

// Variant is one converter page, converting From into To.
type Variant struct {
	Slug    string
	From    Format
	To      Format
	Example string
}

var variants = []Variant{
	{Slug: "hex-to-rgb", From: HEX, To: RGB, Example: "#1e90ff"},
	{Slug: "rgb-to-hex", From: RGB, To: HEX, Example: "rgb(30, 144, 255)"},
	{Slug: "hex-to-hsl", From: HEX, To: HSL, Example: "#ff6347"},
	{Slug: "hsl-to-hex", From: HSL, To: HEX, Example: "hsl(9, 100%, 64%)"},
	{Slug: "rgb-to-hsl", From: RGB, To: HSL, Example: "rgb(46, 139, 87)"},
	{Slug: "hsl-to-rgb", From: HSL, To: RGB, Example: "hsl(146, 50%, 36%)"},
	{Slug: "rgb-to-cmyk", From: RGB, To: CMYK, Example: "rgb(255, 165, 0)"},
	{Slug: "cmyk-to-rgb", From: CMYK, To: RGB, Example: "cmyk(0%, 35%, 100%, 0%)"},
}

// Variants lists every converter page in display order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// Lookup finds a converter by slug.
func Lookup(slug string) (Variant, bool) {
	for _, v := range variants {
		if v.Slug == slug {
			return v, true
		}
	}
	return Variant{}, false
}

// Convert parses input in the variant's source notation and formats it in
// the target notation.
func (v Variant) Convert(input string) (string, error) {
	c, err := Parse(v.From, input)
	if err != nil {
		return "", err
	}
	return v.To.Render(c), nil
}

var (
	rgbPattern  = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	hslPattern  = regexp.MustCompile(`^hsl\(\s*(\d{1,3}(?:\.\d+)?)\s*,\s*(\d{1,3}(?:\.\d+)?)%\s*,\s*(\d{1,3}(?:\.\d+)?)%\s*\)$`)
	cmykPattern = regexp.MustCompile(`^cmyk\(\s*(\d{1,3}(?:\.\d+)?)%\s*,\s*(\d{1,3}(?:\.\d+)?)%\s*,\s*(\d{1,3}(?:\.\d+)?)%\s*,\s*(\d{1,3}(?:\.\d+)?)%\s*\)$`)
	hexPattern  = regexp.MustCompile(`^#?(?:[0-9a-f]{3}|[0-9a-f]{6})$`)
)

// Parse reads a color written in format f. Bare numbers are accepted in
// place of the functional notation, e.g. "30, 144, 255" for RGB.
func Parse(f Format, input string) (colorful.Color, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch f {
	case HEX:
		if !hexPattern.MatchString(s) {
			return colorful.Color{}, fmt.Errorf("%w: %q is not a hex color", ErrUnsupported, input)
		}
		s = strings.TrimPrefix(s, "#")
		if len(s) == 3 {
			s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
		}
		return colorful.Hex("#" + s)

	case RGB:
		m := rgbPattern.FindStringSubmatch(wrap("rgb", s))
		if m == nil {
			return colorful.Color{}, fmt.Errorf("%w: %q is not an rgb color", ErrUnsupported, input)
		}
		var ch [3]float64
		for i := range ch {
			n, _ := strconv.Atoi(m[i+1])
			if n > 255 {
				return colorful.Color{}, fmt.Errorf("%w: channel %d out of range", ErrUnsupported, n)
			}
			ch[i] = float64(n) / 255
		}
		return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, nil

	case HSL:
		m := hslPattern.FindStringSubmatch(wrap("hsl", s))
		if m == nil {
			return colorful.Color{}, fmt.Errorf("%w: %q is not an hsl color", ErrUnsupported, input)
		}
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		if h > 360 || sat > 100 || l > 100 {
			return colorful.Color{}, fmt.Errorf("%w: %q out of range", ErrUnsupported, input)
		}
		return colorful.Hsl(h, sat/100, l/100).Clamped(), nil

	case CMYK:
		m := cmykPattern.FindStringSubmatch(wrap("cmyk", s))
		if m == nil {
			return colorful.Color{}, fmt.Errorf("%w: %q is not a cmyk color", ErrUnsupported, input)
		}
		var p [4]float64
		for i := range p {
			p[i], _ = strconv.ParseFloat(m[i+1], 64)
			if p[i] > 100 {
				return colorful.Color{}, fmt.Errorf("%w: %q out of range", ErrUnsupported, input)
			}
			p[i] /= 100
		}
		k := 1 - p[3]
		return colorful.Color{R: (1 - p[0]) * k, G: (1 - p[1]) * k, B: (1 - p[2]) * k}, nil
	}
	return colorful.Color{}, fmt.Errorf("%w: format %q", ErrUnsupported, f)
}

// Render formats c in notation f.
func (f Format) Render(c colorful.Color) string {
	switch f {
	case HEX:
		return c.Clamped().Hex()
	case RGB:
		r, g, b := c.Clamped().RGB255()
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	case HSL:
		h, s, l := c.Clamped().Hsl()
		return fmt.Sprintf("hsl(%d, %d%%, %d%%)", round(h), round(s*100), round(l*100))
	case CMYK:
		cc, m, y, k := cmyk(c.Clamped())
		return fmt.Sprintf("cmyk(%d%%, %d%%, %d%%, %d%%)", round(cc*100), round(m*100), round(y*100), round(k*100))
	}
	return string(f)
}

func cmyk(c colorful.Color) (cc, m, y, k float64) {
	k = 1 - math.Max(c.R, math.Max(c.G, c.B))
	if k >= 1 {
		return 0, 0, 0, 1
	}
	cc = (1 - c.R - k) / (1 - k)
	m = (1 - c.G - k) / (1 - k)
	y = (1 - c.B - k) / (1 - k)
	return cc, m, y, k
}

func wrap(fn, s string) string {
	if strings.HasPrefix(s, fn+"(") {
		return s
	}
	return fn + "(" + s + ")"
}

func round(f float64) int {
	return int(math.Round(f))
}
