package color_test

import (
	"errors"
	"testing"

	"github.com/freetools/toolsite/internal/color"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		slug  string
		input string
		want  string
	}{
		{"hex-to-rgb", "#1e90ff", "rgb(30, 144, 255)"},
		{"hex-to-rgb", "1E90FF", "rgb(30, 144, 255)"},
		{"hex-to-rgb", "#fff", "rgb(255, 255, 255)"},
		{"rgb-to-hex", "rgb(30, 144, 255)", "#1e90ff"},
		{"rgb-to-hex", "30,144,255", "#1e90ff"},
		{"hex-to-hsl", "#ff6347", "hsl(9, 100%, 64%)"},
		{"rgb-to-cmyk", "rgb(255, 165, 0)", "cmyk(0%, 35%, 100%, 0%)"},
		{"rgb-to-cmyk", "rgb(0, 0, 0)", "cmyk(0%, 0%, 0%, 100%)"},
		{"cmyk-to-rgb", "cmyk(0%, 0%, 0%, 0%)", "rgb(255, 255, 255)"},
		{"hsl-to-hex", "hsl(0, 100%, 50%)", "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.slug+" "+tt.input, func(t *testing.T) {
			v, ok := color.Lookup(tt.slug)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.slug)
			}
			got, err := v.Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConvertRejectsInvalid(t *testing.T) {
	tests := []struct {
		slug  string
		input string
	}{
		{"hex-to-rgb", "#12345"},
		{"hex-to-rgb", "blue"},
		{"rgb-to-hex", "rgb(256, 0, 0)"},
		{"rgb-to-hex", "rgb(1, 2)"},
		{"hsl-to-rgb", "hsl(400, 10%, 10%)"},
		{"cmyk-to-rgb", "cmyk(0%, 0%, 0%)"},
	}
	for _, tt := range tests {
		v, _ := color.Lookup(tt.slug)
		if _, err := v.Convert(tt.input); !errors.Is(err, color.ErrUnsupported) {
			t.Errorf("Convert(%q) via %s: expected ErrUnsupported, got %v", tt.input, tt.slug, err)
		}
	}
}

func TestVariantExamplesConvert(t *testing.T) {
	for _, v := range color.Variants() {
		if _, err := v.Convert(v.Example); err != nil {
			t.Errorf("%s example %q: %v", v.Slug, v.Example, err)
		}
	}
	if _, ok := color.Lookup("hex-to-pantone"); ok {
		t.Error("unknown slug should not resolve")
	}
}
