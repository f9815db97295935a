package texture

import (
	"image"
	"image/color"
	"testing"
)

func TestGenerateMipChain(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 4))
	for y := range 4 {
		for x := range 16 {
			src.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	tests := []struct {
		format Format
		first  []byte
	}{
		{FormatBGRA8, []byte{50, 100, 200, 255}},
		{FormatBGR8, []byte{50, 100, 200}},
		{FormatLuminance8, []byte{124}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			levels, err := GenerateMipChain(src, tt.format)
			if err != nil {
				t.Fatalf("GenerateMipChain: %v", err)
			}
			wantSizes := [][2]int{{16, 4}, {8, 2}, {4, 1}, {2, 1}, {1, 1}}
			if len(levels) != len(wantSizes) {
				t.Fatalf("levels = %d, want %d", len(levels), len(wantSizes))
			}
			for i, l := range levels {
				if l.Width != wantSizes[i][0] || l.Height != wantSizes[i][1] {
					t.Errorf("level %d = %dx%d, want %v", i, l.Width, l.Height, wantSizes[i])
				}
			}
			for i, b := range tt.first {
				if levels[0].Pixels[i] != b {
					t.Fatalf("level 0 first pixel = %v, want %v", levels[0].Pixels[:len(tt.first)], tt.first)
				}
			}

			tex := New(1, tt.format, levels...)
			tex.SetSampler(mipSampler())
			m := NewManager(nil, nil)
			if !m.Validate(tex) {
				t.Errorf("generated chain failed validation: %v", tex.Err())
			}
		})
	}
}

func TestGenerateMipChainErrors(t *testing.T) {
	if _, err := GenerateMipChain(image.NewRGBA(image.Rect(0, 0, 4, 4)), FormatUnknown); err == nil {
		t.Error("GenerateMipChain(FormatUnknown) succeeded")
	}
	if _, err := GenerateMipChain(image.NewRGBA(image.Rectangle{}), FormatBGRA8); err == nil {
		t.Error("GenerateMipChain(empty) succeeded")
	}
}
