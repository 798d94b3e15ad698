package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12] = byte(w)
	hdr[13] = byte(w >> 8)
	hdr[14] = byte(h)
	hdr[15] = byte(h >> 8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	// 2x2, 24bpp, bottom-to-top: first row in the file is the bottom row.
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 255, 0, 255}},
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestDecodeTGARLETopDown(t *testing.T) {
	// 3x1, 32bpp, top-to-bottom: a run of two then one raw pixel.
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 40, // run of 2
		0x00, 1, 2, 3, 4, // 1 raw
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	want := []color.RGBA{{30, 20, 10, 40}, {30, 20, 10, 40}, {3, 2, 1, 4}}
	for x, w := range want {
		if got := img.RGBAAt(x, 0); got != w {
			t.Errorf("pixel %d: expected %v, got %v", x, w, got)
		}
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(TGATypeUncompressed, 1, 1, 24, 0); h[1] = 1; return h }()},
		{"grayscale", tgaHeader(3, 1, 1, 8, 0)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"empty", tgaHeader(TGATypeUncompressed, 0, 1, 24, 0)},
		{"truncated pixels", append(tgaHeader(TGATypeUncompressed, 2, 1, 24, 0), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 4, 1, 24, 0), 0x81, 1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := DecodeTGA(append(tgaHeader(TGATypeUncompressed, 2, 1, 24, 0), 1, 2, 3))
	if !errors.Is(err, ErrTGATruncated) {
		t.Errorf("expected ErrTGATruncated, got %v", err)
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 9))
	src.SetNRGBA(3, 4, color.NRGBA{200, 100, 50, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := Decode("stills/video0_0000.png", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
		t.Errorf("expected 16x9, got %v", img.Bounds())
	}
	if got := img.RGBAAt(3, 4); got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("unexpected pixel %v", got)
	}
}

func TestDecodeByExtension(t *testing.T) {
	data := append(tgaHeader(TGATypeUncompressed, 1, 1, 24, 0), 0, 0, 255)
	img, err := Decode("frame.TGA", data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("unexpected pixel %v", got)
	}

	if _, err := Decode("frame.png", []byte("not an image")); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestImageToRGBARebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.SetRGBA(6, 5, color.RGBA{1, 2, 3, 4})

	got := ImageToRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("expected rebased bounds, got %v", got.Bounds())
	}
	if c := got.RGBAAt(1, 0); c != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("unexpected pixel %v", c)
	}

	same := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if ImageToRGBA(same) != same {
		t.Error("expected zero-origin RGBA to pass through")
	}
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1920, 1080, 1024, 1024, 576},
		{1080, 1920, 1024, 576, 1024},
		{800, 600, 1024, 800, 600},
		{800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got := Downscale(img, tt.max)
		if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
			t.Errorf("Downscale(%dx%d, %d): expected %dx%d, got %v",
				tt.w, tt.h, tt.max, tt.wantW, tt.wantH, got.Bounds())
		}
	}
}
