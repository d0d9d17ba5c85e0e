package imageprocessing

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
	"github.com/rmitchellscott/palettedither/internal/dither"
	"github.com/rmitchellscott/palettedither/internal/palette"
	"github.com/rmitchellscott/palettedither/internal/threshold"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	p, err := palette.FromHex("#000000", "#ffffff", "#ff0000", "#0000ff")
	if err != nil {
		t.Fatal(err)
	}

	opts := DefaultProcessingOptions()
	opts.Width, opts.Height, opts.Resize = 40, 30, ResizeFill

	out, err := Process(context.Background(), gradient(64, 64), p, opts)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 30 {
		t.Fatalf("bounds = %v, want 40x30", out.Bounds())
	}
	for i, idx := range out.Pix {
		if int(idx) >= p.Len() {
			t.Fatalf("pixel %d index %d outside palette", i, idx)
		}
	}

	again, err := Process(context.Background(), gradient(64, 64), p, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pix, again.Pix) {
		t.Error("two runs produced different output")
	}
}

func TestProcessErrors(t *testing.T) {
	p, _ := palette.FromHex("#000000", "#ffffff")
	opts := DefaultProcessingOptions()

	if _, err := Process(context.Background(), nil, p, opts); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := Process(context.Background(), gradient(4, 4), nil, opts); !errors.Is(err, dither.ErrInvalidPalette) {
		t.Errorf("nil palette error = %v", err)
	}
	opts.Order = threshold.MaxOrder + 1
	if _, err := Process(context.Background(), gradient(4, 4), p, opts); !errors.Is(err, threshold.ErrInvalidOrder) {
		t.Errorf("bad order error = %v", err)
	}
}

func TestProcessRejectsOversizedPalette(t *testing.T) {
	colors := make([]colorspace.RGB8, 300)
	for i := range colors {
		colors[i] = colorspace.RGB8{R: uint8(i), G: uint8(i >> 8), B: 7}
	}
	if _, err := palette.New(colors); !errors.Is(err, ErrPaletteTooLarge) {
		t.Errorf("palette.New(300 colors) error = %v, want ErrPaletteTooLarge", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 300, 1))
	for x, c := range colors {
		img.Set(x, 0, c)
	}
	if _, err := PaletteFromImage(img); !errors.Is(err, ErrPaletteTooLarge) {
		t.Errorf("PaletteFromImage error = %v, want ErrPaletteTooLarge", err)
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	if err := os.WriteFile(path, encodePNG(t, gradient(5, 3)), 0644); err != nil {
		t.Fatal(err)
	}

	img, format, err := Load(context.Background(), path, time.Second, URLPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 5 || img.Bounds().Dy() != 3 {
		t.Errorf("got %s %v", format, img.Bounds())
	}

	if _, _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadImageFromURL(t *testing.T) {
	data := encodePNG(t, gradient(6, 2))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	img, format, err := Load(context.Background(), server.URL+"/img.png", 5*time.Second, URLPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 6 {
		t.Errorf("got %s %v", format, img.Bounds())
	}

	if _, _, err := LoadImageFromURL(context.Background(), server.URL+"/missing", 5*time.Second, URLPolicy{}); err == nil {
		t.Error("expected error for 404")
	}

	blocked := URLPolicy{BlockPrivateIPs: true}
	if _, _, err := LoadImageFromURL(context.Background(), server.URL+"/img.png", 5*time.Second, blocked); err == nil {
		t.Error("expected loopback server to be blocked")
	}
}
