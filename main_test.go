package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmitchellscott/palettedither/internal/config"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func testInput(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 16), B: 90, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, path, img)
	return path
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o cliOptions)
	}{
		{
			name: "defaults",
			args: []string{"in.png", "out.png"},
			check: func(t *testing.T, o cliOptions) {
				if o.input != "in.png" || o.output != "out.png" || o.settings.Mode != "pair" {
					t.Errorf("unexpected options %+v", o)
				}
			},
		},
		{
			name: "mode alias normalized",
			args: []string{"-mode", "FS", "-order", "3", "in.png"},
			check: func(t *testing.T, o cliOptions) {
				if o.settings.Mode != "floyd-steinberg" || o.settings.Order != 3 || o.output != "" {
					t.Errorf("unexpected options %+v", o)
				}
			},
		},
		{name: "missing input", args: []string{}, wantErr: true},
		{name: "too many arguments", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "order out of range", args: []string{"-order", "12", "in.png"}, wantErr: true},
		{name: "unknown mode", args: []string{"-mode", "atkinson", "in.png"}, wantErr: true},
		{
			name: "list profiles needs no arguments",
			args: []string{"-list-profiles"},
			check: func(t *testing.T, o cliOptions) {
				if !o.listProfiles {
					t.Error("listProfiles not set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, config.Load())
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestRunWritesPalettePNG(t *testing.T) {
	input := testInput(t)
	outPath := filepath.Join(t.TempDir(), "out.png")

	o, err := parseFlags([]string{"-profile", "gameboy", "-width", "20", input, outPath}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), o, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("decoded %T, want *image.Paletted", img)
	}
	if b := paletted.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", b)
	}
	if len(paletted.Palette) != 4 {
		t.Errorf("palette has %d colors, want 4", len(paletted.Palette))
	}
}

func TestRunToDirectoryAndStdout(t *testing.T) {
	input := testInput(t)
	dir := t.TempDir()

	o, err := parseFlags([]string{"-mode", "bayer", input, dir}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), o, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "photo_") {
		t.Errorf("directory entries = %v", entries)
	}

	o, err = parseFlags([]string{input, "-"}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), o, &stdout); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&stdout); err != nil {
		t.Errorf("stdout is not a PNG: %v", err)
	}
}

func TestRunPaletteFromImage(t *testing.T) {
	input := testInput(t)
	palettePath := filepath.Join(t.TempDir(), "palette.png")
	pal := image.NewRGBA(image.Rect(0, 0, 3, 1))
	pal.Set(0, 0, color.RGBA{A: 255})
	pal.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	pal.Set(2, 0, color.RGBA{R: 255, A: 255})
	writePNG(t, palettePath, pal)

	o, err := parseFlags([]string{"-palette", palettePath, input, "-"}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), o, &stdout); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := img.(*image.Paletted); !ok || len(p.Palette) != 3 {
		t.Errorf("decoded %T with wrong palette", img)
	}
}

func TestRunListProfiles(t *testing.T) {
	o, err := parseFlags([]string{"-list-profiles"}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), o, &stdout); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"bw", "acep7", "gameboy"} {
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("profile list missing %s:\n%s", name, stdout.String())
		}
	}
}

func TestRunUnknownProfile(t *testing.T) {
	o, err := parseFlags([]string{"-profile", "nope", testInput(t), "-"}, config.Load())
	if err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), o, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown profile")
	}
}
