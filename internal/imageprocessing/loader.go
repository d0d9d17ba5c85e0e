package imageprocessing

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/rmitchellscott/palettedither/internal/logging"
)

// LoadImage decodes an image file in any registered format
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, format, nil
}

// LoadImageFromURL downloads and decodes an image after checking the URL
// against policy. A zero timeout leaves only ctx in control.
func LoadImageFromURL(ctx context.Context, rawURL string, timeout time.Duration, policy URLPolicy) (image.Image, string, error) {
	if err := policy.Validate(rawURL); err != nil {
		return nil, "", err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	logging.DebugWithComponent(logging.ComponentImageProcessing, "Downloaded image",
		"url", rawURL, "format", format, "bounds", img.Bounds().String())
	return img, format, nil
}

// Load reads source as a URL when it looks like one and as a file otherwise
func Load(ctx context.Context, source string, timeout time.Duration, policy URLPolicy) (image.Image, string, error) {
	if IsURL(source) {
		return LoadImageFromURL(ctx, source, timeout, policy)
	}
	return LoadImage(source)
}
