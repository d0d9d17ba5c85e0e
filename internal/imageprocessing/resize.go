package imageprocessing

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// ResizeMode selects how an image is fitted to the target canvas
type ResizeMode string

const (
	// ResizeNone keeps the source dimensions
	ResizeNone ResizeMode = "none"
	// ResizeFit scales to fit inside the canvas and letterboxes the rest
	ResizeFit ResizeMode = "fit"
	// ResizeFill scales to cover the canvas and crops the overflow
	ResizeFill ResizeMode = "fill"
)

// ParseResizeMode resolves a mode name; the empty string means ResizeNone
func ParseResizeMode(s string) (ResizeMode, error) {
	switch ResizeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ResizeNone:
		return ResizeNone, nil
	case ResizeFit:
		return ResizeFit, nil
	case ResizeFill:
		return ResizeFill, nil
	}
	return "", fmt.Errorf("unknown resize mode %q (want none, fit or fill)", s)
}

// Resize applies mode. A zero target dimension is derived from the other one
// preserving the aspect ratio; both zero returns img unchanged.
func Resize(img image.Image, targetWidth, targetHeight int, mode ResizeMode, background color.Color) image.Image {
	if img == nil || mode == ResizeNone || (targetWidth <= 0 && targetHeight <= 0) {
		return img
	}

	bounds := img.Bounds()
	if targetWidth <= 0 {
		targetWidth = max(1, bounds.Dx()*targetHeight/bounds.Dy())
	}
	if targetHeight <= 0 {
		targetHeight = max(1, bounds.Dy()*targetWidth/bounds.Dx())
	}

	if mode == ResizeFill {
		return ResizeToFill(img, targetWidth, targetHeight)
	}
	return ResizeToFit(img, targetWidth, targetHeight, background)
}

// ResizeToFit resizes an image to fit within the specified dimensions while
// preserving aspect ratio. Uncovered areas are painted with background.
func ResizeToFit(img image.Image, targetWidth, targetHeight int, background color.Color) image.Image {
	if img == nil {
		return nil
	}
	if background == nil {
		background = color.Black
	}

	bounds := img.Bounds()
	newWidth, newHeight := GetScaledDimensions(bounds.Dx(), bounds.Dy(), targetWidth, targetHeight)

	canvas := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	offsetX := (targetWidth - newWidth) / 2
	offsetY := (targetHeight - newHeight) / 2

	targetRect := image.Rect(offsetX, offsetY, offsetX+newWidth, offsetY+newHeight)
	xdraw.BiLinear.Scale(canvas, targetRect, img, bounds, xdraw.Over, nil)

	return canvas
}

// GetScaledDimensions calculates the scaled dimensions that fit within the
// target while preserving aspect ratio
func GetScaledDimensions(srcWidth, srcHeight, targetWidth, targetHeight int) (int, int) {
	scaleX := float64(targetWidth) / float64(srcWidth)
	scaleY := float64(targetHeight) / float64(srcHeight)
	scale := min(scaleX, scaleY)

	return max(1, int(float64(srcWidth)*scale)), max(1, int(float64(srcHeight)*scale))
}

// ResizeToFill resizes an image to cover the target dimensions while
// preserving aspect ratio, cropping the centered overflow
func ResizeToFill(img image.Image, targetWidth, targetHeight int) image.Image {
	if img == nil {
		return nil
	}

	bounds := img.Bounds()
	scaleX := float64(targetWidth) / float64(bounds.Dx())
	scaleY := float64(targetHeight) / float64(bounds.Dy())
	scale := max(scaleX, scaleY)

	newWidth := max(targetWidth, int(float64(bounds.Dx())*scale))
	newHeight := max(targetHeight, int(float64(bounds.Dy())*scale))

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, xdraw.Over, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	offset := image.Pt((newWidth-targetWidth)/2, (newHeight-targetHeight)/2)
	draw.Draw(canvas, canvas.Bounds(), resized, offset, draw.Src)

	return canvas
}
