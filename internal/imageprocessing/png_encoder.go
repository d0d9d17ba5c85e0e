package imageprocessing

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"io"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// BitDepthForColors returns the smallest PNG indexed bit depth that can
// address n palette entries
func BitDepthForColors(n int) int {
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	case n <= 16:
		return 4
	default:
		return 8
	}
}

// EncodeIndexedPNG encodes img with WriteIndexedPNG and returns the bytes
func EncodeIndexedPNG(img *image.Paletted) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteIndexedPNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteIndexedPNG writes img as PNG color type 3 at the smallest bit depth
// its palette allows. image/png always uses 8-bit indices, which e-paper
// firmware often rejects.
func WriteIndexedPNG(w io.Writer, img *image.Paletted) error {
	if img == nil {
		return fmt.Errorf("image is nil")
	}
	if n := len(img.Palette); n == 0 || n > MaxPaletteColors {
		return fmt.Errorf("palette size %d is not encodable", n)
	}
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("cannot encode empty image %dx%d", b.Dx(), b.Dy())
	}

	depth := BitDepthForColors(len(img.Palette))
	idat, err := compressRows(img, depth)
	if err != nil {
		return err
	}

	e := &pngWriter{w: w}
	e.write(pngSignature)

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(b.Dy()))
	ihdr[8] = byte(depth)
	ihdr[9] = 3 // indexed; compression, filter and interlace stay 0
	e.chunk("IHDR", ihdr[:])

	plte := make([]byte, 0, 3*len(img.Palette))
	for _, c := range img.Palette {
		r, g, bl, a := c.RGBA()
		if a != 0 && a != 0xffff {
			r, g, bl = r*0xffff/a, g*0xffff/a, bl*0xffff/a
		}
		plte = append(plte, byte(r>>8), byte(g>>8), byte(bl>>8))
	}
	e.chunk("PLTE", plte)
	e.chunk("IDAT", idat)
	e.chunk("IEND", nil)

	return e.err
}

// compressRows packs each row MSB first behind a filter byte of 0 and
// deflates the whole scanline stream
func compressRows(img *image.Paletted, depth int) ([]byte, error) {
	b := img.Bounds()
	perByte := 8 / depth
	row := make([]byte, 1+(b.Dx()+perByte-1)/perByte)

	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		clear(row)
		for x := 0; x < b.Dx(); x++ {
			idx := img.ColorIndexAt(b.Min.X+x, y)
			if int(idx) >= len(img.Palette) {
				zw.Close()
				return nil, fmt.Errorf("pixel (%d,%d) index %d outside palette", x, y-b.Min.Y, idx)
			}
			shift := (perByte - 1 - x%perByte) * depth
			row[1+x/perByte] |= idx << shift
		}
		if _, err := zw.Write(row); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to compress image data: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress image data: %w", err)
	}
	return out.Bytes(), nil
}

// pngWriter remembers the first write error so chunks can be chained
type pngWriter struct {
	w   io.Writer
	err error
}

func (e *pngWriter) write(p []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(p)
	}
}

func (e *pngWriter) chunk(typ string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], typ)

	var footer [4]byte
	crc := crc32.Update(crc32.ChecksumIEEE(header[4:]), crc32.IEEETable, data)
	binary.BigEndian.PutUint32(footer[:], crc)

	e.write(header[:])
	e.write(data)
	e.write(footer[:])
}
