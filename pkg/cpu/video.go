package cpu

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"gochip8/pkg/grid"
)

var (
	// DefaultOn and DefaultOff are the colours used for lit and unlit cells.
	DefaultOn  = color.RGBA{R: 0xFF, G: 0xF1, B: 0xE8, A: 0xFF}
	DefaultOff = color.RGBA{R: 0x1D, G: 0x2B, B: 0x53, A: 0xFF}
)

// FramebufferRGBA converts the display into a 64×32 RGBA8888 byte slice
// (length 64*32*4 = 8192), suitable for ebiten.Image.WritePixels.
func (c *CPU) FramebufferRGBA(on, off color.RGBA) []byte {
	pixels := make([]byte, DisplaySize*4)
	for i, cell := range c.Display {
		col := off
		if cell != 0 {
			col = on
		}
		pixels[i*4+0] = col.R
		pixels[i*4+1] = col.G
		pixels[i*4+2] = col.B
		pixels[i*4+3] = col.A
	}
	return pixels
}

// FramebufferImage returns the display as an *image.RGBA.
func (c *CPU) FramebufferImage(on, off color.RGBA) *image.RGBA {
	return &image.RGBA{
		Pix:    c.FramebufferRGBA(on, off),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// ScaledImage enlarges the display by an integer factor with nearest
// neighbour sampling so pixels stay square.
func (c *CPU) ScaledImage(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := c.FramebufferImage(DefaultOn, DefaultOff)
	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the display, scaled by scale, as a PNG file.
func (c *CPU) SaveScreenshot(filename string, scale int) error {
	img := c.ScaledImage(scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// String renders the display as text, one line per row, '#' for lit cells.
func (c *CPU) String() string {
	var sb strings.Builder
	sb.Grow((DisplayWidth + 1) * DisplayHeight)
	for i, cell := range c.Display {
		if cell != 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if x, _ := grid.GetGridCoords(i, DisplayWidth); x == DisplayWidth-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
