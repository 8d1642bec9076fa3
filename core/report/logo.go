package report

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// PrepareLogo decodes a PNG or JPEG logo and scales it down to at most
// maxWidth pixels wide, preserving the aspect ratio. Images already
// narrow enough pass through unchanged.
func PrepareLogo(r io.Reader, maxWidth int) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img, nil
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst, nil
}
