package folio

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/folio/logger"
)

const jpegQuality = 85

// fitImage downscales JPEG and PNG images wider than maxWidth, keeping their
// format. Anything else (other image formats, SVG, non-images) and anything
// that fails to decode is returned unchanged.
func fitImage(name string, data []byte, maxWidth int) []byte {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= maxWidth {
		return data
	}
	if format != "jpeg" && format != "png" {
		return data
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("decode image failed, storing original", logger.String("name", name), logger.ErrorField(err))
		return data
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		logger.Warn("encode image failed, storing original", logger.String("name", name), logger.ErrorField(err))
		return data
	}
	logger.Debug("downscaled image",
		logger.String("name", name),
		logger.Int("width", w),
		logger.Int("resized_width", maxWidth),
	)
	return buf.Bytes()
}
