package book

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lectern/utils/images"
)

// Image is a picture referenced by content file. Pixels are kept only until
// renderer uploads them, after that image is identified by its path. Pixels
// hold non-premultiplied RGBA, 4 bytes per pixel, no padding. Channels reports
// the source picture, buffer is always expanded to 4.
type Image struct {
	RelativePath string
	Pixels       []byte
	Width        int
	Height       int
	ScaledWidth  int
	ScaledHeight int
	Ratio        float64
	Channels     int
}

func newImage(rel string) *Image {
	return &Image{RelativePath: rel, Ratio: 1, Channels: 4}
}

// UpdateRatio resets scaled size to natural size and recomputes aspect ratio.
// Zero height leaves ratio alone.
func (img *Image) UpdateRatio() {
	img.ScaledWidth, img.ScaledHeight = img.Width, img.Height
	if img.Height > 0 {
		img.Ratio = float64(img.Width) / float64(img.Height)
	}
}

// Scale fits image into target box preserving aspect ratio.
func (img *Image) Scale(targetW, targetH float64) {
	img.UpdateRatio()
	if targetH <= 0 || img.Ratio <= 0 {
		return
	}
	if targetW/targetH > img.Ratio {
		img.ScaledHeight = int(targetH)
		img.ScaledWidth = int(targetH * img.Ratio)
	} else {
		img.ScaledWidth = int(targetW)
		img.ScaledHeight = int(targetW / img.Ratio)
	}
}

// Empty reports whether there is nothing to upload.
func (img *Image) Empty() bool {
	return img == nil || len(img.Pixels) == 0 || img.Width == 0 || img.Height == 0
}

// NRGBA wraps pixel buffer without copying. Returns nil for empty images.
func (img *Image) NRGBA() *image.NRGBA {
	if img.Empty() {
		return nil
	}
	return &image.NRGBA{
		Pix:    img.Pixels,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// Release drops pixel buffer after upload.
func (img *Image) Release() {
	img.Pixels = nil
}

var errUnsupportedImage = errors.New("unsupported image format")

// decode reads image from fsys and fills pixel buffer. SVG is rasterized to
// fit svgSize box.
func (img *Image) decode(fsys fs.FS, svgSize int) error {
	data, err := fs.ReadFile(fsys, cleanPath(img.RelativePath))
	if err != nil {
		return fmt.Errorf("unable to read image: %w", err)
	}

	var pic *image.NRGBA
	switch {
	case filetype.IsImage(data):
		src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return fmt.Errorf("unable to decode image: %w", err)
		}
		img.Channels = channels(src)
		pic = imaging.Clone(src)
	case isSVG(img.RelativePath, data):
		if pic, err = images.RasterizeSVG(data, svgSize, svgSize, nil); err != nil {
			return fmt.Errorf("unable to rasterize svg: %w", err)
		}
	default:
		return errUnsupportedImage
	}

	img.Width, img.Height = pic.Rect.Dx(), pic.Rect.Dy()
	img.Pixels = pic.Pix
	img.UpdateRatio()
	return nil
}

func isSVG(name string, data []byte) bool {
	if strings.EqualFold(path.Ext(name), ".svg") {
		return true
	}
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

func channels(src image.Image) int {
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	return 4
}

// cleanPath converts content relative path into fs.FS form.
func cleanPath(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}
