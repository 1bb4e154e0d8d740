package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"node-render/core"
)

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// imageToFrame draws img into a premultiplied RGBA8 frame of the given
// size, resampling when the sizes differ.
func imageToFrame(img image.Image, width, height int) *core.Frame {
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}

	frame := core.NewFrame(width, height, core.PixFmtRGBA8)
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		copy(frame.Data()[y*frame.Linesize():], rgba.Pix[y*rgba.Stride:y*rgba.Stride+rowBytes])
	}
	return frame
}

// frameToImage wraps an RGBA8 frame's rows as a premultiplied image.
func frameToImage(frame *core.Frame) (*image.RGBA, error) {
	if frame.Format() != core.PixFmtRGBA8 {
		return nil, fmt.Errorf("frame format %v cannot be written as PNG", frame.Format())
	}
	img := image.NewRGBA(image.Rect(0, 0, frame.Width(), frame.Height()))
	rowBytes := frame.Width() * 4
	for y := 0; y < frame.Height(); y++ {
		copy(img.Pix[y*img.Stride:], frame.Data()[y*frame.Linesize():y*frame.Linesize()+rowBytes])
	}
	return img, nil
}
