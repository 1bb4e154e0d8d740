package main

import (
	"image"
	"image/color"
	"testing"

	"node-render/core"
	"node-render/node"
)

func TestBuildNode(t *testing.T) {
	for _, name := range nodeNames() {
		n, db, src, err := buildNode(name, nodeOptions{Gain: 2, Iterations: 3})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if db == nil {
			t.Errorf("%s: nil database", name)
		}
		if src == nil || !src.Type.IsTexture() {
			t.Errorf("%s: source input %v is not a texture", name, src)
		}
		if n.ID() != name {
			t.Errorf("%s: ID = %q", name, n.ID())
		}
	}

	if _, _, _, err := buildNode("sharpen", nodeOptions{}); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestBuildBlurIterates(t *testing.T) {
	n, _, src, err := buildNode("blur", nodeOptions{Iterations: 3})
	if err != nil {
		t.Fatal(err)
	}
	if n.ShaderIterations() != 3 {
		t.Errorf("iterations: expected 3, got %d", n.ShaderIterations())
	}
	if n.ShaderIterativeInput() != src {
		t.Error("blur should feed back into its source input")
	}
}

func TestBuildGainParameter(t *testing.T) {
	_, db, _, err := buildNode("gain", nodeOptions{Gain: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := db["gain"].Get(node.DataFloat)
	if !ok {
		t.Fatal("gain value missing")
	}
	if v.Data != 1.5 {
		t.Errorf("gain: expected 1.5, got %v", v.Data)
	}
}

func TestImageFrameRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	frame := imageToFrame(img, 3, 2)
	if frame.Format() != core.PixFmtRGBA8 {
		t.Fatalf("format: expected rgba8, got %v", frame.Format())
	}
	out, err := frameToImage(frame)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.RGBAAt(2, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

func TestImageToFrameScales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	frame := imageToFrame(img, 4, 2)
	if frame.Width() != 4 || frame.Height() != 2 {
		t.Fatalf("size: expected 4x2, got %dx%d", frame.Width(), frame.Height())
	}
	if px := frame.Pixel(1, 1); px[0] < 0.99 || px[3] < 0.99 {
		t.Errorf("scaled pixel: expected white, got %v", px)
	}
}

func TestFrameToImageRejectsFloat(t *testing.T) {
	if _, err := frameToImage(core.NewFrame(2, 2, core.PixFmtRGBA16F)); err == nil {
		t.Error("expected error for float frame")
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-in", "a.png", "-node", "blur", "-iterations", "5", "-mode", "online"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.nodeName != "blur" || opts.node.Iterations != 5 || opts.mode != "online" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.divider != 1 || !opts.premultiplied {
		t.Errorf("defaults: %+v", opts)
	}
	if _, err := parseFlags(nil); err == nil {
		t.Error("expected error without -in")
	}
}
