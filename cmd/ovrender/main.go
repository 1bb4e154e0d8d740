// Command ovrender renders one built-in node over a PNG image on the GPU:
// the image is uploaded with color management, the node is evaluated and
// the result is read back and written as a PNG.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"node-render/color"
	"node-render/core"
	"node-render/math"
	"node-render/node"
	"node-render/opengl"
	"node-render/platform/desktop"
	"node-render/render"
)

// The GPU context is bound to the main thread for the program's lifetime.
func init() {
	runtime.LockOSThread()
}

type options struct {
	in, out       string
	configPath    string
	nodeName      string
	width, height int
	outW, outH    int
	divider       int
	colorSpace    string
	premultiplied bool
	mode          string
	node          nodeOptions
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("ovrender", flag.ContinueOnError)
	fs.StringVar(&o.in, "in", "", "input PNG")
	fs.StringVar(&o.out, "out", "out.png", "output PNG")
	fs.StringVar(&o.configPath, "config", "", "TOML config file")
	fs.StringVar(&o.nodeName, "node", "copy", fmt.Sprintf("node to render %v", nodeNames()))
	fs.IntVar(&o.width, "width", 0, "output width (default: input width)")
	fs.IntVar(&o.height, "height", 0, "output height (default: input height)")
	fs.IntVar(&o.outW, "outwidth", 0, "written PNG width, letterboxed (default: render width)")
	fs.IntVar(&o.outH, "outheight", 0, "written PNG height, letterboxed (default: render height)")
	fs.IntVar(&o.divider, "divider", 1, "resolution divider")
	fs.StringVar(&o.colorSpace, "colorspace", color.SpaceSRGB, "input color space")
	fs.BoolVar(&o.premultiplied, "premultiplied", true, "input alpha is premultiplied")
	fs.StringVar(&o.mode, "mode", "", "render mode, online or offline (default: from config)")
	fs.Float64Var(&o.node.Gain, "gain", 1, "gain node multiplier")
	fs.IntVar(&o.node.Iterations, "iterations", 4, "blur node passes")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.in == "" {
		return o, fmt.Errorf("-in is required")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "ovrender: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (core.Config, error) {
	if path == "" {
		return core.DefaultConfig(), nil
	}
	return core.LoadConfig(path)
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := core.Logger()

	modeName := cfg.Mode
	if opts.mode != "" {
		modeName = opts.mode
	}
	mode, err := color.ParseMode(modeName)
	if err != nil {
		return err
	}

	img, err := readPNG(opts.in)
	if err != nil {
		return err
	}
	width, height := opts.width, opts.height
	if width == 0 {
		width = img.Bounds().Dx()
	}
	if height == 0 {
		height = img.Bounds().Dy()
	}
	params := core.NewVideoParams(width, height, cfg.OutputFormat, opts.divider)
	if err := params.Validate(); err != nil {
		return err
	}
	frame := imageToFrame(img, width, height)

	n, db, srcInput, err := buildNode(opts.nodeName, opts.node)
	if err != nil {
		return err
	}

	engine := render.New(desktop.Platform{}, cfg)
	if err := engine.Init(); err != nil {
		return err
	}
	defer engine.Close()
	if err := engine.FinishInit(); err != nil {
		return err
	}

	stream := color.Stream{
		ColorSpace:    opts.colorSpace,
		Premultiplied: opts.premultiplied,
		Manager:       &color.BuiltinManager{},
	}
	src, err := engine.FrameToValue(frame, stream, params, mode)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer release(src)
	db.Set(srcInput.ID, src)

	out := &node.ValueTable{}
	if err := engine.RunNodeAccelerated(n, node.TimeRange{}, db, out, params); err != nil {
		return err
	}
	result, _ := out.Last()
	defer release(result)

	outW, outH := width, height
	if opts.outW > 0 {
		outW = opts.outW
	}
	if opts.outH > 0 {
		outH = opts.outH
	}
	download := core.NewFrame(outW, outH, core.PixFmtRGBA8)
	fit := math.Mat4FitAspect(width, height, outW, outH)
	if err := engine.TextureToBuffer(result, download, fit); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	outImg, err := frameToImage(download)
	if err != nil {
		return err
	}
	if err := writePNG(opts.out, outImg); err != nil {
		return err
	}

	log.Info("rendered", "node", opts.nodeName, "mode", mode, "params", params, "out", opts.out)
	return nil
}

func release(v node.Value) {
	if ref, ok := v.Data.(*opengl.TextureRef); ok {
		ref.Release()
	}
}
