package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/pixelflip/pixelflip/frameparse"
	"github.com/pixelflip/pixelflip/gifenc"
	"github.com/pixelflip/pixelflip/lib/color"
	"github.com/pixelflip/pixelflip/lib/log"
	"github.com/pixelflip/pixelflip/lib/version"
)

func main() {
	xmain.Main(run)
}

type encodeOpts struct {
	fps   float64
	scale int
	fg    string
	bg    string
	debug bool
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	watchFlag, err := ms.Opts.Bool("PIXELFLIP_WATCH", "watch", "w", false, "watch for changes to the input file and re-encode")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs and validate the output by decoding it")
	if err != nil {
		return err
	}
	fpsFlag, err := ms.Opts.Float64("PIXELFLIP_FPS", "fps", "f", 10, "playback rate in frames per second (clamped to 1-100)")
	if err != nil {
		return err
	}
	scaleFlag, err := ms.Opts.Int64("PIXELFLIP_SCALE", "scale", "s", gifenc.DefaultScale, "output pixels per source pixel")
	if err != nil {
		return err
	}
	fgFlag := ms.Opts.String("PIXELFLIP_FG", "fg", "", "#000000", "foreground (on pixel) color as #RRGGBB")
	bgFlag := ms.Opts.String("PIXELFLIP_BG", "bg", "", "", "background (off pixel) color as #RRGGBB. Empty means off pixels are transparent")
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if len(ms.Opts.Flags.Args()) > 0 && ms.Opts.Flags.Arg(0) == "version" {
		if len(ms.Opts.Flags.Args()) > 1 {
			return xmain.UsageErrorf("version subcommand accepts no arguments")
		}
		fmt.Println(version.Version)
		return nil
	}

	if *debugFlag {
		ms.Env.Setenv("DEBUG", "1")
	}
	ctx = log.Stderr(ctx)

	var inputPath string
	var outputPath string

	if len(ms.Opts.Flags.Args()) == 0 {
		if versionFlag != nil && *versionFlag {
			fmt.Println(version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(ms.Opts.Flags.Args()) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	inputPath = ms.Opts.Flags.Arg(0)
	if len(ms.Opts.Flags.Args()) >= 2 {
		outputPath = ms.Opts.Flags.Arg(1)
	} else {
		if inputPath == "-" {
			outputPath = "-"
		} else {
			outputPath = renameExt(inputPath, ".gif")
		}
	}

	opts := encodeOpts{
		fps:   *fpsFlag,
		scale: int(*scaleFlag),
		fg:    *fgFlag,
		bg:    *bgFlag,
		debug: *debugFlag,
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		ms.Log.SetTS(true)
		w, err := newWatcher(ctx, ms, opts, inputPath, outputPath)
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Minute)
	defer cancel()

	err = encode(ctx, ms, opts, inputPath, outputPath)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully encoded %v to %v", ms.HumanPath(inputPath), ms.HumanPath(outputPath))
	return nil
}

func encode(ctx context.Context, ms *xmain.State, opts encodeOpts, inputPath, outputPath string) error {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}

	width, height, frames, err := frameparse.Parse(string(input))
	if err != nil {
		return err
	}

	anim := &gifenc.Animation{
		Width:      width,
		Height:     height,
		Frames:     frames,
		FPS:        opts.fps,
		Scale:      opts.scale,
		Foreground: opts.fg,
		Background: opts.bg,
	}

	warnLowContrast(ms, opts)

	out, err := gifenc.Encode(ctx, anim)
	if err != nil {
		return err
	}

	if opts.debug {
		if err := gifenc.Validate(out, anim); err != nil {
			return fmt.Errorf("encoded GIF failed validation: %w", err)
		}
	}

	return ms.WritePath(outputPath, out)
}

// warnLowContrast flags foreground/background pairs that will render as a
// near-solid block. Resolution errors are left for Encode to report.
func warnLowContrast(ms *xmain.State, opts encodeOpts) {
	if opts.bg == "" {
		return
	}
	fg, err := color.Resolve(opts.fg)
	if err != nil {
		return
	}
	bg, err := color.Resolve(opts.bg)
	if err != nil {
		return
	}
	if color.LowContrast(fg, bg) {
		ms.Log.Warn.Printf("foreground %s and background %s are hard to tell apart", opts.fg, opts.bg)
	}
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	} else {
		return strings.TrimSuffix(fp, ext) + newExt
	}
}
