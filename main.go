package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
	"github.com/slbench/depthcast/pkg/geometry"
	"github.com/slbench/depthcast/pkg/renderer"
	"github.com/slbench/depthcast/pkg/scene"
)

// options holds the parsed command line
type options struct {
	scenePath  string
	outputPath string
	width      int
	height     int
	lightName  string
	workers    int
	quiet      bool
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(fs.Output(), "Usage: depthcast [options] <scene.json> <output-path> <width> <height>")
	fmt.Fprintln(fs.Output())
	fmt.Fprintln(fs.Output(), "Casts one ray per sensor pixel from the scene's projector and writes")
	fmt.Fprintln(fs.Output(), "<output-path> (pixelX pixelY depth) and <output-path>.real.xyz (realX realY realZ).")
	fmt.Fprintln(fs.Output())
	fmt.Fprintln(fs.Output(), "Options:")
	fs.PrintDefaults()
}

// parseArgs parses flags and the four positional arguments
func parseArgs(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("depthcast", flag.ContinueOnError)
	fs.StringVar(&opts.lightName, "light", scene.DefaultLightName, "Name of the light object to cast from")
	fs.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = all CPUs)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress progress output")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	positional := fs.Args()
	if len(positional) != 4 {
		return nil, errors.Errorf("expected 4 arguments (scene, output, width, height), got %d", len(positional))
	}

	opts.scenePath = positional[0]
	opts.outputPath = positional[1]

	var err error
	opts.width, err = strconv.Atoi(positional[2])
	if err != nil {
		return nil, errors.Errorf("invalid width %q", positional[2])
	}
	opts.height, err = strconv.Atoi(positional[3])
	if err != nil {
		return nil, errors.Errorf("invalid height %q", positional[3])
	}
	if opts.width <= 0 || opts.height <= 0 {
		return nil, renderer.ErrInvalidResolution
	}

	return opts, nil
}

// run loads the scene, renders the depth map and writes both output files
func run(opts *options, logger core.Logger) error {
	start := time.Now()

	scn, err := scene.Load(opts.scenePath)
	if err != nil {
		return err
	}

	source, err := scn.Source(opts.lightName)
	if err != nil {
		return err
	}

	mesh, err := geometry.Merge(scn.Meshes)
	if err != nil {
		return err
	}
	logger.Printf("Loaded %d mesh objects (%d triangles)", len(scn.Meshes), mesh.TriangleCount())

	r, err := renderer.NewRenderer(mesh, source, opts.width, opts.height, logger)
	if err != nil {
		return err
	}

	records := r.Render(opts.workers)

	if err := renderer.WriteRecords(opts.outputPath, records); err != nil {
		return err
	}

	logger.Printf("Wrote %s and %s.real.xyz in %v", opts.outputPath, opts.outputPath, time.Since(start))
	return nil
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "depthcast: %v\n", err)
		os.Exit(2)
	}

	var logger core.Logger = log.New(os.Stdout, "", 0)
	if opts.quiet {
		logger = log.New(io.Discard, "", 0)
	}

	if err := run(opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "depthcast: %v\n", err)
		os.Exit(1)
	}
}
