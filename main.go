package main

import (
	// standard library
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	// third-party
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	// internal
	"github.com/rmitchellscott/palettedither/internal/config"
	"github.com/rmitchellscott/palettedither/internal/dither"
	"github.com/rmitchellscott/palettedither/internal/imageprocessing"
	"github.com/rmitchellscott/palettedither/internal/logging"
	"github.com/rmitchellscott/palettedither/internal/palette"
	"github.com/rmitchellscott/palettedither/internal/storage"
	"github.com/rmitchellscott/palettedither/internal/version"
)

type cliOptions struct {
	settings     config.Settings
	listProfiles bool
	showVersion  bool
	input        string
	output       string
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] INPUT [OUTPUT]\n\n", fs.Name())
		fmt.Fprintln(fs.Output(), "INPUT is an image path or http(s) URL. OUTPUT is a PNG path,")
		fmt.Fprintln(fs.Output(), "a directory (content-addressed file name), or - for stdout.")
		fmt.Fprintln(fs.Output(), "Without OUTPUT the result is stored in OUTPUT_DIR.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
}

func parseFlags(args []string, settings config.Settings) (cliOptions, error) {
	opts := cliOptions{settings: settings}
	s := &opts.settings

	fs := flag.NewFlagSet("palettedither", flag.ContinueOnError)
	fs.Usage = usage(fs)
	fs.StringVar(&s.PaletteImage, "palette", s.PaletteImage, "image whose distinct colors form the palette")
	fs.StringVar(&s.Profile, "profile", s.Profile, "named palette profile")
	fs.StringVar(&s.ProfilesFile, "profiles", s.ProfilesFile, "YAML file with additional palette profiles")
	fs.IntVar(&s.Order, "order", s.Order, "threshold matrix order (matrix side is 2^order)")
	fs.StringVar(&s.Mode, "mode", s.Mode, "dither mode: "+strings.Join(modeNames(), ", "))
	fs.Float64Var(&s.Strength, "strength", s.Strength, "strength for bayer and floyd-steinberg modes")
	fs.IntVar(&s.Workers, "workers", s.Workers, "number of dither workers")
	fs.IntVar(&s.CacheSize, "cache", s.CacheSize, "per-worker color cache entries (0 disables)")
	fs.IntVar(&s.Width, "width", s.Width, "output width (0 keeps or derives from height)")
	fs.IntVar(&s.Height, "height", s.Height, "output height (0 keeps or derives from width)")
	fs.StringVar(&s.Resize, "resize", s.Resize, "resize mode: none, fit, fill")
	fs.DurationVar(&s.DownloadTimeout, "timeout", s.DownloadTimeout, "download timeout for URL inputs")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "log format: text, json")
	fs.BoolVar(&opts.listProfiles, "list-profiles", false, "list palette profiles and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	s.Mode = strings.ToLower(s.Mode)
	s.Resize = strings.ToLower(s.Resize)

	if opts.listProfiles || opts.showVersion {
		return opts, nil
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return opts, errors.New("expected INPUT and optional OUTPUT arguments")
	}
	opts.input, opts.output = fs.Arg(0), fs.Arg(1)

	if mode, err := dither.ParseMode(s.Mode); err == nil {
		s.Mode = string(mode)
	}
	return opts, s.Validate()
}

func modeNames() []string {
	names := make([]string, len(dither.Modes))
	for i, m := range dither.Modes {
		names[i] = string(m)
	}
	return names
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:], config.Load())
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	logging.Setup(logging.Options{Level: opts.settings.LogLevel, Format: opts.settings.LogFormat})

	if err != nil {
		logging.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Println(version.Long())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		logging.Error("Dithering failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions, stdout io.Writer) error {
	s := opts.settings

	profiles, err := palette.NewProfileManager()
	if err != nil {
		return fmt.Errorf("failed to load built-in profiles: %w", err)
	}
	if s.ProfilesFile != "" {
		if err := profiles.LoadFile(s.ProfilesFile); err != nil {
			return err
		}
	}

	if opts.listProfiles {
		for _, name := range profiles.Names() {
			p, _ := profiles.Get(name)
			fmt.Fprintf(stdout, "%-10s %2d colors  %s\n", p.Name, len(p.Colors), p.Description)
		}
		return nil
	}

	runID := uuid.New()
	log := logging.With("run_id", runID.String())
	start := time.Now()
	logging.DebugWithComponent(logging.ComponentStartup, "Starting run",
		"run_id", runID.String(),
		"version", version.String(),
		"mode", s.Mode,
		"order", s.Order,
		"workers", s.Workers)

	policy := imageprocessing.URLPolicyFromEnv()
	img, format, err := imageprocessing.Load(ctx, opts.input, s.DownloadTimeout, policy)
	if err != nil {
		return err
	}
	log.Info("Loaded input", "source", opts.input, "format", format, "bounds", img.Bounds().String())

	p, width, height, err := resolvePalette(ctx, s, profiles, policy)
	if err != nil {
		return err
	}
	if s.Width == 0 && s.Height == 0 {
		s.Width, s.Height = width, height
	}

	procOpts, err := processingOptions(s)
	if err != nil {
		return err
	}
	out, err := imageprocessing.Process(ctx, img, p, procOpts)
	if err != nil {
		return err
	}

	data, err := imageprocessing.EncodeIndexedPNG(out)
	if err != nil {
		return err
	}

	dest, err := writeOutput(ctx, opts.output, outputPrefix(s, opts.input), data, stdout)
	if err != nil {
		return err
	}

	log.Info("Dithering complete",
		"output", dest,
		"colors", p.Len(),
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"mode", procOpts.Dither.Mode,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// resolvePalette returns the palette plus the canvas size of an explicitly
// chosen profile, if it has one
func resolvePalette(ctx context.Context, s config.Settings, profiles *palette.ProfileManager, policy imageprocessing.URLPolicy) (*palette.Palette, int, int, error) {
	if s.PaletteImage != "" {
		img, _, err := imageprocessing.Load(ctx, s.PaletteImage, s.DownloadTimeout, policy)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to load palette image: %w", err)
		}
		p, err := imageprocessing.PaletteFromImage(img)
		if err != nil {
			return nil, 0, 0, err
		}
		logging.InfoWithComponent(logging.ComponentPalette, "Palette extracted from image", "source", s.PaletteImage, "colors", p.Len())
		return p, 0, 0, nil
	}

	name := s.Profile
	if name == "" {
		name = "bw"
	}
	profile, ok := profiles.Get(name)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: %s (available: %s)", palette.ErrUnknownProfile, name, strings.Join(profiles.Names(), ", "))
	}
	p, err := profile.Palette()
	if err != nil {
		return nil, 0, 0, err
	}
	logging.InfoWithComponent(logging.ComponentPalette, "Using palette profile", "profile", profile.Name, "colors", p.Len())
	if s.Profile == "" {
		// implicit default keeps the input size
		return p, 0, 0, nil
	}
	return p, profile.Width, profile.Height, nil
}

func processingOptions(s config.Settings) (imageprocessing.ProcessingOptions, error) {
	opts := imageprocessing.DefaultProcessingOptions()

	mode, err := dither.ParseMode(s.Mode)
	if err != nil {
		return opts, err
	}
	resize, err := imageprocessing.ParseResizeMode(s.Resize)
	if err != nil {
		return opts, err
	}
	if resize == imageprocessing.ResizeNone && (s.Width > 0 || s.Height > 0) {
		resize = imageprocessing.ResizeFit
	}

	opts.Width, opts.Height, opts.Resize = s.Width, s.Height, resize
	opts.Order = s.Order
	opts.Timeout = s.DownloadTimeout
	opts.Dither.Mode = mode
	opts.Dither.Workers = s.Workers
	opts.Dither.CacheSize = s.CacheSize
	opts.Dither.Strength = float32(s.Strength)
	opts.Dither.Logger = logging.ForComponent(logging.ComponentDither)
	return opts, nil
}

func outputPrefix(s config.Settings, input string) string {
	if s.Profile != "" {
		return s.Profile
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeOutput writes to stdout for "-", into a directory under a
// content-addressed name, or to the given file path. An empty output uses the
// default output storage.
func writeOutput(ctx context.Context, output, prefix string, data []byte, stdout io.Writer) (string, error) {
	if output == "" {
		out := storage.DefaultOutputStorage()
		key, err := out.Store(ctx, data, prefix)
		if err != nil {
			return "", err
		}
		if retention := config.GetDuration("OUTPUT_RETENTION", 0); retention > 0 {
			if removed, err := out.Cleanup(ctx, retention); err != nil {
				logging.WarnWithComponent(logging.ComponentStorage, "Output cleanup failed", "error", err)
			} else if removed > 0 {
				logging.InfoWithComponent(logging.ComponentStorage, "Removed old outputs", "count", removed)
			}
		}
		return key, nil
	}
	if output == "-" {
		if _, err := stdout.Write(data); err != nil {
			return "", fmt.Errorf("failed to write to stdout: %w", err)
		}
		return "stdout", nil
	}

	info, err := os.Stat(output)
	if (err == nil && info.IsDir()) || strings.HasSuffix(output, string(filepath.Separator)) {
		key, err := storage.NewOutputStorage(storage.NewFilesystemBackend(output)).Store(ctx, data, prefix)
		if err != nil {
			return "", err
		}
		return filepath.Join(output, key), nil
	}

	if err := storage.WriteFile(ctx, output, data); err != nil {
		return "", err
	}
	return output, nil
}
