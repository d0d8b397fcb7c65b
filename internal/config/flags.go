package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagWidth  = flag.Int("width", 0, "Display width")
	flagHeight = flag.Int("height", 0, "Display height")
	flagScale  = flag.Int("scale", 0, "Render scale divisor")
	flagAtlas  = flag.String("atlas", "", "Directory of block textures")
	flagOut    = flag.String("out", "", "Output directory for rendered frames")
	flagFrames = flag.Int("frames", 0, "Number of frames to render")
	flagPoint  = flag.Bool("point", false, "Use point atlas sampling")
	flagStages = flag.Bool("stages", false, "Also write intermediate stage images")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagScale > 0 {
		cfg.Render.RenderScale = *flagScale
	}
	if *flagAtlas != "" {
		cfg.Atlas.Dir = *flagAtlas
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagFrames > 0 {
		cfg.Output.Frames = *flagFrames
	}
	if *flagPoint {
		cfg.Render.SoftSampling = false
	}
	if *flagStages {
		cfg.Output.Stages = true
	}
}
