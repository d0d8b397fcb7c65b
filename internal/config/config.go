// Package config handles renderer configuration loading and management.
package config

// Config holds all renderer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	SSAO    SSAOConfig    `yaml:"ssao"`
	Atlas   AtlasConfig   `yaml:"atlas"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds display and pipeline settings.
type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// RenderScale divides the display size to get the pipeline resolution.
	RenderScale  int        `yaml:"render_scale"`
	Workers      int        `yaml:"workers"` // 0 uses GOMAXPROCS
	SoftSampling bool       `yaml:"soft_sampling"`
	ClearColor   [4]float32 `yaml:"clear_color"`
	VSync        bool       `yaml:"vsync"`
}

// SSAOConfig holds ambient occlusion parameters.
type SSAOConfig struct {
	Radius    float32 `yaml:"radius"`
	Bias      float32 `yaml:"bias"`
	NoiseSize int     `yaml:"noise_size"`
	Seed      uint64  `yaml:"seed"`
}

// AtlasConfig selects block textures. An empty Dir uses procedural tiles.
type AtlasConfig struct {
	Dir      string   `yaml:"dir"`
	Textures []string `yaml:"textures"`
}

// OutputConfig controls headless PNG output.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Frames int    `yaml:"frames"`
	// Stages also writes the intermediate images of the last frame.
	Stages bool `yaml:"stages"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:        1280,
			Height:       720,
			RenderScale:  2,
			Workers:      0,
			SoftSampling: true,
			ClearColor:   [4]float32{0.5, 0.6, 0.9, 1},
			VSync:        true,
		},
		SSAO: SSAOConfig{
			Radius:    0.8,
			Bias:      0.005,
			NoiseSize: 256,
			Seed:      1,
		},
		Atlas: AtlasConfig{
			Textures: []string{"stone", "machine_front", "machine_side", "wire", "source"},
		},
		Output: OutputConfig{
			Dir:    "out",
			Prefix: "frame",
			Frames: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// RenderSize returns the pipeline resolution: the display size divided by
// the render scale, never smaller than one pixel.
func (c *Config) RenderSize() (int, int) {
	scale := c.Render.RenderScale
	if scale < 1 {
		scale = 1
	}
	w := max(c.Render.Width/scale, 1)
	h := max(c.Render.Height/scale, 1)
	return w, h
}
