package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Render.Width != 1280 || cfg.Render.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.RenderScale != 2 {
		t.Errorf("expected render scale 2, got %d", cfg.Render.RenderScale)
	}
	if !cfg.Render.SoftSampling {
		t.Error("expected soft sampling by default")
	}
	if cfg.Render.ClearColor != [4]float32{0.5, 0.6, 0.9, 1} {
		t.Errorf("unexpected clear color %v", cfg.Render.ClearColor)
	}

	if cfg.SSAO.Radius != 0.8 {
		t.Errorf("expected ssao radius 0.8, got %f", cfg.SSAO.Radius)
	}
	if cfg.SSAO.Bias != 0.005 {
		t.Errorf("expected ssao bias 0.005, got %f", cfg.SSAO.Bias)
	}
	if cfg.SSAO.NoiseSize != 256 {
		t.Errorf("expected noise size 256, got %d", cfg.SSAO.NoiseSize)
	}

	if cfg.Atlas.Dir != "" {
		t.Errorf("expected procedural atlas by default, got dir %s", cfg.Atlas.Dir)
	}
	if len(cfg.Atlas.Textures) != 5 {
		t.Errorf("expected 5 default textures, got %v", cfg.Atlas.Textures)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestRenderSize(t *testing.T) {
	tests := []struct {
		w, h, scale  int
		wantW, wantH int
	}{
		{1280, 720, 2, 640, 360},
		{1280, 720, 1, 1280, 720},
		{801, 601, 2, 400, 300},
		{1, 1, 4, 1, 1},
		{100, 100, 0, 100, 100},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Render.Width, cfg.Render.Height, cfg.Render.RenderScale = tt.w, tt.h, tt.scale
		w, h := cfg.RenderSize()
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("%dx%d/%d: got %dx%d, want %dx%d", tt.w, tt.h, tt.scale, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
render:
  width: 1920
  height: 1080
  render_scale: 1
  workers: 4
  soft_sampling: false
  clear_color: [0, 0, 0, 1]

ssao:
  radius: 1.5
  bias: 0.25
  noise_size: 64
  seed: 42

atlas:
  dir: "textures"
  textures: ["stone", "wire"]

output:
  dir: "renders"
  prefix: "shot"
  frames: 3
  stages: true

logging:
  level: "debug"
  format: "json"
  log_file: "render.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Render.Width != 1920 || cfg.Render.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.RenderScale != 1 || cfg.Render.Workers != 4 {
		t.Errorf("unexpected render settings %+v", cfg.Render)
	}
	if cfg.Render.SoftSampling {
		t.Error("expected soft sampling to be disabled")
	}
	if cfg.Render.ClearColor != [4]float32{0, 0, 0, 1} {
		t.Errorf("unexpected clear color %v", cfg.Render.ClearColor)
	}
	// Keys absent from the file keep their defaults
	if !cfg.Render.VSync {
		t.Error("expected vsync default to survive")
	}

	if cfg.SSAO.Radius != 1.5 || cfg.SSAO.Bias != 0.25 || cfg.SSAO.NoiseSize != 64 || cfg.SSAO.Seed != 42 {
		t.Errorf("unexpected ssao settings %+v", cfg.SSAO)
	}
	if cfg.Atlas.Dir != "textures" || len(cfg.Atlas.Textures) != 2 {
		t.Errorf("unexpected atlas settings %+v", cfg.Atlas)
	}
	if cfg.Output.Dir != "renders" || cfg.Output.Prefix != "shot" || cfg.Output.Frames != 3 || !cfg.Output.Stages {
		t.Errorf("unexpected output settings %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.LogFile != "render.log" {
		t.Errorf("unexpected logging settings %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
render:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"negative height", func(c *Config) { c.Render.Height = -1 }},
		{"zero scale", func(c *Config) { c.Render.RenderScale = 0 }},
		{"zero noise", func(c *Config) { c.SSAO.NoiseSize = 0 }},
		{"zero radius", func(c *Config) { c.SSAO.Radius = 0 }},
		{"no textures", func(c *Config) { c.Atlas.Textures = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "xenotech.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find xenotech.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "size and scale flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
				*flagScale = 4
			},
			verify: func(t *testing.T, cfg *Config) {
				if w, h := cfg.RenderSize(); w != 640 || h != 360 {
					t.Errorf("expected render size 640x360, got %dx%d", w, h)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
				*flagScale = 0
			},
		},
		{
			name:  "point sampling flag",
			setup: func() { *flagPoint = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.SoftSampling {
					t.Error("expected soft sampling off with point flag")
				}
			},
			teardown: func() { *flagPoint = false },
		},
		{
			name: "output flags",
			setup: func() {
				*flagOut = "/tmp/renders"
				*flagFrames = 5
				*flagStages = true
				*flagAtlas = "assets"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Dir != "/tmp/renders" || cfg.Output.Frames != 5 || !cfg.Output.Stages {
					t.Errorf("unexpected output settings %+v", cfg.Output)
				}
				if cfg.Atlas.Dir != "assets" {
					t.Errorf("expected atlas dir assets, got %s", cfg.Atlas.Dir)
				}
			},
			teardown: func() {
				*flagOut = ""
				*flagFrames = 0
				*flagStages = false
				*flagAtlas = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
render:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Render.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Render.Width)
	}
	if cfg.Render.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Render.Height)
	}
	if cfg.SSAO.Radius != 0.8 {
		t.Errorf("expected default ssao radius, got %f", cfg.SSAO.Radius)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Render.Width = 320
	cfg.SSAO.Seed = 7
	cfg.Atlas.Textures = []string{"stone"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Render.Width != 320 || loaded.SSAO.Seed != 7 || len(loaded.Atlas.Textures) != 1 {
		t.Errorf("saved config did not survive reload: %+v", loaded)
	}
}
