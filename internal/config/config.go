// Package config loads polybench's project-level settings (polybench.yaml):
// cache/output locations, per-language runtime-env roots, chart defaults,
// and the Anvil node binary. Grounded on the teacher's
// internal/pkg/config/config.go: embed defaults, decode YAML into an `any`
// tree, then map onto typed structs with mapstructure.
package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"go.yaml.in/yaml/v3"

	"github.com/polybench/polybench/internal/dsl"
)

//go:embed default_config.yaml
var efs embed.FS

// Config holds polybench's project-level settings.
type Config struct {
	CacheDir    string
	OutputDir   string
	Report      ReportConfig
	Chart       ChartConfig
	Anvil       AnvilConfig
	RuntimeEnvs map[dsl.Lang]string `mapstructure:"runtime_envs"`
}

// ReportConfig controls the default report format and destination.
type ReportConfig struct {
	Format string // console | markdown | json
}

// ChartConfig carries the default chart theme and canvas size, overridable
// per ChartDirective.
type ChartConfig struct {
	Theme        string // dark | light
	Width        int
	Height       int
	Dashboard    bool // whether `run` also emits the go-echarts HTML dashboard
	DashboardPNG bool
}

// AnvilConfig locates the Anvil binary and the default fork URL, used when
// a suite's global_setup declares `anvil` without overriding the fork URL.
type AnvilConfig struct {
	BinaryPath  string
	DefaultFork string
	StartupWait string // duration string, e.g. "2s"
}

// Load reads a polybench.yaml from disk, layered over the embedded
// defaults.
func Load(file string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	fsys := os.DirFS(filepath.Dir(file))
	pth := filepath.Join(".", filepath.Base(file))

	return load(fsys, pth, cfg)
}

// LoadDefaults returns the embedded default configuration, with no project
// file layered on top.
func LoadDefaults() (*Config, error) {
	return loadDefaults()
}

func loadDefaults() (*Config, error) {
	return load(efs, "default_config.yaml", &Config{})
}

func load(fsys fs.FS, file string, cfg *Config) (*Config, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", file, err)
	}

	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", file, err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", file, err)
	}

	if cfg.RuntimeEnvs == nil {
		cfg.RuntimeEnvs = make(map[dsl.Lang]string)
	}

	return cfg, nil
}
