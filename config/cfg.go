package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	LibraryConfig struct {
		BooksDir string `yaml:"books_dir" sanitize:"path_clean" validate:"required"`
		// Images referenced by content files are resolved against this
		// directory, books directory is used when empty.
		ResourcesDir string   `yaml:"resources_dir,omitempty"`
		ShowTest     bool     `yaml:"show_test"`
		Bundles      bool     `yaml:"bundles"`
		Extensions   []string `yaml:"extensions" validate:"min=1,dive,required,startswith=."`
	}

	ContentConfig struct {
		TabWidth  int  `yaml:"tab_width" validate:"gte=0,lte=32"`
		Normalize bool `yaml:"normalize"`
		// SVG images have no natural raster size, they are rasterized to fit
		// this box.
		SVGSize int `yaml:"svg_size" validate:"min=16,max=8192"`
	}

	ReaderConfig struct {
		Audio         bool          `yaml:"audio"`
		Autoplay      bool          `yaml:"autoplay"`
		AutoplayDelay time.Duration `yaml:"autoplay_delay"`
		StreamingMode bool          `yaml:"streaming_mode"`
		CharInterval  float64       `yaml:"char_interval" validate:"gt=0,lte=1"`
	}

	RenderConfig struct {
		Width      int     `yaml:"width" validate:"min=320"`
		Height     int     `yaml:"height" validate:"min=240"`
		Margin     int     `yaml:"margin" validate:"gte=0"`
		FontSize   float64 `yaml:"font_size" validate:"gt=0"`
		Background string  `yaml:"background" validate:"required"`
		Cover      string  `yaml:"cover" validate:"required"`
		Paper      string  `yaml:"paper" validate:"required"`
		Ink        string  `yaml:"ink" validate:"required"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Library   LibraryConfig  `yaml:"library"`
		Content   ContentConfig  `yaml:"content"`
		Reader    ReaderConfig   `yaml:"reader"`
		Render    RenderConfig   `yaml:"render"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// DefaultTabWidth is used when content configuration is not available.
const DefaultTabWidth = 10

// DefaultAutoplayDelay is pause between fully revealed spread and automatic
// page turn.
const DefaultAutoplayDelay = 2 * time.Second

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// ResourceRoot returns directory images and narration are resolved against.
func (conf *LibraryConfig) ResourceRoot() string {
	if len(conf.ResourcesDir) == 0 {
		return conf.BooksDir
	}
	return conf.ResourcesDir
}

// Delay returns autoplay delay falling back to default for unset values.
func (conf *ReaderConfig) Delay() time.Duration {
	if conf.AutoplayDelay <= 0 {
		return DefaultAutoplayDelay
	}
	return conf.AutoplayDelay
}
