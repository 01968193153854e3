// Package config loads and stores the panel configuration as YAML.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/epaper"
	"github.com/BeatGlow/epaper/glyph"
	"github.com/BeatGlow/epaper/internal/log"
	"github.com/BeatGlow/epaper/pixel"
)

// Bus names.
const (
	BusBitBang = "bitbang"
	BusSPI     = "spi"
)

// ErrPin is returned for pin names the GPIO registry does not know.
var ErrPin = errors.New("config: unknown GPIO pin")

// PinsConfig names the GPIO pins as known to the periph registry, e.g. "GPIO17".
type PinsConfig struct {
	Clock      string `yaml:"clock,omitempty"`
	Data       string `yaml:"data,omitempty"`
	ChipSelect string `yaml:"cs"`
	DC         string `yaml:"dc"`
	Reset      string `yaml:"reset"`
	Busy       string `yaml:"busy"`
}

// SPIConfig holds the hardware SPI settings.
type SPIConfig struct {
	// Port is the periph port name, empty selects the first port.
	Port      string `yaml:"port,omitempty"`
	SpeedHz   int64  `yaml:"speed_hz"`
	BatchSize int    `yaml:"batch_size"`
}

// GlyphConfig is a dynamic glyph, Bitmap holds hex encoded rows with the leftmost
// pixel in the most significant bit.
type GlyphConfig struct {
	Key    string `yaml:"key"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Bitmap string `yaml:"bitmap"`
}

// PlacementConfig places a dynamic glyph by index.
type PlacementConfig struct {
	Glyph int `yaml:"glyph"`
	X     int `yaml:"x"`
	Y     int `yaml:"y"`
}

// Config is the top-level application configuration.
type Config struct {
	// Variant is the panel name, see epaper.VariantNames.
	Variant string `yaml:"variant"`

	// Bus is either "bitbang" or "spi".
	Bus  string     `yaml:"bus"`
	Pins PinsConfig `yaml:"pins"`
	SPI  SPIConfig  `yaml:"spi"`

	// ClockHz limits the bit-banged clock, zero toggles as fast as possible.
	ClockHz int64 `yaml:"clock_hz,omitempty"`

	// Rotation in degrees: 0, 90, 180 or 270.
	Rotation string `yaml:"rotation"`

	// Mode is the refresh mode: full, partial or gray4.
	Mode string `yaml:"mode"`

	Text     string `yaml:"text"`
	FontSize int    `yaml:"font_size"`
	OriginX  int    `yaml:"origin_x"`
	OriginY  int    `yaml:"origin_y"`

	// Picture is an optional PNG or JPEG drawn instead of the text.
	Picture string `yaml:"picture,omitempty"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *"), empty
	// refreshes once.
	RefreshCron string `yaml:"refresh"`

	// DeepSleep puts the panel to sleep after every refresh.
	DeepSleep bool `yaml:"deep_sleep"`

	LogLevel string `yaml:"log_level"`

	Glyphs     []GlyphConfig     `yaml:"glyphs"`
	Placements []PlacementConfig `yaml:"placements"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Variant: "color4in352",
		Bus:     BusBitBang,
		Pins: PinsConfig{
			Clock:      "GPIO11",
			Data:       "GPIO10",
			ChipSelect: "GPIO8",
			DC:         "GPIO25",
			Reset:      "GPIO17",
			Busy:       "GPIO24",
		},
		SPI: SPIConfig{
			SpeedHz:   int64(epaper.DefaultSPIConfig.MaxSpeed / physic.Hertz),
			BatchSize: epaper.DefaultSPIConfig.BatchSize,
		},
		Rotation:    "0",
		Mode:        "full",
		Text:        "Hello",
		FontSize:    epaper.DefaultLayout.Size,
		RefreshCron: "",
		DeepSleep:   true,
		LogLevel:    "info",
		Glyphs:      []GlyphConfig{},
		Placements:  []PlacementConfig{},
	}
}

// Normalize fills in missing values so partially filled files still work.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Variant == "" {
		c.Variant = def.Variant
	}
	c.Bus = strings.ToLower(c.Bus)
	switch c.Bus {
	case BusBitBang, BusSPI:
	case "":
		c.Bus = def.Bus
	default:
		// Left as is, Validate reports it.
	}
	if c.SPI.SpeedHz <= 0 {
		c.SPI.SpeedHz = def.SPI.SpeedHz
	}
	if c.SPI.BatchSize <= 0 {
		c.SPI.BatchSize = def.SPI.BatchSize
	}
	if c.Rotation == "" {
		c.Rotation = def.Rotation
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Glyphs == nil {
		c.Glyphs = []GlyphConfig{}
	}
	if c.Placements == nil {
		c.Placements = []PlacementConfig{}
	}
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	var errs []error
	if _, err := epaper.LookupVariant(c.Variant); err != nil {
		errs = append(errs, err)
	}
	if c.Bus != BusBitBang && c.Bus != BusSPI {
		errs = append(errs, fmt.Errorf("config: unknown bus %q", c.Bus))
	}
	if _, err := pixel.ParseRotation(c.Rotation); err != nil {
		errs = append(errs, err)
	}
	if _, err := epaper.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := c.DynamicGlyphs(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load reads the configuration from path. If the file does not exist, a default
// configuration is written there and returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			log.Info("created default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".epaper-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Layout converts the drawing settings.
func (c *Config) Layout() (epaper.Layout, error) {
	mode, err := epaper.ParseMode(c.Mode)
	if err != nil {
		return epaper.Layout{}, err
	}
	return epaper.Layout{
		Origin: image.Pt(c.OriginX, c.OriginY),
		Size:   c.FontSize,
		Mode:   mode,
		Sleep:  c.DeepSleep,
	}, nil
}

// DynamicGlyphs decodes the configured glyphs and placements.
func (c *Config) DynamicGlyphs() ([]glyph.Glyph, []glyph.Placement, error) {
	glyphs := make([]glyph.Glyph, 0, len(c.Glyphs))
	for i, g := range c.Glyphs {
		v, err := g.Glyph()
		if err != nil {
			return nil, nil, fmt.Errorf("config: glyph %d: %w", i, err)
		}
		glyphs = append(glyphs, v)
	}
	placements := make([]glyph.Placement, 0, len(c.Placements))
	for _, p := range c.Placements {
		placements = append(placements, glyph.Placement{Index: p.Glyph, X: p.X, Y: p.Y})
	}
	return glyphs, placements, nil
}

// Glyph decodes the hex bitmap.
func (g GlyphConfig) Glyph() (glyph.Glyph, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return glyph.Glyph{}, fmt.Errorf("%w: invalid size %dx%d", glyph.ErrSize, g.Width, g.Height)
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(g.Bitmap), ""))
	if err != nil {
		return glyph.Glyph{}, err
	}
	if need := glyph.RowMSB.Size(g.Width, g.Height); len(data) < need {
		return glyph.Glyph{}, fmt.Errorf("%w: %dx%d needs %d bytes, got %d", glyph.ErrPlacement, g.Width, g.Height, need, len(data))
	}
	return glyph.Glyph{Key: g.Key, Width: g.Width, Height: g.Height, Data: data}, nil
}

// Open resolves the pins and opens the configured bus. The periph host drivers
// must be initialized.
func (c *Config) Open() (epaper.Conn, error) {
	variant, err := epaper.LookupVariant(c.Variant)
	if err != nil {
		return nil, err
	}

	var r resolver
	switch c.Bus {
	case BusBitBang:
		bb := &epaper.BitBangConfig{
			Clock:      r.pin("clock", c.Pins.Clock),
			Data:       r.pin("data", c.Pins.Data),
			ChipSelect: r.pin("cs", c.Pins.ChipSelect),
			DC:         r.pin("dc", c.Pins.DC),
			Reset:      r.pin("reset", c.Pins.Reset),
			Busy:       r.pin("busy", c.Pins.Busy),
			Sequence:   variant.Sequence,
			MaxSpeed:   physic.Frequency(c.ClockHz) * physic.Hertz,
		}
		if r.err != nil {
			return nil, r.err
		}
		return epaper.OpenBitBang(bb)

	case BusSPI:
		sc := epaper.DefaultSPIConfig
		sc.Port = c.SPI.Port
		sc.MaxSpeed = physic.Frequency(c.SPI.SpeedHz) * physic.Hertz
		sc.BatchSize = c.SPI.BatchSize
		sc.CS = r.optional("cs", c.Pins.ChipSelect)
		sc.DC = r.pin("dc", c.Pins.DC)
		sc.Reset = r.pin("reset", c.Pins.Reset)
		sc.Busy = r.pin("busy", c.Pins.Busy)
		if r.err != nil {
			return nil, r.err
		}
		return epaper.OpenSPI(&sc)

	default:
		return nil, fmt.Errorf("config: unknown bus %q", c.Bus)
	}
}

// resolver looks up pins and keeps the first error.
type resolver struct {
	err error
}

func (r *resolver) pin(role, name string) gpio.PinIO {
	if r.err != nil {
		return nil
	}
	if name == "" {
		r.err = fmt.Errorf("%w: no %s pin configured", ErrPin, role)
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		r.err = fmt.Errorf("%w: %s pin %q", ErrPin, role, name)
	}
	return p
}

// optional resolves a pin that may be left empty, e.g. a chip select driven by the
// SPI controller.
func (r *resolver) optional(role, name string) gpio.PinIO {
	if name == "" {
		return nil
	}
	return r.pin(role, name)
}
