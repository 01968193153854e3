package config

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/BeatGlow/epaper"
	"github.com/BeatGlow/epaper/glyph"
)

func TestLoad(t *testing.T) {
	t.Run("first run", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "etc", "epaper.yaml")
		cfg, err := Load(path)
		if err != nil {
			it.Fatal(err)
		}
		if cfg.Variant != DefaultConfig().Variant {
			it.Errorf("expected the default variant, got %q", cfg.Variant)
		}
		info, err := os.Stat(path)
		if err != nil {
			it.Fatal(err)
		}
		if mode := info.Mode().Perm(); mode != 0o600 {
			it.Errorf("expected mode 0600, got %o", mode)
		}
	})

	t.Run("round trip", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "epaper.yaml")
		cfg := DefaultConfig()
		cfg.Variant = "ssd1680gray"
		cfg.Bus = BusSPI
		cfg.Mode = "gray4"
		cfg.Text = "中 12"
		cfg.Glyphs = []GlyphConfig{{Key: "dot", Width: 2, Height: 2, Bitmap: "c0 c0"}}
		cfg.Placements = []PlacementConfig{{Glyph: 0, X: 10, Y: 20}}
		if err := cfg.Save(path); err != nil {
			it.Fatal(err)
		}

		got, err := Load(path)
		if err != nil {
			it.Fatal(err)
		}
		if got.Variant != cfg.Variant || got.Bus != cfg.Bus || got.Mode != cfg.Mode || got.Text != cfg.Text {
			it.Errorf("expected %+v, got %+v", cfg, got)
		}
		if len(got.Glyphs) != 1 || got.Glyphs[0].Bitmap != "c0 c0" {
			it.Errorf("unexpected glyphs %+v", got.Glyphs)
		}
		if err = got.Validate(); err != nil {
			it.Error(err)
		}
	})

	t.Run("invalid", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "epaper.yaml")
		if err := os.WriteFile(path, []byte("variant: [\n"), 0o600); err != nil {
			it.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			it.Error("expected a parse error")
		}
	})
}

func TestNormalize(t *testing.T) {
	cfg := &Config{Bus: "SPI", FontSize: -1}
	cfg.Normalize()

	def := DefaultConfig()
	tests := []struct {
		Name string
		Got  any
		Want any
	}{
		{"variant", cfg.Variant, def.Variant},
		{"bus", cfg.Bus, BusSPI},
		{"speed", cfg.SPI.SpeedHz, def.SPI.SpeedHz},
		{"batch", cfg.SPI.BatchSize, def.SPI.BatchSize},
		{"rotation", cfg.Rotation, "0"},
		{"mode", cfg.Mode, "full"},
		{"font size", cfg.FontSize, epaper.DefaultLayout.Size},
		{"log level", cfg.LogLevel, "info"},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			if test.Got != test.Want {
				it.Errorf("expected %v, got %v", test.Want, test.Got)
			}
		})
	}
	if cfg.Glyphs == nil || cfg.Placements == nil {
		t.Error("expected empty glyph lists")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		Name   string
		Change func(*Config)
	}{
		{"variant", func(c *Config) { c.Variant = "ssd9999" }},
		{"bus", func(c *Config) { c.Bus = "i2c" }},
		{"rotation", func(c *Config) { c.Rotation = "45" }},
		{"mode", func(c *Config) { c.Mode = "sepia" }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"glyph", func(c *Config) { c.Glyphs = []GlyphConfig{{Width: 8, Height: 2, Bitmap: "zz"}} }},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			cfg := DefaultConfig()
			test.Change(cfg)
			if err := cfg.Validate(); err == nil {
				it.Error("expected an error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected the default config to be valid, got %v", err)
	}
}

func TestLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "partial"
	cfg.OriginX, cfg.OriginY = 3, 7
	cfg.FontSize = 24
	cfg.DeepSleep = false

	l, err := cfg.Layout()
	if err != nil {
		t.Fatal(err)
	}
	if l.Mode != epaper.Partial || l.Origin != image.Pt(3, 7) || l.Size != 24 || l.Sleep {
		t.Errorf("unexpected layout %+v", l)
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		Name   string
		Config GlyphConfig
		Want   []byte
		Err    error
	}{
		{"spaced", GlyphConfig{Key: "a", Width: 9, Height: 2, Bitmap: "ff80 0080"}, []byte{0xff, 0x80, 0x00, 0x80}, nil},
		{"short", GlyphConfig{Width: 9, Height: 2, Bitmap: "ff80"}, nil, glyph.ErrPlacement},
		{"size", GlyphConfig{Width: 0, Height: 2, Bitmap: "ff"}, nil, glyph.ErrSize},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			g, err := test.Config.Glyph()
			if test.Err != nil {
				if !errors.Is(err, test.Err) {
					it.Errorf("expected %v, got %v", test.Err, err)
				}
				return
			}
			if err != nil {
				it.Fatal(err)
			}
			if !bytes.Equal(g.Data, test.Want) || g.Key != test.Config.Key {
				it.Errorf("expected %x, got %+v", test.Want, g)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	for _, name := range []string{"CFG_CLK", "CFG_SDA", "CFG_CS", "CFG_DC", "CFG_RST", "CFG_BUSY"} {
		if err := gpioreg.Register(&gpiotest.Pin{N: name}); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = gpioreg.Unregister(name) })
	}

	cfg := DefaultConfig()
	cfg.Pins = PinsConfig{
		Clock:      "CFG_CLK",
		Data:       "CFG_SDA",
		ChipSelect: "CFG_CS",
		DC:         "CFG_DC",
		Reset:      "CFG_RST",
		Busy:       "CFG_BUSY",
	}
	c, err := cfg.Open()
	if err != nil {
		t.Fatal(err)
	}
	if err = c.Command(0x12); err != nil {
		t.Error(err)
	}
	_ = c.Close()

	t.Run("missing pin", func(it *testing.T) {
		cfg := DefaultConfig()
		cfg.Pins.DC = "CFG_NOPE"
		if _, err := cfg.Open(); !errors.Is(err, ErrPin) {
			it.Errorf("expected ErrPin, got %v", err)
		}
	})

	t.Run("unknown bus", func(it *testing.T) {
		cfg := DefaultConfig()
		cfg.Bus = "i2c"
		if _, err := cfg.Open(); err == nil {
			it.Error("expected an error")
		}
	})
}
