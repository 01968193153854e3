package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/epaper"
	"github.com/BeatGlow/epaper/glyph"
	"github.com/BeatGlow/epaper/internal/config"
	"github.com/BeatGlow/epaper/internal/log"
	"github.com/BeatGlow/epaper/pixel"
)

type flagConfig struct {
	configPath string
	once       bool
	picture    string
	text       string
	logLevel   string
}

func main() {
	if err := run(parseFlags()); err != nil {
		log.Error("epaper failed", err)
		os.Exit(1)
	}
}

func run(flags flagConfig) error {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", flags.configPath, err)
	}
	if flags.picture != "" {
		conf.Picture = flags.picture
	}
	if flags.text != "" {
		conf.Text = flags.text
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	if err = conf.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", flags.configPath, err)
	}
	level, _ := log.ParseLevel(conf.LogLevel)
	log.SetLevel(level)

	log.Info("effective config",
		"variant", conf.Variant,
		"bus", conf.Bus,
		"mode", conf.Mode,
		"rotation", conf.Rotation,
		"refresh", conf.RefreshCron,
		"glyphs", len(conf.Glyphs),
		"once", flags.once,
	)

	if _, err = host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host drivers: %w", err)
	}

	renderer, err := open(conf)
	if err != nil {
		return fmt.Errorf("failed to open panel: %w", err)
	}
	defer renderer.Panel.Close()
	log.Info("using panel", "panel", renderer.Panel.String())

	var mu sync.Mutex
	refresh := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := render(renderer, conf); err != nil {
			log.Error("refresh failed", err)
			return
		}
		log.Info("refresh done", "state", renderer.Panel.State().String())
	}

	if flags.once || conf.RefreshCron == "" {
		refresh()
		return nil
	}

	scheduler := cron.New()
	if _, err = scheduler.AddFunc(conf.RefreshCron, refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresh()
	scheduler.Start()

	<-ctx.Done()
	log.Info("signal received, shutting down")
	<-scheduler.Stop().Done()

	mu.Lock()
	defer mu.Unlock()
	if s := renderer.Panel.State(); s == epaper.Configured || s == epaper.Reset {
		if err = renderer.Panel.DeepSleep(); err != nil {
			return fmt.Errorf("deep sleep failed: %w", err)
		}
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/epaper/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.once, "once", false, "Refresh once and exit")
	flag.StringVar(&cfg.picture, "picture", "", "PNG or JPEG picture to show instead of text")
	flag.StringVar(&cfg.text, "text", "", "Text to show (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log", "", "Log level: debug, info or error")

	flag.Parse()

	return cfg
}

func open(conf *config.Config) (*epaper.Renderer, error) {
	variant, err := epaper.LookupVariant(conf.Variant)
	if err != nil {
		return nil, err
	}
	rotation, err := pixel.ParseRotation(conf.Rotation)
	if err != nil {
		return nil, err
	}
	layout, err := conf.Layout()
	if err != nil {
		return nil, err
	}

	c, err := conf.Open()
	if err != nil {
		return nil, err
	}
	panel, err := epaper.NewPanel(c, variant)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	renderer, err := epaper.NewRenderer(panel, rotation, layout)
	if err != nil {
		_ = panel.Close()
		return nil, err
	}
	return renderer, nil
}

func render(r *epaper.Renderer, conf *config.Config) error {
	if conf.Picture != "" {
		img, err := loadPicture(conf.Picture)
		if err != nil {
			return err
		}
		return r.RenderPicture(img)
	}

	glyphs, placements, err := conf.DynamicGlyphs()
	if err != nil {
		return err
	}
	err = r.RenderAndPush(conf.Text, glyphs, placements)
	if errors.Is(err, glyph.ErrDecode) || errors.Is(err, glyph.ErrGlyphNotFound) || errors.Is(err, glyph.ErrPlacement) {
		// The partial render was still pushed.
		log.Error("text rendered partially", err, "text", conf.Text)
		return nil
	}
	return err
}

func loadPicture(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("loaded picture", "path", name, "format", format, "size", img.Bounds().Size().String())
	return img, nil
}
