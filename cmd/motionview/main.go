// motionview serves the motion preview API and streams driven frames over
// a websocket.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-motion/internal/config"
	mlog "github.com/teslashibe/go-motion/internal/log"
	"github.com/teslashibe/go-motion/pkg/driver"
	"github.com/teslashibe/go-motion/pkg/library"
	"github.com/teslashibe/go-motion/pkg/model"
	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	parseFlags(&cfg)

	mlog.Init(cfg.LogLevel)
	logger := mlog.L()
	motion.SetLogger(logger.With("component", "motion"))

	def := model.DefaultDefinition()
	if cfg.ModelFile != "" {
		if def, err = model.LoadDefinition(cfg.ModelFile); err != nil {
			log.Fatalf("❌ Model error: %v", err)
		}
	}

	lib := library.NewRegistry(library.WithStrict(cfg.Strict))
	if cfg.BuiltIn {
		if err := lib.LoadBuiltIn(); err != nil {
			log.Fatalf("❌ Built-in motions: %v", err)
		}
	}
	if cfg.Dir != "" {
		if err := lib.LoadDir(cfg.Dir); err != nil {
			logger.Warn("motion directory rejected", "dir", cfg.Dir, "error", err)
		}
	}
	motions, expressions := lib.Count()
	logger.Info("library loaded", "motions", motions, "expressions", expressions)

	opts := []driver.Option{
		driver.WithDefinition(def),
		driver.WithFPS(cfg.FPS),
		driver.WithBehavior(motion.ParseBehavior(cfg.LoopBehavior)),
		driver.WithLogger(logger.With("component", "driver")),
	}
	if !cfg.Blink {
		opts = append(opts, driver.WithEyeBlink(nil))
	}
	if !cfg.Breath {
		opts = append(opts, driver.WithBreath(nil))
	}
	drv, err := driver.New(lib, opts...)
	if err != nil {
		log.Fatalf("❌ Driver error: %v", err)
	}

	srv := web.NewServer(cfg.Addr(), drv, lib,
		web.WithDefinition(def),
		web.WithLogger(logger.With("component", "web")),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(ctx) })
	g.Go(func() error {
		if err := drv.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	logger.Info("🎬 motion preview", "url", "http://localhost:"+strconv.Itoa(cfg.Port))
	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Runtime error: %v", err)
	}
	logger.Info("👋 Goodbye!")
}

// parseFlags lets flags override the environment.
func parseFlags(cfg *config.Config) {
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port (MOTION_PORT)")
	flag.StringVar(&cfg.Dir, "dir", cfg.Dir, "Directory of .motion3.json and .exp3.json files (MOTION_DIR)")
	flag.StringVar(&cfg.ModelFile, "model", cfg.ModelFile, "Model definition JSON (MOTION_MODEL)")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "Driver tick rate (MOTION_FPS)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (MOTION_LOG_LEVEL)")
	flag.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Check motion file metadata counts (MOTION_STRICT)")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
}
