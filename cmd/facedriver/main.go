package main

import (
	"context"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/normanking/facedriver/internal/config"
	"github.com/normanking/facedriver/internal/facial"
	"github.com/normanking/facedriver/internal/feed"
	"github.com/normanking/facedriver/internal/logging"
	"github.com/normanking/facedriver/internal/mesh"
)

type flags struct {
	ModelPath  string
	TonguePath string
	FeedURL    string
	Seed       int64
	FPS        int
	WatchCfg   bool
	Summary    bool
}

func main() {
	fl := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if fl.ModelPath != "" {
		cfg.Model.HeadPath = fl.ModelPath
	}
	if fl.TonguePath != "" {
		cfg.Model.TonguePath = fl.TonguePath
	}
	if fl.FeedURL != "" {
		cfg.Feed.URL = fl.FeedURL
	}

	logger, err := logging.New(logging.Config{
		LogDir:  cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	host := loadHost(cfg, logger)

	var rng *rand.Rand
	if fl.Seed != 0 {
		rng = rand.New(rand.NewSource(fl.Seed))
	}

	driver, err := facial.New(host, cfg.Facial(), rng, logging.Component(logger, "facial"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build facial driver")
	}
	driver.LogSummary()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Latest upstream frame, written by the feed goroutine and read by
	// the tick loop. The driver itself is only ever touched from the
	// tick loop.
	var frameMu sync.Mutex
	var latest facial.ScoreFrame

	if cfg.Feed.URL != "" {
		client := feed.NewClient(cfg.Feed.URL, func(f facial.ScoreFrame) {
			frameMu.Lock()
			latest = f
			frameMu.Unlock()
		}, logger)
		client.Connect(ctx)
		defer client.Disconnect()
	}

	if fl.WatchCfg {
		if dir, err := config.ConfigDir(); err == nil {
			stop, err := config.Watch(filepath.Join(dir, "config.yaml"), logging.Component(logger, "config"), func(fresh *config.Config) {
				frameMu.Lock()
				driver.Retune(fresh.Facial())
				frameMu.Unlock()
			})
			if err != nil {
				logger.Warn().Err(err).Msg("Config watch unavailable")
			} else {
				defer stop()
			}
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interval := time.Second / time.Duration(fl.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Int("fps", fl.FPS).Bool("synthetic", cfg.Feed.URL == "").Msg("Tick loop started")

	last := time.Now()
	var totalTime float32
	summaryTimer := time.Now()

	for {
		select {
		case <-sigChan:
			logger.Info().Msg("Shutdown signal received")
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			if dt > 0.1 {
				dt = 0.1
			}
			totalTime += dt

			var frame facial.ScoreFrame
			if cfg.Feed.URL != "" {
				frameMu.Lock()
				frame = latest
				frameMu.Unlock()
			} else {
				frame = syntheticFrame(totalTime)
			}

			frameMu.Lock()
			driver.Tick(frame, dt)
			frameMu.Unlock()

			if fl.Summary && time.Since(summaryTimer) >= 2*time.Second {
				summaryTimer = time.Now()
				logger.Info().
					Float32("jaw_deg", driver.Jaw().AngleDeg()).
					Str("blink", driver.Blink().Phase().String()).
					Msg("Tick status")
			}
		}
	}
}

// loadHost loads the head mesh plus an optional tongue mesh into one
// host. With no model configured, a synthetic capture-named host stands
// in so the driver can still be demonstrated.
func loadHost(cfg *config.Config, logger zerolog.Logger) *mesh.Host {
	if cfg.Model.HeadPath == "" {
		logger.Warn().Msg("No head mesh configured, using synthetic placeholder targets")
		return placeholderHost()
	}

	host, err := mesh.LoadGLTF(cfg.Model.HeadPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Model.HeadPath).Msg("Head mesh load failed, using synthetic placeholder targets")
		return placeholderHost()
	}
	logger.Info().Str("path", cfg.Model.HeadPath).Int("groups", host.GroupCount()).Msg("Head mesh loaded")

	if cfg.Model.TonguePath != "" {
		tongue, err := mesh.LoadGLTF(cfg.Model.TonguePath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.Model.TonguePath).Msg("Tongue mesh load failed, continuing without it")
		} else {
			for g := 0; g < tongue.GroupCount(); g++ {
				host.AddGroup(tongue.GroupName(g), tongue.TargetNames(g))
			}
		}
	}
	return host
}

// placeholderHost exposes a minimal capture-named target set.
func placeholderHost() *mesh.Host {
	host := mesh.NewHost()
	host.AddGroup("placeholder", []string{
		"jawOpen", "mouthClose", "mouthFunnel", "mouthPucker",
		"mouthSmileLeft", "mouthSmileRight",
		"mouthStretchLeft", "mouthStretchRight",
		"eyeBlinkLeft", "eyeBlinkRight",
		"eyeSquintLeft", "eyeSquintRight",
		"browInnerUp", "cheekSquintLeft", "cheekSquintRight",
		"tongueOut",
	})

	skel := mesh.NewSkeleton()
	root := skel.AddBone("head", -1, mgl32.QuatIdent())
	jaw := skel.AddBone("jaw", root, mgl32.QuatIdent())
	skel.SetHumanoidJaw(jaw)
	host.SetSkeleton(skel)
	return host
}

func parseFlags() *flags {
	fl := &flags{}
	flag.StringVar(&fl.ModelPath, "model", "", "Path to the head mesh (.glb/.gltf); overrides config")
	flag.StringVar(&fl.TonguePath, "tongue", "", "Path to an optional tongue mesh; overrides config")
	flag.StringVar(&fl.FeedURL, "feed", "", "Websocket URL of the viseme score feed; empty runs a synthetic sweep")
	flag.Int64Var(&fl.Seed, "seed", 0, "Random seed for the idle layer (0 = time-based)")
	flag.IntVar(&fl.FPS, "fps", 60, "Tick rate")
	flag.BoolVar(&fl.WatchCfg, "watch-config", true, "Reload tunables when the config file changes")
	flag.BoolVar(&fl.Summary, "status", true, "Log periodic tick status")
	flag.Parse()
	return fl
}

// syntheticFrame sweeps through a few vowel classes so the driver can be
// exercised without an upstream recognizer.
func syntheticFrame(t float32) facial.ScoreFrame {
	var frame facial.ScoreFrame

	classes := []facial.VisemeClass{facial.VisemeAA, facial.VisemeE, facial.VisemeOH, facial.VisemeSil}
	slot := int(t*1.5) % len(classes)
	envelope := float32(math.Abs(math.Sin(float64(t * 4))))

	if classes[slot] != facial.VisemeSil {
		frame.Visemes[classes[slot]] = envelope
	}
	return frame
}
