package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/config"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/core/event"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
	"github.com/l1jgo/tilecore/internal/data"
	"github.com/l1jgo/tilecore/internal/persist"
	"github.com/l1jgo/tilecore/internal/scripting"
	"github.com/l1jgo/tilecore/internal/system"
	"github.com/l1jgo/tilecore/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config. A missing default file falls back to built-in values;
	// an explicit TILECORE_CONFIG must exist.
	cfgPath := "config/tilecore.toml"
	explicit := false
	if p := os.Getenv("TILECORE_CONFIG"); p != "" {
		cfgPath, explicit = p, true
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional PostgreSQL snapshot store
	var snapshots *persist.SnapshotRepo
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		err = persist.RunMigrations(dbCtx, db.Pool, log)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		snapshots = persist.NewSnapshotRepo(db)
	}

	// 4. Lua scripts
	var lua *scripting.Engine
	if cfg.Scripting.Enabled {
		lua, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer lua.Close()
	}

	// 5. Engine and systems
	bus := event.NewBus()
	engine := coresys.NewEngine(coresys.EngineOptions{
		AutoSetAlive: cfg.Engine.AutoSetAlive,
		Log:          log,
		Events:       bus,
	})

	listeners := []world.ContactListener{world.NewContactRelay(bus)}
	if lua != nil {
		listeners = append(listeners, lua.ContactListener())
	}
	physics, err := world.NewSystem(world.Options{
		PixelsPerMeter: cfg.World.PixelsPerMeter,
		FixedStep:      cfg.World.FixedStep,
		MaxSubSteps:    cfg.World.MaxSubSteps,
		Index:          world.StaticIndex(world.NewSpatialIndex(cfg.World.PixelsPerMeter)),
		Listener:       world.ContactListeners(listeners...),
		Filter:         contactFilter(cfg.World.ContactFilter),
		Log:            log,
	})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}

	engine.AddSystem(system.NewEventSystem(bus))
	engine.AddSystem(system.NewLifetimeSystem())
	engine.AddSystem(physics)
	if area := rect(cfg.World.Bounds); area.Width > 0 && area.Height > 0 {
		engine.AddSystem(system.NewBoundsSystem(area, log))
	}
	engine.AddSystem(system.NewDrawListSystem())

	var snapshotSys *system.SnapshotSystem
	if snapshots != nil && cfg.Loop.SnapshotInterval > 0 {
		snapshotSys, err = system.NewSnapshotSystem(ctx, snapshots, cfg.Loop.SnapshotInterval, cfg.Database.KeepFrames, log)
		if err != nil {
			return err
		}
		engine.AddSystem(snapshotSys)
	}

	event.Subscribe(bus, func(ev event.EntityDied) {
		log.Debug("entity died", zap.Uint64("entity", uint64(ev.EntityID)))
	})

	// 6. Scene
	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	spawned, err := spawnScene(engine, scene, lua)
	if err != nil {
		return err
	}
	log.Info("scene loaded",
		zap.String("scene", scene.Name),
		zap.Int("bodies", spawned))

	// 7. Game loop
	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	log.Info("game loop started",
		zap.Duration("tick", cfg.Loop.TickRate),
		zap.Duration("fixed_step", cfg.World.FixedStep))

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			engine.Update(clampDelta(now.Sub(last), cfg.Loop.MaxFrameDelta))
			last = now
		case <-ctx.Done():
			log.Info("shutting down",
				zap.Uint64("cycles", physics.Cycles()),
				zap.Uint64("dropped_steps", physics.Dropped()),
				zap.Int("entities", engine.Len()))
			if snapshotSys != nil {
				snapshotSys.Flush()
			}
			engine.Purge()
			return nil
		}
	}
}

// spawnScene queues every scene entity on the engine and binds Lua body
// hooks named by their labels.
func spawnScene(engine *coresys.Engine, scene *data.Scene, lua *scripting.Engine) (int, error) {
	entities, err := scene.Entities()
	if err != nil {
		return 0, fmt.Errorf("build scene: %w", err)
	}
	for _, e := range entities {
		label := ecs.MustComponent[*component.Label](e, component.LabelType)
		if label.Script != "" {
			if lua == nil {
				return 0, fmt.Errorf("body %q needs script %s but scripting is disabled", label.Name, label.Script)
			}
			hook, err := lua.BodyHook(label.Script)
			if err != nil {
				return 0, fmt.Errorf("body %q: %w", label.Name, err)
			}
			b, _ := world.BodyOf(e)
			b.PreProcess.Put(label.Script, hook)
		}
		engine.Spawn(e, nil)
	}
	return len(entities), nil
}

func contactFilter(m map[string][]string) world.ContactFilter {
	f := make(world.ContactFilter, len(m))
	for t, others := range m {
		for _, o := range others {
			f[world.FixtureType(t)] = append(f[world.FixtureType(t)], world.FixtureType(o))
		}
	}
	return f
}

func rect(r config.RectConfig) world.Rect {
	return world.NewRect(r.X, r.Y, r.Width, r.Height)
}

// clampDelta bounds the frame delta after a stall. A non-positive limit
// disables the clamp.
func clampDelta(dt, limit time.Duration) time.Duration {
	if limit > 0 && dt > limit {
		return limit
	}
	return dt
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
