package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/config"
	"github.com/emberveil/client/internal/core/ecs"
	"github.com/emberveil/client/internal/core/event"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/data"
	"github.com/emberveil/client/internal/handler"
	"github.com/emberveil/client/internal/input"
	gonet "github.com/emberveil/client/internal/net"
	"github.com/emberveil/client/internal/net/message"
	"github.com/emberveil/client/internal/scripting"
	"github.com/emberveil/client/internal/system"
	"github.com/emberveil/client/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Emberveil  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        client simulation core             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main client logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/client.toml"
	if p := os.Getenv("EMBERVEIL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Load data tables
	printSection("data tables")

	weaponTable, err := data.LoadWeaponTable("data/yaml/weapon_list.yaml")
	if err != nil {
		return fmt.Errorf("load weapon table: %w", err)
	}
	printStat("weapon templates", weaponTable.Count())

	enemyTable, err := data.LoadEnemyTable("data/yaml/enemy_list.yaml")
	if err != nil {
		return fmt.Errorf("load enemy table: %w", err)
	}
	printStat("enemy templates", enemyTable.Count())

	effectTable, err := data.LoadEffectTable("data/yaml/effect_list.yaml")
	if err != nil {
		return fmt.Errorf("load effect table: %w", err)
	}
	printStat("effect templates", effectTable.Count())

	// 4. Initialize Lua formula engine
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua formulas loaded")
	fmt.Println()

	// 5. Create ECS world, component tables, and shared state
	ecsWorld := ecs.NewWorld()
	tables := component.NewTables(ecsWorld.Registry())
	actors := world.NewActors()
	mapping := world.NewEntityMapping(ecsWorld, actors, tables.Healths)
	numbers := world.NewDamageNumbers(cfg.Combat.DamageNumberCap)
	bus := event.NewBus()
	clock := coresys.NewClock(time.Now())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// 6. Build the per-frame systems
	collisionSys := system.NewCollisionSystem(tables, cfg.Simulation.GridCellSize)
	combatSys := system.NewCombatSystem(tables, enemyTable, numbers, bus, clock,
		collisionSys, cfg.Combat, cfg.Simulation.CoopMode, rng, log)
	effectSys := system.NewEffectSystem(ecsWorld, tables, effectTable, combatSys, clock, bus, log)
	projectileSys := system.NewProjectileSystem(ecsWorld, tables, collisionSys, combatSys, effectSys, bus)
	interpSys := system.NewInterpolationSystem(tables, clock, cfg.Interp)
	movementSys := system.NewMovementSystem(tables, effectTable)

	// 7. Connect to the server (offline mode when no URL is configured)
	var frameSrc system.FrameSource
	var frameSink system.FrameSink
	if cfg.Network.ServerURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := gonet.Dial(ctx, cfg.Network, log)
		cancel()
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer client.Close()
		frameSrc, frameSink = client, client
		printOK(fmt.Sprintf("connected to %s", cfg.Network.ServerURL))
	} else {
		printOK("offline mode (no server url)")
	}

	broadcastSys := system.NewBroadcastSystem(tables, clock, frameSink, cfg.Network, log)

	// 8. Spawn the local player and equip a weapon
	inputState := input.NewState()
	abilitySys := system.NewAbilitySystem(ecsWorld, tables, collisionSys, combatSys,
		projectileSys, effectSys, luaEngine, inputState, broadcastSys, log)

	weaponID := os.Getenv("EMBERVEIL_WEAPON")
	if weaponID == "" {
		weaponID = "greatsword"
	}
	weapon := weaponTable.Get(weaponID)
	if weapon == nil {
		return fmt.Errorf("unknown weapon %q", weaponID)
	}
	player := spawnLocalPlayer(ecsWorld, tables)
	abilitySys.Equip(player, weapon, 1)
	broadcastSys.BindLocal(player, 0) // placeholder until the welcome message assigns the real id

	// 9. Register message handlers
	registry := message.NewRegistry(log)
	handler.RegisterAll(registry, &handler.Deps{
		Log:         log,
		Cfg:         cfg,
		World:       ecsWorld,
		Tables:      tables,
		Actors:      actors,
		Mapping:     mapping,
		Bus:         bus,
		Combat:      combatSys,
		Effects:     effectSys,
		Projectiles: projectileSys,
		Interp:      interpSys,
		Weapons:     weaponTable,
		Enemies:     enemyTable,
		LocalPlayer: player,
		Ability:     abilitySys,
		Broadcast:   broadcastSys,
	})

	// 10. Register systems with the runner. Input-phase order matters:
	// network state lands before local abilities read it.
	runner := coresys.NewRunner()
	runner.Register(system.NewNetInputSystem(frameSrc, registry, cfg.Network.MaxMsgPerTick))
	runner.Register(abilitySys)
	runner.Register(movementSys)
	runner.Register(collisionSys)
	runner.Register(combatSys)
	runner.Register(projectileSys)
	runner.Register(interpSys)
	runner.Register(effectSys)
	runner.Register(broadcastSys)
	runner.Register(system.NewCleanupSystem(ecsWorld))

	// 11. Event feeds for the presentation layer
	event.Subscribe(bus, func(ev event.EntityDied) {
		if ev.Entity == player {
			log.Info("local player died")
			return
		}
		log.Debug("entity died", zap.Uint64("entity", uint64(ev.Entity)))
	})
	event.Subscribe(bus, func(ev event.ActorDeparted) {
		log.Debug("actor departed", zap.Int64("server_id", ev.ServerID))
	})
	// Locally rolled hits go out as hit claims; the server adjudicates and
	// answers with the verdict. Targets without a server identity (locally
	// spawned only) have nothing to report against.
	event.Subscribe(bus, func(ev event.DamageDealt) {
		sid, ok := mapping.ResolveServer(ev.Target)
		if !ok {
			return
		}
		broadcastSys.SendHitReport(sid, ev.Amount, ev.Critical, ev.DamageType)
	})

	// 12. Start frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("simulation ready")
	printReady(fmt.Sprintf("weapon %s", weapon.Name))
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			clock.Advance(cfg.Simulation.TickRate)
			// Events emitted last tick dispatch at the top of this one.
			bus.SwapBuffers()
			bus.DispatchAll()
			runner.Tick(cfg.Simulation.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func spawnLocalPlayer(w *ecs.World, tables *component.Tables) ecs.EntityID {
	id := w.CreateEntity()
	tables.Transforms.Set(id, &component.Transform{Rot: mgl64.QuatIdent()})
	tables.Movements.Set(id, &component.Movement{MaxSpeed: 6})
	tables.Healths.Set(id, &component.Health{Current: 100, Max: 100})
	tables.Shields.Set(id, &component.Shield{
		Current:    50,
		Max:        50,
		RegenRate:  5,
		RegenDelay: 4 * time.Second,
	})
	tables.Colliders.Set(id, &component.Collider{
		Radius: 0.5,
		Layer:  component.LayerPlayer,
		Mask:   component.LayerPlayer | component.LayerEnemy | component.LayerEnvironment,
		Weight: 1,
	})
	return id
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
