package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/siegeline/siege/internal/config"
	"github.com/siegeline/siege/internal/core/ecs"
	"github.com/siegeline/siege/internal/core/event"
	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
	"github.com/siegeline/siege/internal/economy"
	"github.com/siegeline/siege/internal/persist"
	"github.com/siegeline/siege/internal/rng"
	"github.com/siegeline/siege/internal/round"
	"github.com/siegeline/siege/internal/scripting"
	"github.com/siegeline/siege/internal/spawn"
	"github.com/siegeline/siege/internal/system"
	"github.com/siegeline/siege/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ───────────────────────────────────────────────

func printBanner(mode, seedPhrase string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               Siege  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      wave progression · headless run      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	if seedPhrase == "" {
		seedPhrase = "(time)"
	}
	fmt.Printf("  \033[1mMode:\033[0m %s \033[90m(seed %q → %d)\033[0m\n\n", mode, seedPhrase, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(p *message.Printer, label string, count int) {
	numStr := p.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Run ───────────────────────────────────────────────────────────

func run() error {
	buy := flag.String("buy", "", "comma-separated defenders to buy before the first round")
	upgrade := flag.Bool("upgrade", false, "spend leftover money on upgrades for bought defenders")
	history := flag.Int("history", 0, "print the N most recent runs and exit (needs database.dsn)")
	flag.Parse()

	// 1. Load config
	cfgPath := "config/siege.toml"
	if p := os.Getenv("SIEGE_CONFIG"); p != "" {
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

	p := message.NewPrinter(language.English)
	random, seed := rng.New(cfg.Engine.Seed)

	// 3. Optional run history
	db := openHistory(cfg, log)
	if db != nil {
		defer db.Close()
	}
	if *history > 0 {
		if db == nil {
			return fmt.Errorf("history: database.dsn is not configured or unreachable")
		}
		return printHistory(p, persist.NewRunRepo(db), *history)
	}

	printBanner(cfg.Engine.Mode, cfg.Engine.Seed, seed)

	// 4. Load catalogs
	printSection("Data")
	enemies, err := data.LoadEnemyTable(cfg.Data.EnemyList)
	if err != nil {
		return fmt.Errorf("load enemy table: %w", err)
	}
	printStat(p, "Enemy types", enemies.Count())

	defenders, err := data.LoadDefenderTable(cfg.Data.DefenderList)
	if err != nil {
		return fmt.Errorf("load defender table: %w", err)
	}
	printStat(p, "Defenders", defenders.Count())

	paths, err := data.LoadPathTable(cfg.Data.PathList)
	if err != nil {
		return fmt.Errorf("load path table: %w", err)
	}
	printStat(p, "Lanes", paths.Count())

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	var adjuster round.Adjuster
	if engine.Has(scripting.HookAdjustRound) {
		adjuster = engine
		printOK("Round script loaded")
	}
	fmt.Println()

	// 5. Build the object graph
	bus := event.NewBus()
	leases := ecs.NewWorld()

	tower := world.NewTower(world.TowerConfig{
		MaxHealth:      cfg.Tower.MaxHealth,
		AttackInterval: cfg.Tower.AttackInterval,
		DamagePerShot:  cfg.Tower.DamagePerShot,
		Range:          cfg.Tower.Range,
		Position:       towerPosition(paths.Paths()),
	}, log)
	state := world.NewState(tower, log)

	factories := spawn.NewFactoryRegistry()
	factories.RegisterDefault(state.Factory())
	for _, e := range enemies.All() {
		factories.Register(e.TypeID, state.Factory())
	}
	alloc := spawn.NewAllocator(cfg.Pool.Enabled, factories, log)
	selector := spawn.NewSelector(enemies, factories.Has, random)
	warmPool(alloc, selector, cfg.Pool.WarmUp)

	ledger := economy.NewLedger(cfg.Economy.StartingMoney, cfg.Economy.RewardPerKill, bus, log)
	shop := economy.NewShop(ledger, defenders, log)

	sched := spawn.NewScheduler(spawn.Config{
		SpawnInterval:  cfg.Spawner.SpawnInterval,
		OnePerInterval: cfg.Spawner.OnePerInterval,
		Continuous:     cfg.Engine.Mode == config.ModeContinuous,
		Base: spawn.BaseStats{
			Speed:                  cfg.Spawner.Speed,
			MaxHealth:              cfg.Spawner.MaxHealth,
			DamageToTower:          cfg.Spawner.DamageToTower,
			DefenderAttackRange:    cfg.Spawner.DefenderAttackRange,
			DefenderAttackInterval: cfg.Spawner.DefenderAttackInterval,
			DamageToDefender:       cfg.Spawner.DamageToDefender,
		},
	}, spawn.Deps{
		Paths:    paths,
		World:    leases,
		Alloc:    alloc,
		Selector: selector,
		Catalog:  enemies,
		Bus:      bus,
		Kills:    ledger,
		Log:      log,
	})

	director := round.NewDirector(round.Config{
		StartingRound: cfg.Rounds.StartingRound,
		StartDelay:    cfg.Rounds.StartDelay,
		Tuning:        tuning(cfg.Rounds),
	}, sched, ledger, adjuster, bus, log)
	sched.SetCompletionListener(director)
	tower.OnDestroyed(director.GameOver)

	printSection("Lanes")
	lanes := sched.Refresh()
	printStat(p, "Active lanes", lanes)
	if lanes == 0 {
		printWarn("no usable lane paths, rounds will not start")
	}
	fmt.Println()

	if *buy != "" {
		printSection("Shop")
		buyDefenders(shop, tower, strings.Split(*buy, ","), *upgrade)
		printStat(p, "Money left", ledger.Money())
		fmt.Println()
	}

	// 6. Create systems and register with runner
	stats := system.NewStatsSystem(bus, ledger.Money(), log)
	runner := coresys.NewRunner()
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewWorldSystem(state))
	runner.Register(system.NewSpawnSystem(sched))
	runner.Register(system.NewRoundSystem(director, cfg.Engine.AutoStart && cfg.Engine.Mode == config.ModeRounds))
	runner.Register(stats)
	if db != nil {
		runner.Register(system.NewPersistenceSystem(persist.NewRunRepo(db), system.RunInfo{
			Seed:          seed,
			Mode:          cfg.Engine.Mode,
			StartingMoney: cfg.Economy.StartingMoney,
			LaneCount:     func() int { return len(sched.ActiveLanes()) },
			Money:         ledger.Money,
		}, bus, log))
	}
	runner.Register(system.NewCleanupSystem(leases))
	if err := runner.Init(); err != nil {
		return fmt.Errorf("init systems: %w", err)
	}
	defer runner.Shutdown()

	// 7. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printSection("Running")
	printReady(fmt.Sprintf("Game loop started (tick: %s)", cfg.Engine.TickRate))
	if cfg.Engine.MaxTicks > 0 {
		printReady(p.Sprintf("Stopping after %d ticks", cfg.Engine.MaxTicks))
	}
	fmt.Println()

	started := time.Now()
	ticks := 0
loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Engine.TickRate)
			ticks++
			if director.IsGameOver() {
				// one more tick delivers the game-over notifications
				runner.Tick(cfg.Engine.TickRate)
				ticks++
				break loop
			}
			if cfg.Engine.MaxTicks > 0 && ticks >= cfg.Engine.MaxTicks {
				log.Info("tick limit reached", zap.Int("ticks", ticks))
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			break loop
		}
	}

	printSummary(p, stats.Stats(), director, tower, alloc.Stats(), ticks, time.Since(started))
	return nil
}

func tuning(r config.RoundsConfig) difficulty.Tuning {
	return difficulty.Tuning{
		BaseEnemies:                r.BaseEnemies,
		EnemiesIncrement:           r.EnemiesIncrement,
		HealthPerRound:             r.HealthPerRound,
		MaxHealthBonus:             r.MaxHealthBonus,
		SpeedPerRound:              r.SpeedPerRound,
		MaxSpeedBonus:              r.MaxSpeedBonus,
		DamagePerRound:             r.DamagePerRound,
		MaxDamageBonus:             r.MaxDamageBonus,
		SpawnIntervalReduction:     r.SpawnIntervalReduction,
		MinSpawnIntervalMultiplier: r.MinSpawnIntervalMultiplier,
		ExtraSpawnsPerRound:        r.ExtraSpawnsPerRound,
		MaxExtraSpawns:             r.MaxExtraSpawns,
	}
}

// towerPosition puts the tower at the end of the first lane.
func towerPosition(paths [][]data.Waypoint) data.Waypoint {
	for _, p := range paths {
		if len(p) > 0 {
			return p[len(p)-1]
		}
	}
	return data.Waypoint{}
}

// warmPool pre-builds handles for every selectable type, or the untyped
// pool when the catalog offers none.
func warmPool(alloc spawn.Allocator, selector *spawn.Selector, count int) {
	if count <= 0 {
		return
	}
	valid := selector.Valid()
	if len(valid) == 0 {
		alloc.WarmUp(data.UntypedID, count)
		return
	}
	for _, e := range valid {
		alloc.WarmUp(e.TypeID, count)
	}
}

func buyDefenders(shop *economy.Shop, tower *world.Tower, names []string, upgrade bool) {
	var bought []*economy.Defender
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d, ok := shop.Buy(name)
		if !ok {
			printWarn(fmt.Sprintf("Could not buy %s", name))
			continue
		}
		bought = append(bought, d)
		printOK(fmt.Sprintf("Bought %s", name))
	}
	if upgrade {
		for _, d := range bought {
			for shop.Upgrade(d) {
				printOK(fmt.Sprintf("Upgraded %s to level %d", d.Def.Name, d.Level))
			}
		}
	}
	for _, d := range bought {
		tower.ScaleDamage(d.DamageMultiplier)
	}
}

func openHistory(cfg *config.Config, log *zap.Logger) *persist.DB {
	if cfg.Database.DSN == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		log.Warn("run history disabled", zap.Error(err))
		return nil
	}
	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		log.Warn("run history disabled", zap.Error(err))
		db.Close()
		return nil
	}
	return db
}

func printHistory(p *message.Printer, repo *persist.RunRepo, limit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	runs, err := repo.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}
	printSection("Recent runs")
	for _, r := range runs {
		status := "running"
		if r.FinalRound != nil && r.FinalMoney != nil {
			status = p.Sprintf("round %d, money %d", *r.FinalRound, *r.FinalMoney)
		}
		fmt.Printf("  #%-5d %s  %-10s %d lanes  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Mode, r.LaneCount, status)
	}
	return nil
}

func printSummary(p *message.Printer, st system.RunStats, dir *round.Director, tower *world.Tower, pool spawn.PoolStats, ticks int, elapsed time.Duration) {
	fmt.Println()
	printSection("Summary")
	outcome := "stopped"
	if dir.IsGameOver() {
		outcome = "tower destroyed"
	}
	printReady(fmt.Sprintf("Outcome: %s after %s", outcome, elapsed.Round(time.Millisecond)))
	printStat(p, "Ticks", ticks)
	printStat(p, "Final round", dir.CurrentRound())
	printStat(p, "Rounds completed", st.Rounds)
	printStat(p, "Enemies spawned", st.Spawned)
	printStat(p, "Enemies killed", st.Killed)
	printStat(p, "Enemies escaped", st.Escaped)
	printStat(p, "Money", dir.Money())
	printStat(p, "Peak money", st.PeakMoney)
	printStat(p, "Tower health", int(tower.Health()))
	printStat(p, "Actors constructed", pool.Constructed)
	printStat(p, "Actors reused", pool.Reused)
	fmt.Println()
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
