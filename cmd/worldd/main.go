package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/worldcore/internal/config"
	"github.com/l1jgo/worldcore/internal/core/event"
	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/data"
	"github.com/l1jgo/worldcore/internal/entity"
	"github.com/l1jgo/worldcore/internal/handler"
	gonet "github.com/l1jgo/worldcore/internal/net"
	"github.com/l1jgo/worldcore/internal/net/packet"
	"github.com/l1jgo/worldcore/internal/registry"
	"github.com/l1jgo/worldcore/internal/scripting"
	"github.com/l1jgo/worldcore/internal/system"
	"github.com/l1jgo/worldcore/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ---------- Console output helpers ----------

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            worldcore  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        天堂 世界核心 · 視野與實體         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

// displayWidth counts CJK runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ---------- Server ----------

func run() error {
	cfg, err := config.Load(config.PathFromEnv("config/worldcore.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Debug); p != nil {
		defer p.Stop()
	}

	printBanner(cfg.Server.Name, cfg.Server.ID)

	reg, err := registry.Init(log)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	defer registry.Shutdown()

	bus := event.NewBus()
	ws := world.NewState(world.NewGrid(cfg.World.CellSize, cfg.World.ViewRadius), reg, bus, log)

	printSection("資料載入")

	npcTable, err := data.LoadNpcTable(cfg.Data.NpcList)
	if err != nil {
		return fmt.Errorf("load npc table: %w", err)
	}
	printStat("NPC 模板", npcTable.Count())

	spawnList, err := data.LoadSpawnList(cfg.Data.SpawnList)
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua 腳本載入完成")

	spawned, withAI := spawnNpcs(ws, data.NewSpawner(npcTable, reg, cfg.NPC.SpawnSeed), spawnList, luaEngine, log)
	printStat("NPC 生成", spawned)
	printStat("AI 掛載", withAI)
	fmt.Println()

	pktReg := packet.NewRegistry[*gonet.Session](log)
	handler.RegisterAll(pktReg, &handler.Deps{
		Config: cfg,
		Log:    log,
		World:  ws,
		Npcs:   npcTable,
	})

	sessCfg := gonet.SessionConfig{
		InQueue:  cfg.Network.InQueueSize,
		OutQueue: cfg.Network.OutQueueSize,
		MaxFrame: cfg.Network.MaxFrame,
	}
	if cfg.RateLimit.Enabled {
		sessCfg.PktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, sessCfg, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	runner := coresys.NewRunner()
	inputSys := system.NewInputSystem(netServer, pktReg, gonet.NewSessionStore(), ws, cfg.Network.MaxPacketsPerTick, log)
	runner.Register(inputSys)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewAISystem(ws))
	runner.Register(system.NewDeathSystem(ws, cfg.NPC.RespawnDelay, time.Now, log))
	runner.Register(system.NewEggSystem(ws, time.Now, log))
	runner.Register(system.NewOutputSystem(inputSys.Store()))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	// Input-only ticks between full ticks keep handler latency below the
	// tick rate. A zero poll disables them.
	var pollC <-chan time.Time
	if cfg.Network.InputPoll > 0 {
		poll := time.NewTicker(cfg.Network.InputPoll)
		defer poll.Stop()
		pollC = poll.C
	}

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case <-pollC:
			runner.TickPhase(coresys.PhaseInput, cfg.Network.InputPoll)
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			netServer.Shutdown()
			shutdownWorld(ws, log)
			log.Info("伺服器已停止",
				zap.Uint64("ticks", runner.Ticks()),
				zap.Int("sessions", inputSys.SessionCount()),
			)
			return nil
		}
	}
}

// spawnNpcs builds every spawn entry, attaches Lua AI to combat kinds whose
// function is loaded and places the result in the world. Bad entries are
// logged and skipped.
func spawnNpcs(ws *world.State, sp *data.Spawner, entries []data.SpawnEntry, lua *scripting.Engine, log *zap.Logger) (spawned, withAI int) {
	for _, entry := range entries {
		built, err := sp.Build(entry)
		if err != nil {
			log.Warn("NPC 生成失敗", zap.Int32("npc_id", entry.NpcID), zap.Error(err))
			continue
		}
		for _, s := range built {
			if npc := combatCore(s.Entity); npc != nil {
				if hook := lua.Hook(npc, s.Template.AI, ws); hook != nil {
					npc.SetAI(hook)
					withAI++
				}
			}
			if err := ws.Spawn(s.Entity); err != nil {
				log.Warn("NPC 放置失敗", zap.Stringer("handle", s.Entity.Handle()), zap.Error(err))
				continue
			}
			spawned++
		}
	}
	return spawned, withAI
}

func combatCore(e entity.Entity) *entity.CombatNPC {
	switch c := e.(type) {
	case *entity.CombatNPC:
		return c
	case *entity.Mob:
		return &c.CombatNPC
	}
	return nil
}

// shutdownWorld disconnects every player and tears down every instance, so
// each entity leaves view before the registry is cleared.
func shutdownWorld(ws *world.State, log *zap.Logger) {
	var conns []entity.ConnID
	instances := make(map[uint64]struct{})
	ws.Registry().EachPlayer(func(p *entity.Player) { conns = append(conns, p.Conn()) })
	for _, c := range conns {
		ws.Disconnect(c)
	}
	ws.Registry().EachEntity(func(e entity.Entity) { instances[e.Record().Instance()] = struct{}{} })
	for inst := range instances {
		n, err := ws.TearDownInstance(inst)
		if err != nil {
			log.Error("副本銷毀失敗", zap.Uint64("instance", inst), zap.Error(err))
		}
		log.Debug("副本已銷毀", zap.Uint64("instance", inst), zap.Int("entities", n))
	}
}

func startProfile(cfg config.DebugConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Profile {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.ProfilePath), profile.NoShutdownHook, profile.Quiet)
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
