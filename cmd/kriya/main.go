package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohan/kriya/internal/agent"
	"github.com/rohan/kriya/internal/diagnose"
	"github.com/rohan/kriya/internal/gateway"
	"github.com/rohan/kriya/internal/governance"
	"github.com/rohan/kriya/internal/observability"
	"github.com/rohan/kriya/internal/store"
	"github.com/rohan/kriya/internal/tools"
	"github.com/rohan/kriya/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfgPath := "config.json"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	runs, err := store.NewRunStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	// Initialize tools
	registry := tools.NewRegistry()

	searchTool, err := tools.NewSearchTool()
	if err != nil {
		log.Printf("Warning: Failed to initialize search tool: %v", err)
	} else {
		registry.Register(searchTool)
	}
	registry.Register(tools.NewFilesystemTool(cfg.App.Workspace))
	registry.Register(tools.NewScraperTool())
	registry.Register(tools.NewShellTool())
	registry.Register(tools.NewBrowserTool())
	registry.Register(tools.NewCryptoPriceTool())
	registry.Register(tools.NewScheduleTool(runs))

	// Default safety rules: block dangerous destructive commands
	gov := governance.NewDefaultPolicyEngine()
	_ = gov.DenyArguments(`rm\s+-rf`)
	_ = gov.DenyArguments(`mkfs`)
	_ = gov.DenyArguments(`shutdown`)
	_ = gov.DenyArguments(`reboot`)

	logger := observability.NewLogger()

	promptsDir := cfg.App.Prompts
	if promptsDir == "" {
		promptsDir = "./prompts"
	}
	prompts := agent.NewPromptManager(promptsDir)

	planner := agent.NewPlanner(llm, registry, prompts)
	planner.Logger = logger

	runner := agent.NewAgent(planner, registry, diagnose.NewModelAnalyzer(llm), runs, logger)
	runner.Policy = gov

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier agent.Messenger
	var gateways []gateway.Messenger

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, runner)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, tg)
		notifier = tg
	}
	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, runner)
		if err != nil {
			log.Fatal(err)
		}
		gateways = append(gateways, dc)
		if notifier == nil {
			notifier = dc
		}
	}
	if len(gateways) == 0 {
		log.Fatal("No gateway is enabled in config")
	}

	scheduler := agent.NewScheduler(runner, runs, notifier, time.Duration(cfg.HeartbeatInterval())*time.Second)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start(gctx)
		return nil
	})

	// Live resource dashboard (1-second updates)
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	})

	for _, gw := range gateways {
		gw := gw
		g.Go(func() error {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return gw.Stop()
		})
	}

	// Wait for shutdown signal or a fatal gateway error
	<-gctx.Done()
	_ = g.Wait()

	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}
