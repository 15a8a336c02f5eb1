package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "pathboard",
		Usage:  "Generate learning paths for a goal skill and arrange them on a terminal canvas",
		Action: runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   defaultConfigPath(),
				Sources: cli.EnvVars("PATHBOARD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "goal",
				Usage: "Goal skill to generate for on startup",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Generation mode: path or map",
				Value: "path",
			},
			&cli.IntFlag{
				Name:  "paths",
				Usage: "Number of learning paths to ask for",
				Value: 3,
			},
			&cli.IntFlag{
				Name:  "layers",
				Usage: "Number of map layers to ask for",
				Value: 3,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the generation API over HTTP",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "Listen port, overrides server.port",
					},
				},
			},
			{
				Name:      "generate",
				Usage:     "Generate once and print the JSON result",
				ArgsUsage: "<goal skill>",
				Action:    runGenerate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pathboard: %v\n", err)
		os.Exit(1)
	}
}

func requestFromFlags(cmd *cli.Command, goal string) (GenerationRequest, error) {
	mode, err := parseGenerationMode(cmd.String("mode"))
	if err != nil {
		return GenerationRequest{}, err
	}
	req := GenerationRequest{
		GoalSkill: strings.TrimSpace(goal),
		Mode:      mode,
	}
	if mode == GenerationMap {
		req.Layers = int(cmd.Int("layers"))
	} else {
		req.NumberOfPaths = int(cmd.Int("paths"))
	}
	return req, nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, closer, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	req, err := requestFromFlags(cmd, cmd.String("goal"))
	if err != nil {
		return err
	}

	m := initialModel(ctx, cfg, log)
	m.genMode = req.Mode
	m.numPaths = int(cmd.Int("paths"))
	m.layers = int(cmd.Int("layers"))
	if req.GoalSkill != "" {
		m.goalInput = req.GoalSkill
		m.mode = ModeCanvas
		m.initCmd = m.startGeneration(req)
	}

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		err := watchConfig(watchCtx, configPath, log, func(c *Config) {
			p.Send(configReloadedMsg{cfg: c})
		})
		if err != nil {
			log.Warn("config watch disabled", slog.String("error", err.Error()))
		}
	}()

	log.Info("pathboard started", slog.String("config", configPath), slog.String("provider", cfg.Generator.Provider))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, _, err := openLogger(LogConfig{Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if cfg.Generator.Provider == ProviderRemote {
		return fmt.Errorf("serve needs the openai provider, config has %q", ProviderRemote)
	}
	port := cfg.Server.Port
	if p := int(cmd.Int("port")); p > 0 {
		port = p
	}
	return runServer(ctx, port, NewOpenAIGenerator(cfg.Generator, log), log)
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, _, err := openLogger(LogConfig{Level: cfg.Log.Level})
	if err != nil {
		return err
	}

	goal := strings.Join(cmd.Args().Slice(), " ")
	if goal == "" {
		goal = cmd.String("goal")
	}
	req, err := requestFromFlags(cmd, goal)
	if err != nil {
		return err
	}
	res, err := newGenerator(cfg.Generator, log).Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Payload())
}

func initialModel(ctx context.Context, cfg *Config, log *slog.Logger) model {
	board := NewBoard("",
		WithLogger(log),
		WithEditTrigger(cfg.UI.EditTrigger()),
	)
	return model{
		ctx:      ctx,
		board:    board,
		gen:      newGenerator(cfg.Generator, log),
		cfg:      cfg,
		log:      log,
		mode:     ModeGoalInput,
		numPaths: 3,
		layers:   3,
	}
}
