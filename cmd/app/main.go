package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/sngforge/internal"
	"github.com/starford/sngforge/internal/chartservice"
	pkgconfig "github.com/starford/sngforge/pkg/config"
)

func loadConfig(cmd *cli.Command, optional bool) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.Load[internal.Config]
	if optional {
		load = pkgconfig.LoadOptional[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithForceCompile(cmd.Bool("force")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithForceCompile(cmd.Bool("force")),
	}

	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}

	return nil
}

// compileSetup reads the document named by the first argument and the
// compiler settings shared by compile and inspect.
func compileSetup(cmd *cli.Command) (string, []byte, chartservice.Config, *slog.Logger, error) {
	input := cmd.Args().First()
	if input == "" {
		return "", nil, chartservice.Config{}, nil, fmt.Errorf("document path is required")
	}
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return "", nil, chartservice.Config{}, nil, err
	}
	if a := cmd.String("arrangement"); a != "" {
		cfg.Compiler.Arrangement = a
		if err := cfg.Compiler.Validate(); err != nil {
			return "", nil, chartservice.Config{}, nil, fmt.Errorf("arrangement: %w", err)
		}
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", nil, chartservice.Config{}, nil, fmt.Errorf("read document: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	return input, data, cfg.Compiler.Service(), logger, nil
}

func compile(_ context.Context, cmd *cli.Command) error {
	input, data, cfg, logger, err := compileSetup(cmd)
	if err != nil {
		return err
	}
	res, err := chartservice.CompileDocument(data, cfg, logger.With(slog.String("path", input)))
	if err != nil {
		return fmt.Errorf("compile %s: %w", input, err)
	}

	rec, err := chartservice.EncodeRecord(res.Record())
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + chartservice.RecordExt
	}
	if out == "-" {
		_, err = os.Stdout.Write(rec)
		return err
	}
	if err := os.WriteFile(out, rec, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	logger.Info("chart written", slog.String("path", out))

	if cmd.Bool("midi") {
		mid, err := res.MIDI()
		if err != nil {
			return fmt.Errorf("render midi: %w", err)
		}
		midPath := strings.TrimSuffix(out, chartservice.RecordExt) + chartservice.MIDIExt
		if err := os.WriteFile(midPath, mid, 0o644); err != nil {
			return fmt.Errorf("write midi: %w", err)
		}
		logger.Info("midi written", slog.String("path", midPath))
	}
	return nil
}

func inspect(_ context.Context, cmd *cli.Command) error {
	input, data, cfg, logger, err := compileSetup(cmd)
	if err != nil {
		return err
	}
	res, err := chartservice.CompileDocument(data, cfg, logger.With(slog.String("path", input)))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", input, err)
	}
	return res.Report(os.Stdout)
}

func arrangementFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "arrangement",
		Usage: "Override arrangement detection: auto, guitar or bass",
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "sngforge",
		Usage:  "Compile notation XML documents into game charts and serve the catalogue",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Recompile every document on startup",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile one document to a chart record",
				ArgsUsage: "<song.xml>",
				Action:    compile,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (- for stdout); defaults next to the document",
					},
					&cli.BoolFlag{
						Name:  "midi",
						Usage: "Also write a MIDI preview",
					},
					arrangementFlag(),
				},
			},
			{
				Name:      "inspect",
				Usage:     "Print a summary of a compiled document",
				ArgsUsage: "<song.xml>",
				Action:    inspect,
				Flags:     []cli.Flag{arrangementFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
