// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/retrievit"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/plan"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "retrievit",
		Usage: "Persona-weighted multi-source retrieval orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "query",
				Usage:  "Run a retrieval and print ranked evidence",
				Action: queryCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:  "persona",
						Usage: "Persona hint, skips persona classification when set",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of evidence items",
						Value: 10,
					},
				),
			},
			{
				Name:   "check-config",
				Usage:  "Validate a persona table file",
				Action: checkConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "personas",
						Aliases:  []string{"p"},
						Usage:    "Path to the persona table YAML file",
						Required: true,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Ingest JSON-lines documents into the embedded stores",
				Action: seedCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a JSON-lines seed file (one document per line)",
						Required: true,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// systemFlags are shared by every command that opens the full system.
func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the storage directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "personas",
			Aliases:  []string{"p"},
			Usage:    "Path to the persona table YAML file",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Model for classification, rewriting and reranking",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Model for text embeddings",
			Value: "embeddinggemma",
		},
	}
}

// openSystem builds the orchestrator from the shared command flags.
func openSystem(c *cli.Context, extra ...retrievit.OrchestratorOption) (*retrievit.Orchestrator, error) {
	table, err := plan.LoadTable(c.String("personas"))
	if err != nil {
		return nil, fmt.Errorf("loading persona table: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := append([]retrievit.OrchestratorOption{retrievit.WithAIConfig(aiConfig)}, extra...)
	return retrievit.Open(c.String("db"), table, opts...)
}

func queryCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("usage: retrievit query [flags] <question>")
	}

	system, err := openSystem(c, retrievit.WithEvidenceSize(c.Int("top-k")))
	if err != nil {
		return err
	}
	defer system.Close()

	var retrieveOpts []retrievit.RetrieveOption
	if persona := c.String("persona"); persona != "" {
		retrieveOpts = append(retrieveOpts, retrievit.WithPersonaHint(core.Persona(persona)))
	}

	evidence, err := system.Retrieve(context.Background(), query, retrieveOpts...)
	if err != nil {
		var noEvidence *core.NoEvidenceError
		if errors.As(err, &noEvidence) {
			fmt.Println("No evidence found.")
			printOutcomes(noEvidence.Outcomes)
			return nil
		}
		return err
	}

	if evidence.Escalated {
		fmt.Println("(escalated to the default plan)")
	}
	if evidence.DegradedRanking {
		fmt.Println("(ranking degraded: reranker unavailable)")
	}
	for i, item := range evidence.Items {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, rankingScore(item, evidence.DegradedRanking), item.Text)
		fmt.Printf("    sources: %s\n", strings.Join(item.SourceTools, ", "))
	}
	printOutcomes(evidence.ToolOutcomes)
	return nil
}

func rankingScore(item *core.Candidate, degraded bool) float32 {
	if degraded {
		return item.SourceScore
	}
	return item.RerankScore
}

func printOutcomes(outcomes []core.ToolOutcome) {
	fmt.Println("tools:")
	for _, outcome := range outcomes {
		fmt.Printf("    %s: %s\n", outcome.ToolName, outcome.Status)
	}
}

func checkConfigCommand(c *cli.Context) error {
	path := c.String("personas")
	table, err := plan.LoadTable(path)
	if err != nil {
		return fmt.Errorf("persona table invalid: %w", err)
	}

	fmt.Printf("%s: OK\n", path)
	for _, persona := range table.Personas() {
		specs := table.Specs(persona)
		fmt.Printf("  %s (%d tools)\n", persona, len(specs))
		for _, spec := range specs {
			fmt.Printf("    %-20s weight=%.2f\n", spec.Tool, spec.Weight)
		}
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	input, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer input.Close()

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	ingested := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var doc retrievit.SeedDocument
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return fmt.Errorf("seed file line %d: %w", line, err)
		}
		if err := system.Ingest(ctx, &doc); err != nil {
			return fmt.Errorf("seed file line %d: %w", line, err)
		}
		ingested++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d documents\n", ingested)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
