// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docmind"
	"github.com/poiesic/docmind/ai"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/search"
	"github.com/poiesic/docmind/storage"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docmind",
		Usage: "Document intelligence store: upload, analyze, and search documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "docmind.yaml",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-provider",
				Usage: "Disable the AI provider; use local analysis and embeddings",
			},
		},
		Before:   setupLogger,
		Commands: appCommands(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func appCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "upload",
			Usage:     "Upload and index a document",
			ArgsUsage: "<file>",
			Action:    uploadCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Usage: "Document title"},
				&cli.StringFlag{Name: "description", Usage: "Document description"},
				&cli.StringFlag{Name: "author", Usage: "Document author"},
				&cli.StringFlag{Name: "department", Usage: "Owning department"},
				&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable)"},
				&cli.StringFlag{
					Name:  "type",
					Usage: "Document type hint (financial, technical, strategic, legal, operational)",
				},
				&cli.StringFlag{
					Name:  "sensitivity",
					Usage: "Sensitivity level (public, internal, confidential, restricted)",
					Value: "internal",
				},
			},
		},
		{
			Name:      "search",
			Usage:     "Search documents by natural-language query",
			ArgsUsage: "<query>",
			Action:    searchCommand,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "max-hits", Usage: "Maximum results", Value: search.DefaultMaxHits},
				&cli.Float64Flag{Name: "min-similarity", Usage: "Similarity threshold", Value: search.DefaultMinSimilarity},
				&cli.StringFlag{Name: "department", Usage: "Restrict to a department"},
				&cli.StringFlag{Name: "type", Usage: "Restrict to a document type"},
				&cli.StringFlag{Name: "sensitivity", Usage: "Restrict to a sensitivity level"},
			},
		},
		{
			Name:      "context",
			Usage:     "Extract query-relevant context from a single document",
			ArgsUsage: "<document-id> <query>",
			Action:    contextCommand,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "max-chunks", Usage: "Maximum chunks returned", Value: 5},
			},
		},
		{
			Name:      "get",
			Usage:     "Show a stored document",
			ArgsUsage: "<document-id>",
			Action:    getCommand,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "text", Usage: "Print the extracted text"},
			},
		},
		{
			Name:   "list",
			Usage:  "List stored documents",
			Action: listCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "department", Usage: "Restrict to a department"},
				&cli.StringFlag{Name: "type", Usage: "Restrict to a document type"},
				&cli.StringFlag{Name: "sensitivity", Usage: "Restrict to a sensitivity level"},
				&cli.IntFlag{Name: "limit", Usage: "Maximum documents", Value: 50},
				&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a document and its index entries",
			ArgsUsage: "<document-id>",
			Action:    deleteCommand,
		},
		{
			Name:   "stats",
			Usage:  "Show collection statistics",
			Action: statsCommand,
		},
		{
			Name:   "reembed",
			Usage:  "Migrate fallback-embedded documents to provider embeddings",
			Action: reembedCommand,
		},
	}
}

// openStore builds a Store from the global flags and config file.
func openStore(c *cli.Context) (*docmind.Store, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.DB
	}
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required (--db flag or db: in config)")
	}

	opts := []docmind.StoreOption{
		docmind.WithAIConfig(ai.NewConfig(cfg.AI.aiOptions()...)),
	}
	if c.Bool("no-provider") || cfg.AI.Disabled {
		opts = append(opts, docmind.WithoutProvider())
	}
	return docmind.New(dbPath, opts...)
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docmind upload <file>")
	}
	path := c.Args().First()

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	meta := &core.UploadMetadata{
		Title:            c.String("title"),
		Description:      c.String("description"),
		Author:           c.String("author"),
		Department:       c.String("department"),
		Tags:             c.StringSlice("tag"),
		SensitivityLevel: core.ParseSensitivityLevel(c.String("sensitivity")),
	}
	if hint := c.String("type"); hint != "" {
		meta.DocumentType = core.ParseDocumentType(hint)
		meta.HasTypeHint = true
	}

	doc, err := store.Upload(context.Background(), raw, filepath.Base(path), meta)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Indexed document %d\n", doc.Id)
	fmt.Printf("  Filename:   %s\n", doc.Filename)
	fmt.Printf("  Type:       %s (confidence %.2f)\n", doc.DocumentType, doc.TypeConfidence)
	fmt.Printf("  State:      %s\n", doc.State)
	fmt.Printf("  Degraded:   %t\n", doc.Degraded)
	if doc.Summary != "" {
		fmt.Printf("  Summary:    %s\n", doc.Summary)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: docmind search <query>")
	}
	query := strings.Join(c.Args().Slice(), " ")

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := storage.DocumentFilter{Department: c.String("department")}
	if dt := c.String("type"); dt != "" {
		filter.Types = []core.DocumentType{core.ParseDocumentType(dt)}
	}
	if sl := c.String("sensitivity"); sl != "" {
		filter.Sensitivity = []core.SensitivityLevel{core.ParseSensitivityLevel(sl)}
	}

	results, err := store.Search(context.Background(), search.Query{
		Text:          query,
		Filter:        filter,
		MinSimilarity: float32(c.Float64("min-similarity")),
		MaxHits:       c.Int("max-hits"),
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}
	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s (id %d, %s)\n",
			i+1, result.Score, result.Document.Filename, result.Document.Id, result.Document.DocumentType)
		if len(result.Excerpts) > 0 {
			fmt.Printf("   %s\n", truncateLine(result.Excerpts[0], 160))
		}
	}
	return nil
}

func contextCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: docmind context <document-id> <query>")
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice()[1:], " ")

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	contexts, err := store.GetContext(context.Background(), id, query, c.Int("max-chunks"))
	if err != nil {
		return err
	}

	if len(contexts) == 0 {
		fmt.Println("No relevant context found.")
		return nil
	}
	for _, ctx := range contexts {
		fmt.Printf("[chunk %d, score %.3f]\n%s\n\n", ctx.ChunkIndex, ctx.Score, ctx.Text)
	}
	return nil
}

func getCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docmind get <document-id>")
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Document %d\n", doc.Id)
	fmt.Printf("  Filename:     %s\n", doc.Filename)
	fmt.Printf("  Format:       %s (%d bytes)\n", doc.FileType, doc.FileSize)
	fmt.Printf("  Type:         %s (confidence %.2f)\n", doc.DocumentType, doc.TypeConfidence)
	fmt.Printf("  Sensitivity:  %s\n", doc.SensitivityLevel)
	fmt.Printf("  State:        %s\n", doc.State)
	fmt.Printf("  Scheme:       %s\n", doc.Scheme)
	fmt.Printf("  Degraded:     %t\n", doc.Degraded)
	fmt.Printf("  Created:      %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if !doc.ProcessedAt.IsZero() {
		fmt.Printf("  Processed:    %s\n", doc.ProcessedAt.Format("2006-01-02 15:04:05"))
	}
	if doc.Department != "" {
		fmt.Printf("  Department:   %s\n", doc.Department)
	}
	if len(doc.Tags) > 0 {
		fmt.Printf("  Tags:         %s\n", strings.Join(doc.Tags, ", "))
	}
	if doc.Summary != "" {
		fmt.Printf("  Summary:      %s\n", doc.Summary)
	}
	for _, insight := range doc.KeyInsights {
		fmt.Printf("  Insight:      %s\n", insight)
	}
	if c.Bool("text") {
		fmt.Printf("\n%s\n", doc.ExtractedText)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := storage.DocumentFilter{
		Department: c.String("department"),
		Limit:      c.Int("limit"),
		Offset:     c.Int("offset"),
	}
	if dt := c.String("type"); dt != "" {
		filter.Types = []core.DocumentType{core.ParseDocumentType(dt)}
	}
	if sl := c.String("sensitivity"); sl != "" {
		filter.Sensitivity = []core.SensitivityLevel{core.ParseSensitivityLevel(sl)}
	}

	docs, err := store.List(context.Background(), filter)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, doc := range docs {
		fmt.Printf("%d  %-30s %-12s %-10s %s\n",
			doc.Id, truncateLine(doc.Filename, 30), doc.DocumentType, doc.State,
			doc.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docmind delete <document-id>")
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted document %d\n", id)
	return nil
}

func statsCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Documents: %d\n", stats.DocumentCount)
	fmt.Printf("Chunks:    %d\n", stats.ChunkCount)
	fmt.Printf("Bytes:     %d\n", stats.TotalBytes)
	for state, count := range stats.ByState {
		fmt.Printf("  state %-12s %d\n", state.String()+":", count)
	}
	for docType, count := range stats.ByType {
		fmt.Printf("  type  %-12s %d\n", docType.String()+":", count)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.MigrateEmbeddings(context.Background(), os.Stderr)
}

func parseID(s string) (core.ID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return core.ID(id), nil
}

func truncateLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
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
