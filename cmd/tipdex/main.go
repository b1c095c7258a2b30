package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tipdex/internal/api"
	"tipdex/internal/catalog"
	"tipdex/internal/config"
	"tipdex/internal/domain"
	"tipdex/internal/fetcher"
	"tipdex/internal/loader"
	"tipdex/internal/store"
)

var (
	cfgPath    string
	sourceFlag string
	dbFlag     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tipdex",
		Short:         "Query a Markdown tip catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "tip source file or directory")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "catalog cache database path")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(previewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if sourceFlag != "" {
		cfg.Source = sourceFlag
	}
	if dbFlag != "" {
		cfg.Database.Path = dbFlag
	}
	return cfg, nil
}

// openCatalog parses the source and builds the query service.
func openCatalog() (*catalog.Service, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	entries, err := loader.Load(cfg.Source)
	if err != nil {
		return nil, config.Config{}, err
	}
	return catalog.NewService(catalog.Build(entries)), cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(cfg.Database.Path)
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		logCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return logCfg.Build()
}

func listCmd() *cobra.Command {
	var tag string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openCatalog()
			if err != nil {
				return err
			}

			entries := svc.All()
			if tag != "" {
				entries = svc.ByTag(tag)
			}
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			if len(entries) == 0 {
				fmt.Println("No entries found.")
				return nil
			}
			for _, e := range entries {
				fmt.Println(entryLine(e))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only entries with this tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries to show")
	return cmd
}

func showCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("entry id must be an integer: %q", args[0])
			}

			svc, _, err := openCatalog()
			if err != nil {
				return err
			}

			entry, err := svc.ByID(id)
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("no such entry: %d", id)
			}
			if err != nil {
				return err
			}

			fmt.Println(entryHeader(entry))
			fmt.Println()
			if plain {
				fmt.Println(entry.Body)
			} else {
				fmt.Println(renderMarkdown(entry.Body))
			}
			if entry.Link != "" {
				fmt.Println()
				fmt.Println(linkLine(entry.Link))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of rendering")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "Search entries by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openCatalog()
			if err != nil {
				return err
			}

			entries := svc.Search(args[0])
			if len(entries) == 0 {
				fmt.Println("No matching entries found.")
				return nil
			}
			for _, e := range entries {
				fmt.Println(entryLine(e))
			}
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags with entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openCatalog()
			if err != nil {
				return err
			}

			tags := svc.Tags()
			if len(tags) == 0 {
				fmt.Println("No tags in the catalog.")
				return nil
			}
			for _, t := range tags {
				fmt.Printf("%s  %d\n", tagStyle.Render(t.Name), t.Count)
			}
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Parse the source and refresh the catalog cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			entries, err := loader.Load(cfg.Source)
			if err != nil {
				return err
			}
			fp, err := loader.Fingerprint(cfg.Source)
			if err != nil {
				return err
			}

			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Sync(entries, fp); err != nil {
				return err
			}

			fmt.Printf("Synced %d entries to %s\n", len(entries), cfg.Database.Path)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = config.Addr(cfg)
			}

			log, err := newLogger(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer log.Sync()

			entries, err := loadCorpus(cfg, log)
			if err != nil {
				return err
			}
			svc := catalog.NewService(catalog.Build(entries))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.New(svc, log, addr).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (defaults to config)")
	return cmd
}

// loadCorpus serves the corpus from the SQLite cache when the source is
// unchanged, re-parsing and refreshing the cache otherwise.
func loadCorpus(cfg config.Config, log *zap.Logger) ([]domain.Entry, error) {
	fp, err := loader.Fingerprint(cfg.Source)
	if err != nil {
		return nil, err
	}

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cached, err := s.Fingerprint()
	if err == nil && cached == fp {
		entries, err := s.LoadAll()
		if err == nil && len(entries) > 0 {
			log.Info("corpus loaded from cache", zap.Int("entries", len(entries)))
			return entries, nil
		}
		log.Warn("cache unreadable, re-parsing source", zap.Error(err))
	}

	entries, err := loader.Load(cfg.Source)
	if err != nil {
		return nil, err
	}
	if err := s.Sync(entries, fp); err != nil {
		log.Warn("cache refresh failed", zap.Error(err))
	} else {
		log.Info("corpus parsed and cached", zap.Int("entries", len(entries)))
	}
	return entries, nil
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [id]",
		Short: "Fetch and print the entry's external link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("entry id must be an integer: %q", args[0])
			}

			svc, _, err := openCatalog()
			if err != nil {
				return err
			}

			entry, err := svc.ByID(id)
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("no such entry: %d", id)
			}
			if err != nil {
				return err
			}
			if entry.Link == "" {
				return fmt.Errorf("entry %d has no external link", id)
			}

			client := fetcher.NewClient(&http.Client{Timeout: 30 * time.Second})
			text, err := client.Preview(cmd.Context(), entry.Link)
			if err != nil {
				return err
			}

			fmt.Println(entryHeader(entry))
			fmt.Println(linkLine(entry.Link))
			fmt.Println()
			fmt.Println(text)
			return nil
		},
	}
}
