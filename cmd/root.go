package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/xbrlgraph/internal/config"
	"github.com/agentic-research/xbrlgraph/internal/ingest"
	"github.com/agentic-research/xbrlgraph/internal/xbrl"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "xbrlgraph.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:   "xbrlgraph",
	Short: "Inspect XBRL financial filings as a resolved fact graph",
	Long: `xbrlgraph loads an XBRL filing (instance document, linkbases, inline XBRL,
a directory or a ZIP archive of them) and resolves its facts: contexts,
labels, units, presentation tables and inferred quarterly values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = cfg.Logger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDocument loads the filing at path. The form type comes from the config
// or, when unset there, from the filing's DocumentType fact.
func openDocument(ctx context.Context, path string) (*xbrl.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	name := filepath.Base(abs)
	loader := ingest.NewLoader(osfs.New(filepath.Dir(abs)), ingest.WithLogger(logger))

	g, err := loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	opts := append([]xbrl.Option{xbrl.WithLogger(logger)}, cfg.DocumentOptions(ingest.FormType(g), name)...)
	doc := xbrl.New(g, opts...)
	doc.MarkPostProcessingDone()
	logger.Debug("document ready",
		zap.String("path", abs),
		zap.String("graph", g.Describe()),
		zap.Int("values", len(doc.Values())))
	return doc, nil
}
