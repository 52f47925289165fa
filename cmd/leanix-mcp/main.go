package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robby/leanix-mcp/internal/config"
	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
	"github.com/robby/leanix-mcp/internal/store"
	"github.com/robby/leanix-mcp/internal/tools"
	"github.com/robby/leanix-mcp/internal/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli holds the persistent flags shared by every command.
type cli struct {
	configFile string
	output     string
	stdout     io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{stdout: os.Stdout}
	if err := c.rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stop()
}

func (c *cli) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leanix-mcp",
		Short: "LeanIX catalog tools for agents and the terminal",
		Long: `leanix-mcp exposes the LeanIX enterprise architecture catalog as
Model Context Protocol tools and as a small command line client.

Configuration (environment variables or a YAML file passed with --config):
  LEANIX_SUBDOMAIN   workspace subdomain, https://{subdomain}.leanix.net
  LEANIX_API_TOKEN   API token of a technical user
  LEANIX_PAGE_SIZE   default page size (50)
  LEANIX_TIMEOUT     HTTP timeout (30s)
  LEANIX_WORKSPACE   workspace name, enables links to the web UI
  LEANIX_LOG_LEVEL   debug, info, warn or error (info)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (also LEANIX_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", formatJSON, "output format: json or yaml")

	rootCmd.AddCommand(
		c.serveCmd(),
		c.typesCmd(),
		c.workspaceCmd(),
		c.listCmd(),
		c.pageCmd(),
		c.searchCmd(),
		c.toolsCmd(),
		c.browseCmd(),
	)
	return rootCmd
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			server := mcp.NewServer(&mcp.Implementation{Name: "leanix-mcp", Version: version}, nil)
			tools.Register(server, client, logger)

			ctx := cmd.Context()
			logger.Info("serving LeanIX tools over stdio",
				zap.String("subdomain", cfg.Subdomain),
				zap.Int("tools", len(tools.Definitions())),
			)
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp server stopped: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the fact sheet types and facets of the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			facets, err := client.GetTypes(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(facets)
		},
	}
}

func (c *cli) workspaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace",
		Short: "Show workspace information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			info, err := client.GetWorkspaceInfo(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, info)
			return err
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "list TYPE",
		Short: "List all fact sheets of a type, e.g. Application or DataObject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if raw {
				doc, err := client.FactSheetsByTypeDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.printRaw(doc)
			}
			factSheets, err := client.GetFactSheetsByType(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(factSheets)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the unmapped GraphQL response")
	return cmd
}

func (c *cli) pageCmd() *cobra.Command {
	var (
		first int
		after string
	)
	cmd := &cobra.Command{
		Use:   "page TYPE",
		Short: "Fetch one page of fact sheets; pass the printed endCursor to --after for the next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			page, err := client.GetFactSheetsByTypePaginated(cmd.Context(), args[0], leanix.PageRequest{First: first, After: after})
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	cmd.Flags().IntVar(&first, "first", 0, "page size (default: configured page size)")
	cmd.Flags().StringVar(&after, "after", "", "endCursor of the previous page")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Search fact sheets by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, client, err := c.connect()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			term := strings.Join(args, " ")
			if raw {
				doc, err := client.SearchDocument(cmd.Context(), term)
				if err != nil {
					return err
				}
				return c.printRaw(doc)
			}
			factSheets, err := client.SearchFactSheetsByName(cmd.Context(), term)
			if err != nil {
				return err
			}
			return c.print(factSheets)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the unmapped GraphQL response")
	return cmd
}

func (c *cli) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools served by 'serve'",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.print(tools.Definitions())
		},
	}
}

func (c *cli) browseCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in an interactive terminal UI",
		Long: `Browse the catalog in an interactive terminal UI.

Pick a fact sheet type, page through it with L, filter loaded fact sheets
with /, search by name with s and open details with enter. With a workspace
configured, o opens the selected fact sheet in the LeanIX web UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var selected domain.FactSheetType
			if typeFlag != "" {
				selected = domain.FactSheetType(typeFlag)
				if !selected.Valid() {
					return fmt.Errorf("unsupported fact sheet type %q, use one of %s", typeFlag, typeNames())
				}
			}

			cfg, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			// Log output would corrupt the alternate screen
			client, err := leanix.NewFromConfig(cfg, zap.NewNop())
			if err != nil {
				return err
			}

			urlFor := func(fs domain.FactSheet) string {
				return client.FactSheetURL(cfg.Workspace, fs)
			}
			app := tui.NewAppModel(client, store.New(), cmd.Context(), selected, urlFor)

			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("program error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "fact sheet type to open, skips the type picker")
	return cmd
}

// connect loads the configuration and builds the logger and client.
func (c *cli) connect() (config.Config, *zap.Logger, *leanix.Client, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	if err := validateFormat(c.output); err != nil {
		return cfg, nil, nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := leanix.NewFromConfig(cfg, logger)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, logger, client, nil
}

// newLogger builds a production logger on stderr; stdout carries MCP traffic.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func typeNames() string {
	names := make([]string, 0, len(domain.AllFactSheetTypes()))
	for _, t := range domain.AllFactSheetTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
