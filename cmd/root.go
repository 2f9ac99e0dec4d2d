package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simasch/pr-finder/pkg/action"
	"github.com/simasch/pr-finder/pkg/config"
	prerrors "github.com/simasch/pr-finder/pkg/errors"
	"github.com/simasch/pr-finder/pkg/finder"
	"github.com/simasch/pr-finder/pkg/github"
	"github.com/simasch/pr-finder/pkg/ui"
)

var (
	cfgFile string
	verbose bool

	flagLimit         int
	flagOwner         string
	flagInteractive   bool
	flagNoInteractive bool
)

// rootCmd fetches and presents the authenticated user's open pull requests.
var rootCmd = &cobra.Command{
	Use:   "pr-finder",
	Short: "Find your open pull requests across GitHub",
	Long: `pr-finder collects every open pull request that involves you and presents
them in one place, grouped by how you are involved:

  Authored           PRs you opened
  Review requested   PRs waiting on your review
  Assigned           PRs assigned to you
  Repo access        open PRs in repositories you can push to

Each pull request appears exactly once, in the highest-priority group that
claims it. In a terminal you get an interactive picker with a merge action;
otherwise a plain report is printed.

Examples:
  pr-finder                      # report or picker, auto-detected
  pr-finder --no-interactive     # always print the report
  pr-finder -o myorg -L 50       # restrict to one org, 50 results per query`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagInteractive && flagNoInteractive {
			return prerrors.NewConfigError("interactive", "--interactive and --no-interactive are mutually exclusive")
		}

		cfg, err := config.Init(cfgFile)
		if err != nil {
			return prerrors.NewConfigErrorWithCause("", "failed to load configuration", err)
		}
		applyFlags(cmd, cfg)

		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}

		client, err := github.NewClient(&cfg.GitHub, verbose)
		if err != nil {
			fmt.Fprintln(os.Stderr, prerrors.FormatUserError(err))
			return err
		}

		return runFind(cmd.Context(), cfg, client, os.Stdout)
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, prerrors.FormatUserError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/pr-finder/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().IntVarP(&flagLimit, "limit", "L", 0, "max results per search query")
	rootCmd.Flags().StringVarP(&flagOwner, "owner", "o", "", "restrict all queries to this user or organization")
	rootCmd.Flags().BoolVar(&flagInteractive, "interactive", false, "force the interactive picker")
	rootCmd.Flags().BoolVar(&flagNoInteractive, "no-interactive", false, "force the plain report")
}

// applyFlags layers explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("limit") {
		cfg.Finder.Limit = flagLimit
	}
	if cmd.Flags().Changed("owner") {
		cfg.Finder.Owner = flagOwner
	}
	if flagInteractive {
		cfg.Finder.Interactive = "always"
	}
	if flagNoInteractive {
		cfg.Finder.Interactive = "never"
	}
}

// runFind executes the fetch → aggregate → present pipeline.
func runFind(ctx context.Context, cfg *config.Config, client github.Client, out io.Writer) error {
	if !client.IsAuthenticated() {
		return prerrors.NewGitHubError("Auth", "not authenticated with GitHub. Run 'gh auth login' or set GITHUB_TOKEN")
	}

	login, err := client.CurrentLogin(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, prerrors.FormatUserError(err))
		return err
	}
	slog.Debug("resolved login", "login", login)

	raw := finder.Fetch(ctx, client, finder.FetchOptions{
		Login: login,
		Owner: cfg.Finder.Owner,
		Limit: cfg.Finder.Limit,
	})
	agg := finder.Aggregate(raw)

	styles := ui.NewStyles(colorEnabled(cfg))
	now := time.Now().UTC()

	if agg.Total() == 0 {
		ui.Report(out, agg, styles, now)
		return nil
	}

	if !interactiveEnabled(cfg) {
		ui.Report(out, agg, styles, now)
		return nil
	}

	ws := finder.NewWorkingSet(agg)
	handler := action.NewHandler(client, cfg.GitHub.DefaultMergeMethod)
	notice, err := ui.RunPicker(ws, handler, styles)
	if err != nil {
		fmt.Fprintln(os.Stderr, prerrors.FormatUserError(err))
		return err
	}
	if notice != "" {
		fmt.Fprintln(out, notice)
	}
	return nil
}

// interactiveEnabled resolves the interactive mode setting. "auto" means a
// terminal on stdout.
func interactiveEnabled(cfg *config.Config) bool {
	switch cfg.Finder.Interactive {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// colorEnabled resolves the color setting the same way.
func colorEnabled(cfg *config.Config) bool {
	switch cfg.UI.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
