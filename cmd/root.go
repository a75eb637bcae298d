package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	mtp "github.com/modeltoolsprotocol/go-sdk"
	"github.com/rogersnm/taskdesk/internal/api"
	"github.com/rogersnm/taskdesk/internal/config"
	"github.com/rogersnm/taskdesk/internal/notify"
	"github.com/rogersnm/taskdesk/internal/repofile"
	"github.com/rogersnm/taskdesk/internal/view"
	"github.com/rogersnm/taskdesk/internal/viewmodel"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const envAPIURL = "TASKDESK_API_URL"

var (
	version = "dev"
	dataDir string
	apiURL  string
	debug   bool
	cfg     *config.Config
	client  *api.Client
	// printer is the notifier of the running command, if it built one.
	printer *notify.Printer
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskdesk")
	}
	return filepath.Join(home, ".taskdesk")
}

// needsAPI reports whether cmd talks to the tasks API.
func needsAPI(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "link", "unlink", "help", "completion":
			return false
		}
	}
	return true
}

var rootCmd = &cobra.Command{
	Use:     "taskdesk",
	Short:   "Create, list, sort, filter and edit tasks on a remote tasks API",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		var err error
		cfg, err = config.Load(dataDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.SetOutput(cmd.ErrOrStderr())
		log.SetLevel(cfg.Level())
		if debug {
			log.SetLevel(log.DebugLevel)
		}

		if !needsAPI(cmd) {
			return nil
		}

		base, err := resolveAPIURL()
		if err != nil {
			return err
		}
		if base == "" {
			if base, err = runSetupPrompt(cmd); err != nil {
				return err
			}
		}
		client = api.New(base,
			api.WithAPIKey(cfg.APIKey),
			api.WithTimeout(cfg.TimeoutDuration()),
			api.WithLogger(log.StandardLogger()),
		)
		log.WithField("api_url", base).Debug("using tasks API")
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "data directory path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "tasks API base URL (overrides env, repo link and config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	mtpOpts := &mtp.DescribeOptions{
		Commands: map[string]*mtp.CommandAnnotation{
			"list": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/plain",
					Description: "Table of tasks with ID, task, status and priority (JSON array with --json)",
				},
				Examples: []mtp.Example{
					{Description: "List every task", Command: "taskdesk list"},
					{Description: "High priority tasks in progress, newest first", Command: "taskdesk list --status \"In process\" --priority High --sort id:desc"},
					{Description: "Search task text", Command: "taskdesk list --search milk"},
				},
			},
			"create": {
				Examples: []mtp.Example{
					{Description: "Create a task", Command: "taskdesk create \"Buy milk\" --priority Low"},
					{Description: "Create interactively", Command: "taskdesk create"},
				},
			},
			"show": {
				Stdout: &mtp.IODescriptor{
					ContentType: "text/markdown",
					Description: "Task as markdown with YAML frontmatter (styled with --pretty)",
				},
				Examples: []mtp.Example{
					{Description: "Show a task", Command: "taskdesk show 12"},
				},
			},
			"update": {
				Examples: []mtp.Example{
					{Description: "Mark a task done", Command: "taskdesk update 12 --status Done"},
					{Description: "Clear a task's priority", Command: "taskdesk update 12 --priority \"\""},
					{Description: "Edit in a form", Command: "taskdesk update 12 -i"},
				},
			},
			"edit": {
				Examples: []mtp.Example{
					{Description: "Edit a task in $EDITOR", Command: "taskdesk edit 12"},
				},
			},
			"delete": {
				Examples: []mtp.Example{
					{Description: "Delete a task (interactive confirm)", Command: "taskdesk delete 12"},
					{Description: "Delete a task (skip confirm)", Command: "taskdesk delete 12 --force"},
				},
			},
			"ui": {
				Examples: []mtp.Example{
					{Description: "Open the interactive board", Command: "taskdesk ui"},
				},
			},
			"link": {
				Examples: []mtp.Example{
					{Description: "Use a local API for this directory tree", Command: "taskdesk link http://localhost:3000"},
				},
			},
		},
	}

	mtp.WithDescribe(rootCmd, mtpOpts)
}

// Execute runs the root command, cancelling in-flight requests on Ctrl-C.
// An error already shown as a notification is not printed again.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	printer = nil
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && (printer == nil || !printer.Reported()) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// resolveAPIURL picks the base URL from the flag, env, repo link, then config.
func resolveAPIURL() (string, error) {
	if apiURL != "" {
		return apiURL, nil
	}
	if u := os.Getenv(envAPIURL); u != "" {
		return u, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		u, _, err := repofile.Find(cwd)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", repofile.FileName, err)
		}
		if u != "" {
			return u, nil
		}
	}
	return cfg.APIURL, nil
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// runSetupPrompt asks for the API URL on first use and saves it.
func runSetupPrompt(cmd *cobra.Command) (string, error) {
	const hint = "no tasks API configured; run: taskdesk config set api_url <url>"
	if !interactive() {
		return "", errors.New(hint)
	}
	var u string
	err := huh.NewInput().
		Title("Welcome to taskdesk! Tasks API URL").
		Placeholder("https://tasks.example.com/").
		Validate(validateURL).
		Value(&u).
		Run()
	if err != nil {
		return "", errors.New(hint)
	}
	cfg.APIURL = strings.TrimSpace(u)
	if err := config.Save(dataDir, cfg); err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved API URL to %s\n", filepath.Join(dataDir, config.FileName))
	return cfg.APIURL, nil
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// newListViewModel builds the view-model for one command run, reporting to n.
func newListViewModel(n viewmodel.Notifier) (*viewmodel.ListViewModel, error) {
	sort, err := view.ParseSortSpec(cfg.DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("config default_sort: %w", err)
	}
	return viewmodel.New(client, n,
		viewmodel.WithLogger(log.StandardLogger()),
		viewmodel.WithLanguage(cfg.Language()),
		viewmodel.WithQuery(view.Query{Sort: sort}),
	), nil
}

func printerFor(cmd *cobra.Command) *notify.Printer {
	printer = notify.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return printer
}

// openLogFile redirects the diagnostic log to the data dir while a
// full-screen UI owns the terminal.
func openLogFile() (io.Closer, error) {
	f, err := os.OpenFile(filepath.Join(dataDir, "taskdesk.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
