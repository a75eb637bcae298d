package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rogersnm/taskdesk/internal/config"
	"github.com/rogersnm/taskdesk/internal/view"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change taskdesk settings",
}

// configSetters maps config keys to their validating setters.
var configSetters = map[string]func(c *config.Config, v string) error{
	"api_url": func(c *config.Config, v string) error {
		if v != "" {
			if err := validateURL(v); err != nil {
				return err
			}
		}
		c.APIURL = v
		return nil
	},
	"api_key": func(c *config.Config, v string) error {
		c.APIKey = v
		return nil
	},
	"timeout": func(c *config.Config, v string) error {
		c.Timeout = v
		return c.Validate()
	},
	"log_level": func(c *config.Config, v string) error {
		c.LogLevel = v
		return c.Validate()
	},
	"collation": func(c *config.Config, v string) error {
		c.Collation = v
		return c.Validate()
	},
	"default_sort": func(c *config.Config, v string) error {
		if _, err := view.ParseSortSpec(v); err != nil {
			return err
		}
		c.DefaultSort = v
		return nil
	},
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value (api_url, api_key, timeout, log_level, collation, default_sort)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, ok := configSetters[args[0]]
		if !ok {
			return fmt.Errorf("unknown config key %q: must be one of %s", args[0], strings.Join(configKeys(), ", "))
		}
		if err := set(cfg, strings.TrimSpace(args[1])); err != nil {
			return err
		}
		if err := config.Save(dataDir, cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
		return nil
	},
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		u, err := resolveAPIURL()
		if err != nil {
			return err
		}
		if u == "" {
			fmt.Fprintln(out, "Not configured. Run: taskdesk config set api_url <url>")
		} else {
			fmt.Fprintf(out, "API URL: %s\n", u)
		}
		if cfg.APIKey != "" {
			fmt.Fprintf(out, "API key: %s...\n", cfg.APIKey[:min(4, len(cfg.APIKey))])
		}
		fmt.Fprintf(out, "Timeout: %s\n", cfg.TimeoutDuration())
		fmt.Fprintf(out, "Log level: %s\n", cfg.Level())
		fmt.Fprintf(out, "Collation: %s\n", cfg.Language())
		if cfg.DefaultSort != "" {
			fmt.Fprintf(out, "Default sort: %s\n", cfg.DefaultSort)
		}
		fmt.Fprintf(out, "Config: %s\n", filepath.Join(dataDir, config.FileName))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configStatusCmd)
	rootCmd.AddCommand(configCmd)
}
