package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/runtime"
)

func newCacheCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or purge the compile cache",
	}

	cmd.AddCommand(newCacheStatsCommand(configPath))
	cmd.AddCommand(newCacheClearCommand(configPath))
	cmd.AddCommand(newCacheCleanCommand(configPath))

	return cmd
}

func newCacheStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache entry count, on-disk size, and hit/miss counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			stats, err := cacheFor(cfg).Stats()
			if err != nil {
				return fmt.Errorf("cli: cache stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entries:    %d\n", stats.Entries)
			fmt.Fprintf(out, "total size: %d bytes\n", stats.TotalBytes)
			fmt.Fprintf(out, "hits:       %d\n", stats.HitsSinceStart)
			fmt.Fprintf(out, "misses:     %d\n", stats.MissesSinceStart)

			return nil
		},
	}
}

func newCacheClearCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the entire on-disk compile cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			if err := cacheFor(cfg).Clear(); err != nil {
				return fmt.Errorf("cli: cache clear: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")

			return nil
		},
	}
}

func newCacheCleanCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove cache entries for toolchain versions no longer installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			current := make(map[dsl.Lang]string, len(cfg.RuntimeEnvs))
			for lang, workDir := range cfg.RuntimeEnvs {
				rt, err := runtime.New(lang, workDir)
				if err != nil {
					continue
				}

				toolchainID, err := rt.ToolchainID(ctx)
				if err != nil {
					continue
				}
				current[lang] = toolchainID
			}

			if err := cacheFor(cfg).Clean(current); err != nil {
				return fmt.Errorf("cli: cache clean: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "cache cleaned")

			return nil
		},
	}
}
