package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
)

func NewCmdLibrary(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage paper libraries",
	}

	cmd.AddCommand(
		newCmdLibraryList(s),
		newCmdLibrarySwitch(s),
		newCmdLibraryAdd(s),
		newCmdLibraryRemove(s),
	)
	cmdutil.DisableLibrary(cmd)

	return cmd
}

func newCmdLibraryList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured libraries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}

			names := cfg.LibraryNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No libraries configured")
				return nil
			}

			for _, name := range names {
				marker := " "
				if name == cfg.CurrentLibrary {
					marker = "*"
				}
				lib := cfg.Libraries[name]
				dir := lib.Dir
				if dir == "" {
					dir = "(not initialized)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", marker, name, lib.Store, dir)
			}

			return nil
		},
	}
}

func newCmdLibrarySwitch(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "switch [name]",
		Short: "Switch the current library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return fmt.Errorf("library name cannot be empty")
			}

			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.SwitchLibrary(target); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to library %q\n", target)
			return nil
		},
	}
}

func newCmdLibraryAdd(s *state.State) *cobra.Command {
	var (
		name        string
		dir         string
		storeKind   string
		postgresDSN string
		makeCurrent bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an existing library directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("library name is required")
			}
			dir = strings.TrimSpace(dir)
			if dir == "" {
				return fmt.Errorf("library directory is required")
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}

			lib := cloneLibrarySettings(cfg.Libraries[cfg.CurrentLibrary])
			lib.Dir = abs
			if storeKind != "" {
				kind, err := store.ParseKind(storeKind)
				if err != nil {
					return err
				}
				lib.Store = string(kind)
			}
			if postgresDSN != "" {
				lib.PostgresDSN = postgresDSN
			}

			if err := cfg.AddLibrary(name, lib, makeCurrent); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added library %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the new library")
	cmd.Flags().StringVar(&dir, "dir", "", "Path to the library directory")
	cmd.Flags().StringVar(&storeKind, "store", "", "Storage backend: file or postgres")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "Connection string for the postgres store")
	cmd.Flags().BoolVar(&makeCurrent, "current", false, "Switch to the new library after creation")

	return cmd
}

func newCmdLibraryRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a library from the configuration; its files are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("library name cannot be empty")
			}

			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RemoveLibrary(name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed library %q\n", name)
			return nil
		},
	}
}

// cloneLibrarySettings copies tuning from src so a new library starts with
// the same layout, weights and review settings. Store credentials and the
// backup target are not carried over.
func cloneLibrarySettings(src *config.Library) *config.Library {
	lib := config.NewLibrary("")
	if src == nil {
		return lib
	}
	lib.Staleness = src.Staleness
	lib.Layout = src.Layout
	lib.Weights = src.Weights
	lib.Review = src.Review
	return lib
}
