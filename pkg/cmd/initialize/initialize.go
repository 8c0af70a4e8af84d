package initialize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/internal/pathutil"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
)

// promptDir is replaced in tests.
var promptDir = func(initial string) (string, error) {
	input := textinput.New("Library directory:")
	input.InitialValue = initial
	input.Validate = func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("a directory is required")
		}
		return nil
	}
	return input.RunPrompt()
}

func NewCmdInit(s *state.State) *cobra.Command {
	var (
		name        string
		storeKind   string
		postgresDSN string
		makeCurrent bool
	)

	cmd := &cobra.Command{
		Use:     "init [dir]",
		Aliases: []string{"initialize", "i"},
		Short:   "Create a paper library and register it in the configuration",
		Long: heredoc.Doc(`
			Init registers a library directory under a name and prepares it for
			use. File libraries keep one markdown file per paper under papers/
			and the relationships in relationships.yaml. Postgres libraries keep
			both in the database and use the directory for review logs and view
			state only.

			Examples:
			  citegraph init ~/papers
			  citegraph init ~/lab --name lab --store postgres --postgres-dsn postgres://localhost/lab
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}

			dir, err := resolveDir(args, cmdutil.IsInteractive(cmd.InOrStdin()))
			if err != nil {
				return err
			}

			kind, err := store.ParseKind(storeKind)
			if err != nil {
				return err
			}

			lib := config.NewLibrary(dir)
			lib.Store = string(kind)
			lib.PostgresDSN = strings.TrimSpace(postgresDSN)
			if err := lib.Validate(); err != nil {
				return err
			}

			st, err := state.OpenStore(cmd.Context(), lib)
			if err != nil {
				return err
			}
			if err := st.Close(); err != nil {
				return err
			}

			if err := cfg.AddLibrary(name, lib, makeCurrent); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s library %q at %s\n", kind, strings.TrimSpace(name), dir)
			if cfg.CurrentLibrary == strings.TrimSpace(name) {
				fmt.Fprintln(cmd.OutOrStdout(), "It is now the current library.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "default", "Name of the library")
	cmd.Flags().StringVar(&storeKind, "store", string(store.KindFile), "Storage backend: file or postgres")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "Connection string for the postgres store")
	cmd.Flags().BoolVar(&makeCurrent, "current", true, "Switch to the new library")
	cmdutil.DisableLibrary(cmd)

	return cmd
}

func resolveDir(args []string, interactive bool) (string, error) {
	var dir string
	if len(args) > 0 {
		dir = args[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
		if interactive {
			if dir, err = promptDir(cwd); err != nil {
				return "", err
			}
		}
	}

	dir = pathutil.NormalizePath(dir)
	if dir == "" {
		return "", fmt.Errorf("library directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return abs, nil
}
