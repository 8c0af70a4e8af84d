package backup

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/backup"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

// now is replaced in tests.
var now = time.Now

func NewCmdBackup(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back the library up to S3 or a local archive",
		Long: heredoc.Doc(`
			Backup packs the paper files, relationships.yaml, the saved view and
			the review logs into a gzipped tarball. Push and pull use the bucket
			from the library's backup settings; export and import work with a
			local file.

			Example configuration:
			  backup:
			    bucket: my-papers
			    prefix: citegraph
			    region: eu-west-1
			    endpoint: http://localhost:9000   # S3 compatible stores
		`),
	}

	cmd.AddCommand(
		newCmdPush(s),
		newCmdPull(s),
		newCmdList(s),
		newCmdExport(s),
		newCmdImport(s),
	)

	return cmd
}

func newCmdPush(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload an archive of the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			warnDatabaseStore(s)
			client, err := backup.NewClient(cmd.Context(), s.Library.Backup)
			if err != nil {
				return err
			}
			key, count, err := client.Push(cmd.Context(), s.LibraryName, s.Dir, roots(s), now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d files to %s\n", count, key)
			return nil
		},
	}
}

func newCmdPull(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [key]",
		Short: "Restore the newest archive, or the one at key, over the library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := backup.NewClient(cmd.Context(), s.Library.Backup)
			if err != nil {
				return err
			}

			var key string
			if len(args) > 0 {
				key = args[0]
			} else if key, err = client.Latest(cmd.Context(), s.LibraryName); err != nil {
				if errors.Is(err, backup.ErrNoBackups) {
					return fmt.Errorf("%w for library %q", err, s.LibraryName)
				}
				return err
			}

			count, err := client.Pull(cmd.Context(), key, s.Dir)
			if err != nil {
				return err
			}
			restored(s)
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d files from %s\n", count, key)
			return nil
		},
	}
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the archives stored for the library",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backup.NewClient(cmd.Context(), s.Library.Backup)
			if err != nil {
				return err
			}
			objects, err := client.List(cmd.Context(), s.LibraryName)
			if err != nil {
				return err
			}
			if len(objects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups yet.")
				return nil
			}
			for _, obj := range objects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %8d bytes  %s\n",
					obj.LastModified.Local().Format("2006-01-02 15:04"), obj.Size, obj.Key)
			}
			return nil
		},
	}
}

func newCmdExport(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write an archive of the library to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warnDatabaseStore(s)
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			count, err := backup.Archive(s.Dir, roots(s), f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", count, args[0])
			return nil
		},
	}
}

func newCmdImport(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a local archive over the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			count, err := backup.Restore(f, s.Dir)
			if err != nil {
				return err
			}
			restored(s)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files from %s\n", count, args[0])
			return nil
		},
	}
}

func roots(s *state.State) []string {
	return backup.Entries(s.Library.Review.Directory)
}

// restored drops cached state that the restore may have replaced.
func restored(s *state.State) {
	s.Corpus.Invalidate()
	if view, err := state.LoadViewState(s.Dir); err == nil {
		s.View = view
	}
}

func warnDatabaseStore(s *state.State) {
	if kind, _ := store.ParseKind(s.Library.Store); kind == store.KindPostgres {
		logger.Warn("papers and relationships live in postgres and are not part of the archive", "library", s.LibraryName)
	}
}
