package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/pkg/cmd/backup"
	"github.com/Paintersrp/citegraph/pkg/cmd/bridges"
	"github.com/Paintersrp/citegraph/pkg/cmd/connections"
	"github.com/Paintersrp/citegraph/pkg/cmd/explore"
	"github.com/Paintersrp/citegraph/pkg/cmd/graph"
	"github.com/Paintersrp/citegraph/pkg/cmd/initialize"
	"github.com/Paintersrp/citegraph/pkg/cmd/library"
	"github.com/Paintersrp/citegraph/pkg/cmd/link"
	"github.com/Paintersrp/citegraph/pkg/cmd/mcp"
	"github.com/Paintersrp/citegraph/pkg/cmd/paper"
	"github.com/Paintersrp/citegraph/pkg/cmd/pick"
	"github.com/Paintersrp/citegraph/pkg/cmd/review"
	"github.com/Paintersrp/citegraph/pkg/cmd/tags"
	"github.com/Paintersrp/citegraph/pkg/cmd/unlink"
	"github.com/Paintersrp/citegraph/pkg/cmdutil"
	"github.com/Paintersrp/citegraph/pkg/logger"
	"github.com/Paintersrp/citegraph/pkg/logger/console"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	var libraryName string

	cmd := &cobra.Command{
		Use:     "citegraph",
		Aliases: []string{"cg"},
		Short:   "Map how the papers you read relate, and find what to read next.",
		Long: heredoc.Doc(`
			Keep a library of research papers, record how they build on, extend
			or contradict each other, and let the graph suggest what to connect
			and what to revisit.

			  citegraph paper add --title "Attention Is All You Need" --author Vaswani --year 2017
			  citegraph link vaswani2017attention bahdanau2014neural --type builds_on
			  citegraph bridges vaswani2017attention
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.LoadConfig()
			if err != nil {
				return err
			}

			level := viper.GetString("log_level")
			if level == "" {
				level = cfg.LogLevel
			}
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Level:  level,
				Output: cmd.ErrOrStderr(),
			}))

			if cmdutil.SkipsLibrary(cmd) {
				return nil
			}
			return s.Open(cmd.Context(), libraryName)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return s.Close()
		},
		// Explore is the default view.
		RunE: func(cmd *cobra.Command, args []string) error {
			return explore.NewCmdExplore(s).RunE(cmd, args)
		},
	}

	cmd.PersistentFlags().
		StringVarP(
			&libraryName,
			"library",
			"L",
			"",
			"Library to use for this command instead of the current one.",
		)
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error.")
	viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		library.NewCmdLibrary(s),
		paper.NewCmdPaper(s),
		link.NewCmdLink(s),
		unlink.NewCmdUnlink(s),
		connections.NewCmdConnections(s),
		bridges.NewCmdBridges(s),
		review.NewCmdReview(s),
		graph.NewCmdGraph(s),
		tags.NewCmdTags(s),
		pick.NewCmdPick(s),
		explore.NewCmdExplore(s),
		backup.NewCmdBackup(s),
		mcp.NewCmdMCP(s),
	)

	return cmd, nil
}
