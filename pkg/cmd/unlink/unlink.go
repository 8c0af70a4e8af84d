package unlink

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/store"
)

func NewCmdUnlink(s *state.State) *cobra.Command {
	var rawType string

	cmd := &cobra.Command{
		Use:   "unlink <relationship-id> | unlink <from> <to> --type <type>",
		Short: "Delete a relationship",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := s.Corpus.AcquireSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			var rel paper.Relationship
			if len(args) == 1 {
				var ok bool
				if rel, ok = snap.Relationship(args[0]); !ok {
					return fmt.Errorf("%w: %s", store.ErrRelationshipNotFound, args[0])
				}
			} else {
				if rawType == "" {
					return fmt.Errorf("--type is required when unlinking by paper ids")
				}
				relType, err := paper.ParseRelationshipType(rawType)
				if err != nil {
					return err
				}
				key := paper.Normalize(paper.Relationship{From: args[0], To: args[1], Type: relType}).Key()
				found := false
				for _, candidate := range snap.Relationships {
					if candidate.Key() == key {
						rel, found = candidate, true
						break
					}
				}
				if !found {
					return fmt.Errorf("%w: %s %s %s", store.ErrRelationshipNotFound, args[0], relType, args[1])
				}
			}

			if err := s.Corpus.RemoveRelationship(cmd.Context(), rel.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s: %s %s %s\n", rel.ID, rel.From, rel.Type, rel.To)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawType, "type", "t", "", "Relationship type when unlinking by paper ids")

	return cmd
}
