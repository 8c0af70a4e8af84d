package flags

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
)

func AddTags(cmd *cobra.Command) {
	cmd.Flags().
		StringP(
			"tags",
			"t",
			"",
			"Tags for the paper, separated by spaces or commas",
		)
}

// HandleTags reads the tags flag. Spaces and commas both separate tags.
func HandleTags(cmd *cobra.Command) ([]string, error) {
	raw, err := cmd.Flags().GetString("tags")
	if err != nil {
		return nil, err
	}
	return SplitTags(raw), nil
}

func SplitTags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return paper.NormalizeTags(fields)
}

func AddCategory(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("category", "c", "", usage)
}

// HandleCategory parses the category flag. An unset flag yields "".
func HandleCategory(cmd *cobra.Command) (paper.Category, error) {
	raw, err := cmd.Flags().GetString("category")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return paper.ParseCategory(raw)
}

func AddJSON(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print machine readable JSON")
}

func HandleJSON(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}
