package flags

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/citegraph/internal/paper"
)

func TestSplitTags(t *testing.T) {
	got := SplitTags(" Vision, attention  vision,,GAN\t")
	if strings.Join(got, ",") != "attention,gan,vision" {
		t.Fatalf("unexpected tags %v", got)
	}
	if len(SplitTags("")) != 0 {
		t.Fatalf("expected no tags for an empty flag")
	}
}

func TestHandleCategory(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	AddCategory(cmd, "category")

	c, err := HandleCategory(cmd)
	if err != nil || c != "" {
		t.Fatalf("expected an unset category, got %q, %v", c, err)
	}

	if err := cmd.Flags().Set("category", "Transformer"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	c, err = HandleCategory(cmd)
	if err != nil || c != paper.CategoryTransformer {
		t.Fatalf("expected transformer, got %q, %v", c, err)
	}

	if err := cmd.Flags().Set("category", "poetry"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if _, err := HandleCategory(cmd); err == nil {
		t.Fatalf("expected an unknown category error")
	}
}
