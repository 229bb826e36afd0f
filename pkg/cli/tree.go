package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/marjoballabani/lazya2l/pkg/command"
	"github.com/marjoballabani/lazya2l/pkg/search"
	"github.com/marjoballabani/lazya2l/pkg/store"
)

// summaryLabels are the details shown next to an item, in order of
// preference.
var summaryLabels = []string{"Datatype", "Type", "Limits", "ECU address", "Address", "Keyword"}

func addTree(ctx context.Context, topLevel *cobra.Command) {
	var (
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the module, section and item tree of an A2L file.",
		Example: `
lazya2l tree cal.a2l
lazya2l tree cal.a2l --filter speed
lazya2l tree cal.a2l --filter '.details.Datatype == "UWORD"'
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			c := command.NewClient(command.NewLocal(command.NewDispatcher(store.New(nil), nil, nil)))

			md, err := c.OpenFile(ctx, args[0])
			if err != nil {
				return err
			}
			tree, err := c.Projection(ctx, limit)
			if err != nil {
				return err
			}
			printTree(cmd, md, search.Filter(tree, query))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum items per section (0 for all)")
	cmd.Flags().StringVar(&query, "filter", "", "substring or jq predicate (starting with '.')")

	topLevel.AddCommand(cmd)
}

func printTree(cmd *cobra.Command, md calib.Metadata, tree []calib.Container) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	version := "unknown"
	if md.ASAP2Version != nil {
		version = *md.ASAP2Version
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  ASAP2 %s  %d warnings\n", bold.Sprint(md.ProjectName), version, md.WarningCount)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, c := range tree {
		tbl.AddRow(bold.Sprint(c.Name), faint.Sprint(c.LongIdentifier), "")
		for _, s := range c.Sections {
			title := fmt.Sprintf("  %s (%d)", s.Title, s.Total)
			tbl.AddRow(bold.Sprint(title), "", "")
			for _, it := range s.Items {
				desc := ""
				if it.Description != nil {
					desc = *it.Description
				}
				tbl.AddRow("    "+it.Name, desc, summary(it))
			}
			if n := s.Remaining(); n > 0 {
				tbl.AddRow(faint.Sprintf("    … %d more", n), "", "")
			}
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
}

func summary(it calib.Item) string {
	var parts []string
	for _, label := range summaryLabels {
		if v, ok := it.Detail(label); ok && v != "—" {
			parts = append(parts, label+" "+v)
		}
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, ", ")
}
