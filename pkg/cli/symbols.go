package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/marjoballabani/lazya2l/pkg/a2l"
	"github.com/marjoballabani/lazya2l/pkg/elfsym"
	"github.com/marjoballabani/lazya2l/pkg/store"
)

func addSymbols(topLevel *cobra.Command) {
	var (
		match   string
		objects bool
	)

	cmd := &cobra.Command{
		Use:   "symbols ELF",
		Short: "List the symbols of an ELF file and the datatype an import would give them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			symbols, err := elfsym.Load(args[0])
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("Name"), bold.Sprint("Address"), bold.Sprint("Size"),
				bold.Sprint("Type"), bold.Sprint("Bind"), bold.Sprint("Section"), bold.Sprint("Import as"))
			n := 0
			for _, s := range symbols {
				if objects && s.Type != "OBJECT" {
					continue
				}
				if match != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(match)) {
					continue
				}
				tbl.AddRow(s.Name, a2l.FormatHex(s.Address), s.Size, s.Type, s.Bind, s.Section, store.DatatypeForSymbol(s))
				n++
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d symbols\n", n, len(symbols))
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "only symbols whose name contains this text")
	cmd.Flags().BoolVar(&objects, "objects", false, "only data objects")

	topLevel.AddCommand(cmd)
}
