package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/marjoballabani/lazya2l/pkg/recent"
)

func addRecent(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:       "recent [a2l|elf]",
		Short:     "List recently opened A2L or ELF files.",
		ValidArgs: []string{string(recent.KindA2L), string(recent.KindELF)},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind := recent.KindA2L
			if len(args) == 1 {
				var err error
				if kind, err = recent.ParseKind(args[0]); err != nil {
					return err
				}
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printRecents(cmd, recent.Open(cfg.Data.Dir).List(kind))
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func printRecents(cmd *cobra.Command, entries []recent.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recent files")
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Name"), bold.Sprint("Location"), bold.Sprint("Opened"))
	for _, e := range entries {
		tbl.AddRow(e.Name, e.Location, e.OpenedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
}
