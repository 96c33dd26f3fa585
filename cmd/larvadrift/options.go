package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/larvadrift/config"
)

var showAdvanced bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the configuration options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT\tRANGE\tDESCRIPTION")

		for _, opt := range config.NewDefaultRegistry().Options() {
			if opt.Level == config.LevelAdvanced && !showAdvanced {
				continue
			}

			fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n",
				opt.Name, opt.Kind, opt.Default, optionRange(opt), optionDescription(opt))
		}

		return w.Flush()
	},
}

func init() {
	optionsCmd.Flags().BoolVarP(&showAdvanced, "all", "a", false,
		"Include advanced options")
}

func optionRange(opt config.Option) string {
	switch opt.Kind {
	case config.KindFloat:
		return fmt.Sprintf("[%g, %g]", opt.Min, opt.Max)
	case config.KindEnum:
		return strings.Join(opt.Enum, "|")
	default:
		return "-"
	}
}

func optionDescription(opt config.Option) string {
	if opt.Units == "" {
		return opt.Description
	}

	return fmt.Sprintf("%s (%s)", opt.Description, opt.Units)
}
