package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-neighbors/distance"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the distance metrics accepted by --metric",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range distance.Names() {
			m, err := distance.ByName(strings.TrimSuffix(name, ":<p>"))
			if err != nil {
				return err
			}
			var props []string
			if m.SupportsAcceleration() {
				props = append(props, "accelerated")
			}
			if m.NeedsTraining() {
				props = append(props, "trained")
			}
			fmt.Fprintf(out, "%-22s %s\n", name, strings.Join(props, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
