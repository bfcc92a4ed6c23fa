package cmd

import (
	"github.com/ossreview/depgate/common"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show depgate version.",
	Long:  "Show depgate version.",
	Run: func(cmd *cobra.Command, args []string) {
		common.Stdout("%v\n", common.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
