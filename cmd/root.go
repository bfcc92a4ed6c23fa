package cmd

import (
	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/pretty"

	"github.com/spf13/cobra"
)

var (
	debugFlag  bool
	traceFlag  bool
	silentFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "depgate",
	Short: "depgate is a release gate for OSS license and version review.",
	Long: `depgate compares release SBOMs against a baseline, attaches license
guidelines to the differences, renders them as reviewable documents and
registers the approved SBOM with Dependency-Track.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.DefineVerbosity(silentFlag, debugFlag, traceFlag)
		pretty.Setup()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		common.Exit(1, "Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "", false, "to get debug output where available (not for production use)")
	rootCmd.PersistentFlags().BoolVarP(&traceFlag, "trace", "", false, "to get trace output where available (not for production use)")
	rootCmd.PersistentFlags().BoolVarP(&silentFlag, "silent", "", false, "be less verbose on output")
}
