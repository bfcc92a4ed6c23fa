package cmd

import (
	"encoding/json"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/pretty"
	"github.com/ossreview/depgate/sbom"

	"github.com/spf13/cobra"
)

var (
	diffOutputFile     string
	diffCurrentVersion string
	diffBaseVersion    string
)

func readSnapshot(filename, which string) *sbom.SBOM {
	data, err := os.ReadFile(filename)
	pretty.Guard(err == nil, 2, "Cannot read %s SBOM from %q, reason: %v", which, filename, err)
	document, err := sbom.Parse(data, which)
	pretty.Guard(err == nil, 2, "%v", err)
	return document
}

var diffCmd = &cobra.Command{
	Use:   "diff <current.json> <previous.json>",
	Short: "Compare two CycloneDX SBOM files and report component changes.",
	Long: `Compare two CycloneDX SBOM files and report component changes as JSON.
Components are identified by their group and name, so a version change
shows up as one updated entry, not a remove and add pair.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("SBOM diff lasted").Report()
		}
		current := readSnapshot(args[0], "current")
		previous := readSnapshot(args[1], "previous")

		diffs := sbom.Compare(current, previous)
		result := sbom.NewDiffResult(diffCurrentVersion, diffBaseVersion, diffs)
		blob, err := json.MarshalIndent(result, "", "  ")
		pretty.Guard(err == nil, 3, "Cannot serialize diff result, reason: %v", err)

		if len(diffOutputFile) > 0 {
			err = os.WriteFile(diffOutputFile, blob, 0o644)
			pretty.Guard(err == nil, 3, "Cannot write %q, reason: %v", diffOutputFile, err)
			common.Log("Wrote %d change(s) to %s.", len(diffs), diffOutputFile)
		} else {
			common.Stdout("%s\n", blob)
		}
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVarP(&diffOutputFile, "output", "o", "", "write the diff result to this file instead of stdout")
	diffCmd.Flags().StringVarP(&diffCurrentVersion, "current-version", "", "", "version label for the current snapshot")
	diffCmd.Flags().StringVarP(&diffBaseVersion, "previous-version", "", "", "version label for the previous snapshot")
}
