package cmd

import (
	"fmt"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/dtrack"
	"github.com/ossreview/depgate/pretty"
	"github.com/ossreview/depgate/resolver"
	"github.com/ossreview/depgate/settings"

	"github.com/spf13/cobra"
)

var resolveRepoRoot string

func trackerClient() *dtrack.Client {
	config, err := settings.SummonSettings()
	pretty.Guard(err == nil, 1, "Cannot load settings, reason: %v", err)
	client, err := dtrack.NewClient(config.TrackerURL(), config.TrackerAPIKey())
	pretty.Guard(err == nil, 1, "Cannot build Dependency-Track client, reason: %v", err)
	return client
}

func appendOutputs(resolution resolver.Resolution) {
	config, err := settings.SummonSettings()
	if err != nil || len(config.GithubOutput()) == 0 {
		return
	}
	sink, err := os.OpenFile(config.GithubOutput(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	pretty.Guard(err == nil, 2, "Cannot open output file %q, reason: %v", config.GithubOutput(), err)
	defer sink.Close()
	fmt.Fprintf(sink, "previous_version=%s\n", resolution.PreviousVersion)
	fmt.Fprintf(sink, "is_first_version=%v\n", resolution.IsFirstVersion)
	fmt.Fprintf(sink, "version_source=%s\n", resolution.Source)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <project> <current-version>",
	Short: "Decide the previous version baseline for an SBOM comparison.",
	Long: `Decide the previous version baseline for an SBOM comparison: an
explicit pre-project-version from the release configuration wins, then
the version is checked against Dependency-Track, and when nothing is
found the release is treated as the first version.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		config := settings.ReadReleaseConfig(resolveRepoRoot)
		resolution := resolver.Resolve(config, trackerClient(), args[0], args[1])

		common.Stdout("previous_version=%s\n", resolution.PreviousVersion)
		common.Stdout("is_first_version=%v\n", resolution.IsFirstVersion)
		common.Stdout("version_source=%s\n", resolution.Source)
		appendOutputs(resolution)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveRepoRoot, "repo", "r", ".", "repository root holding the release configuration")
}
