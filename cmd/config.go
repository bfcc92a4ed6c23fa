package cmd

import (
	"strings"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/guide"
	"github.com/ossreview/depgate/pretty"
	"github.com/ossreview/depgate/settings"

	"github.com/spf13/cobra"
)

func redacted(value string) string {
	if len(value) == 0 {
		return "(unset)"
	}
	return "(set)"
}

func orDefault(value string) string {
	if len(value) == 0 {
		return "(unset)"
	}
	return value
}

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"configuration"},
	Short:   "Show the effective depgate configuration.",
	Long:    "Show the effective depgate configuration, secrets redacted.",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := settings.SummonSettings()
		pretty.Guard(err == nil, 1, "Cannot load settings, reason: %v", err)

		common.Stdout("Dependency-Track URL:  %s\n", orDefault(config.TrackerURL()))
		common.Stdout("Dependency-Track key:  %s\n", redacted(config.TrackerAPIKey()))
		common.Stdout("GitHub token:          %s\n", redacted(config.GithubToken()))
		common.Stdout("GitHub repository:     %s\n", orDefault(config.GithubRepository()))
		common.Stdout("GitHub output file:    %s\n", orDefault(config.GithubOutput()))
		common.Stdout("License guidelines:    %s\n", orDefault(config.GuidelineFile()))

		provider := guide.NewProvider(config.GuidelineFile())
		provider.Load()
		if provider.Loaded() {
			common.Stdout("Guideline licenses:    %s\n", strings.Join(provider.LicenseIDs(), ", "))
		} else {
			common.Stdout("Guideline licenses:    (guideline file not loadable, default guidance applies)\n")
		}
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
