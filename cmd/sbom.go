package cmd

import (
	"encoding/json"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/pretty"

	"github.com/spf13/cobra"
)

var (
	sbomOutputFile   string
	propertyGroup    string
	propertyGroupRef string
)

var sbomCmd = &cobra.Command{
	Use:     "sbom",
	Aliases: []string{"bom"},
	Short:   "Group of commands for moving SBOMs to and from Dependency-Track.",
	Long:    "Group of commands for moving SBOMs to and from Dependency-Track.",
}

var sbomFetchCmd = &cobra.Command{
	Use:   "fetch <project> <version>",
	Short: "Download the CycloneDX SBOM of one project version.",
	Long:  "Download the CycloneDX SBOM of one project version.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		document, err := trackerClient().FetchSBOM(args[0], args[1])
		pretty.Guard(err == nil, 2, "Cannot fetch SBOM, reason: %v", err)
		pretty.Guard(document != nil, 3, "No SBOM found for %s %s.", args[0], args[1])

		blob, err := json.MarshalIndent(document, "", "  ")
		pretty.Guard(err == nil, 2, "Cannot serialize SBOM, reason: %v", err)
		if len(sbomOutputFile) > 0 {
			err = os.WriteFile(sbomOutputFile, blob, 0o644)
			pretty.Guard(err == nil, 2, "Cannot write %q, reason: %v", sbomOutputFile, err)
			common.Log("Wrote SBOM with %d component(s) to %s.", len(document.Components), sbomOutputFile)
		} else {
			common.Stdout("%s\n", blob)
		}
		pretty.Ok()
	},
}

var sbomUploadCmd = &cobra.Command{
	Use:   "upload <project> <version> <sbom.json>",
	Short: "Register an SBOM file as a project version in Dependency-Track.",
	Long:  "Register an SBOM file as a project version in Dependency-Track.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		document := readSnapshot(args[2], "upload")
		project, err := trackerClient().UploadSBOM(args[0], args[1], document)
		pretty.Guard(err == nil, 2, "Cannot upload SBOM, reason: %v", err)
		common.Log("SBOM registered as project %s (%s %s).", project.UUID, project.Name, project.Version)
		pretty.Ok()
	},
}

var sbomPropertyCmd = &cobra.Command{
	Use:   "property <project-uuid> <name> <version> <property> <value>",
	Short: "Set a string property on one component of a project.",
	Long: `Set a string property on one component of a project. The component is
matched by its exact group, name and version.`,
	Args: cobra.ExactArgs(5),
	Run: func(cmd *cobra.Command, args []string) {
		err := trackerClient().SetComponentProperty(args[0], propertyGroupRef, args[1], args[2], propertyGroup, args[3], args[4])
		pretty.Guard(err == nil, 2, "Cannot set component property, reason: %v", err)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(sbomCmd)
	sbomCmd.AddCommand(sbomFetchCmd)
	sbomCmd.AddCommand(sbomUploadCmd)
	sbomCmd.AddCommand(sbomPropertyCmd)
	sbomFetchCmd.Flags().StringVarP(&sbomOutputFile, "output", "o", "", "write the SBOM to this file instead of stdout")
	sbomPropertyCmd.Flags().StringVarP(&propertyGroupRef, "group", "g", "", "component group of the target component")
	sbomPropertyCmd.Flags().StringVarP(&propertyGroup, "property-group", "", "oss-review", "property group to store the value under")
}
