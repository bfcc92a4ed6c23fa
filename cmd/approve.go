package cmd

import (
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/operations"
	"github.com/ossreview/depgate/pretty"

	"github.com/spf13/cobra"
)

var (
	approveProject      string
	approveVersion      string
	approveSBOMFile     string
	approveReviewFile   string
	approveIssueNumber  int
	approveDecisionFile string
	approveReviewer     string
	approveResultsFile  string
)

func readText(filename, which string) string {
	data, err := os.ReadFile(filename)
	pretty.Guard(err == nil, 2, "Cannot read %s from %q, reason: %v", which, filename, err)
	return string(data)
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Commit an approved release: register the SBOM and stamp review results.",
	Long: `Commit an approved release. The filled review document must carry a
checked approval request and the approval document a checked approval
decision, otherwise nothing is registered.`,
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Approval lasted").Report()
		}
		pretty.Guard(len(approveReviewFile) > 0 || approveIssueNumber > 0, 1,
			"Either --review or --issue must be given.")
		var reviewText string
		var host operations.Forge
		if approveIssueNumber > 0 {
			host = forgeClient()
		} else {
			reviewText = readText(approveReviewFile, "review document")
		}
		approvalText := ""
		if len(approveDecisionFile) > 0 {
			approvalText = readText(approveDecisionFile, "approval document")
		}

		document, err := operations.RunApproval(operations.ApprovalRequest{
			ProjectName:  approveProject,
			Version:      approveVersion,
			SBOMFile:     approveSBOMFile,
			ReviewText:   reviewText,
			IssueNumber:  approveIssueNumber,
			ApprovalText: approvalText,
			Reviewer:     approveReviewer,
			ResultsFile:  approveResultsFile,
		}, trackerClient(), host)
		pretty.Guard(err == nil, 2, "Approval failed, reason: %v", err)
		common.Stdout("reviewed_components=%d\n", len(document.Results))
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
	approveCmd.Flags().StringVarP(&approveProject, "project", "p", "", "project name in Dependency-Track")
	approveCmd.Flags().StringVarP(&approveVersion, "version", "v", "", "release version being approved")
	approveCmd.Flags().StringVarP(&approveSBOMFile, "sbom", "s", "", "CycloneDX SBOM file of the approved release")
	approveCmd.Flags().StringVarP(&approveReviewFile, "review", "", "", "file holding the filled review document")
	approveCmd.Flags().IntVarP(&approveIssueNumber, "issue", "", 0, "fetch the filled review document from this issue number instead of --review")
	approveCmd.Flags().StringVarP(&approveDecisionFile, "decision", "", "", "file holding the approval document (defaults to the review document)")
	approveCmd.Flags().StringVarP(&approveReviewer, "reviewer", "", "", "identity of the reviewer")
	approveCmd.Flags().StringVarP(&approveResultsFile, "results", "", "", "write the parsed review results JSON to this file")
	approveCmd.MarkFlagRequired("project")
	approveCmd.MarkFlagRequired("version")
	approveCmd.MarkFlagRequired("sbom")
}
