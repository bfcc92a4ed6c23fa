package cmd

import (
	"encoding/json"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/pretty"
	"github.com/ossreview/depgate/review"

	"github.com/spf13/cobra"
)

var (
	parseReviewer string
	parseVersion  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Group of commands for parsing filled review documents.",
	Long:  "Group of commands for parsing filled review documents.",
}

var parseReviewCmd = &cobra.Command{
	Use:   "review <issue-body.md>",
	Short: "Parse a filled review issue into review results JSON.",
	Long:  "Parse a filled review issue into review results JSON on stdout.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := readText(args[0], "review document")
		document := review.ParseReviewIssue(text, parseReviewer, parseVersion)
		blob, err := json.MarshalIndent(document, "", "  ")
		pretty.Guard(err == nil, 3, "Cannot serialize review results, reason: %v", err)
		common.Stdout("%s\n", blob)
		pretty.Ok()
	},
}

var parseApprovalCmd = &cobra.Command{
	Use:   "approval <issue-body.md>",
	Short: "Check whether the approval checkbox is checked.",
	Long: `Check whether the approval checkbox is checked. Exits with a non-zero
status when it is not, so pipelines can gate on it directly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := readText(args[0], "approval document")
		pretty.Guard(review.ParseApproval(text), 1, "Not approved.")
		common.Log("Approved.")
		pretty.Ok()
	},
}

var parseApprovalRequestCmd = &cobra.Command{
	Use:   "approval-request <issue-body.md>",
	Short: "Check whether approval was requested in a review document.",
	Long: `Check whether the approval request checkbox of a review document is
checked. Exits with a non-zero status when it is not.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := readText(args[0], "review document")
		pretty.Guard(review.ParseApprovalRequest(text), 1, "Approval was not requested.")
		common.Log("Approval requested.")
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.AddCommand(parseReviewCmd)
	parseCmd.AddCommand(parseApprovalCmd)
	parseCmd.AddCommand(parseApprovalRequestCmd)
	parseReviewCmd.Flags().StringVarP(&parseReviewer, "reviewer", "", "", "identity of the reviewer")
	parseReviewCmd.Flags().StringVarP(&parseVersion, "version", "v", "", "release version the review belongs to")
}
