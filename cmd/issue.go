package cmd

import (
	"encoding/json"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/forge"
	"github.com/ossreview/depgate/operations"
	"github.com/ossreview/depgate/pretty"
	"github.com/ossreview/depgate/review"
	"github.com/ossreview/depgate/settings"

	"github.com/spf13/cobra"
)

var (
	issueProject     string
	issueVersion     string
	issueRepoRoot    string
	issueSBOMFile    string
	issueArtifactURL string
	issueDiffFile    string
	issueFormFile    string
	issueCommentOn   int
	issueCreate      bool
	issueAssignees   []string

	approvalResultsURL string
)

func forgeClient() *forge.Client {
	config, err := settings.SummonSettings()
	pretty.Guard(err == nil, 1, "Cannot load settings, reason: %v", err)
	owner, repo, err := config.SplitRepository()
	pretty.Guard(err == nil, 1, "%v", err)
	client, err := forge.NewClient(forge.DefaultEndpoint, config.GithubToken(), owner, repo)
	pretty.Guard(err == nil, 1, "Cannot build GitHub client, reason: %v", err)
	return client
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Group of commands for filing review and approval issues.",
	Long:  "Group of commands for filing review and approval issues.",
}

var issueReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the review round: resolve, diff, render and publish.",
	Long: `Run the review round: resolve the baseline version, diff the release
SBOM against it, attach license guidelines and publish the review
document as a GitHub issue and/or pull request comment.`,
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Review round lasted").Report()
		}
		config, err := settings.SummonSettings()
		pretty.Guard(err == nil, 1, "Cannot load settings, reason: %v", err)
		guidelineFile := config.GuidelineFile()

		outcome, err := operations.RunReview(operations.ReviewRequest{
			ProjectName:     issueProject,
			CurrentVersion:  issueVersion,
			RepoRoot:        issueRepoRoot,
			SBOMFile:        issueSBOMFile,
			GuidelineFile:   guidelineFile,
			SBOMArtifactURL: issueArtifactURL,
			DiffFile:        issueDiffFile,
			FormFile:        issueFormFile,
			CommentOn:       issueCommentOn,
			FileIssue:       issueCreate,
			Assignees:       issueAssignees,
		}, trackerClient(), forgeClient())
		pretty.Guard(err == nil, 2, "Review round failed, reason: %v", err)

		if outcome.IssueNumber > 0 {
			common.Stdout("issue_number=%d\n", outcome.IssueNumber)
		}
		common.Stdout("change_count=%d\n", len(outcome.Diffs))
		pretty.Ok()
	},
}

var issueApprovalCmd = &cobra.Command{
	Use:   "approval <results.json>",
	Short: "File the terminal approval issue from parsed review results.",
	Long:  "File the terminal approval issue from parsed review results.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		blob, err := os.ReadFile(args[0])
		pretty.Guard(err == nil, 2, "Cannot read review results %q, reason: %v", args[0], err)
		document := new(review.ReviewResultsDocument)
		err = json.Unmarshal(blob, document)
		pretty.Guard(err == nil, 2, "Cannot parse review results %q, reason: %v", args[0], err)

		body := review.ApprovalBody(document.Version, document.Results, issueArtifactURL, approvalResultsURL)
		number, err := forgeClient().CreateIssue(review.ApprovalTitle(document.Version), body, []string{"oss-approval"}, issueAssignees)
		pretty.Guard(err == nil, 2, "Cannot file approval issue, reason: %v", err)
		common.Stdout("issue_number=%d\n", number)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueReviewCmd)
	issueCmd.AddCommand(issueApprovalCmd)

	issueReviewCmd.Flags().StringVarP(&issueProject, "project", "p", "", "project name in Dependency-Track")
	issueReviewCmd.Flags().StringVarP(&issueVersion, "version", "v", "", "release version under review")
	issueReviewCmd.Flags().StringVarP(&issueRepoRoot, "repo", "r", ".", "repository root holding the release configuration")
	issueReviewCmd.Flags().StringVarP(&issueSBOMFile, "sbom", "s", "", "CycloneDX SBOM file of the release under review")
	issueReviewCmd.Flags().StringVarP(&issueArtifactURL, "artifact-url", "", "", "download URL of the SBOM artifact, linked from the documents")
	issueReviewCmd.Flags().StringVarP(&issueDiffFile, "diff-file", "", "", "write the diff result JSON to this file")
	issueReviewCmd.Flags().StringVarP(&issueFormFile, "form-file", "", "", "write the review document as GitHub issue form YAML to this file")
	issueReviewCmd.Flags().IntVarP(&issueCommentOn, "comment-on", "", 0, "pull request number to post the review comment on")
	issueReviewCmd.Flags().BoolVarP(&issueCreate, "create-issue", "", false, "file the review document as a GitHub issue")
	issueReviewCmd.Flags().StringSliceVarP(&issueAssignees, "assignee", "a", nil, "assignees of the filed issue")
	issueReviewCmd.MarkFlagRequired("project")
	issueReviewCmd.MarkFlagRequired("version")
	issueReviewCmd.MarkFlagRequired("sbom")

	issueApprovalCmd.Flags().StringVarP(&issueArtifactURL, "artifact-url", "", "", "download URL of the SBOM artifact, linked from the documents")
	issueApprovalCmd.Flags().StringVarP(&approvalResultsURL, "results-url", "", "", "download URL of the review results artifact")
	issueApprovalCmd.Flags().StringSliceVarP(&issueAssignees, "assignee", "a", nil, "assignees of the filed issue")
}
