package operations

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/review"
	"github.com/ossreview/depgate/sbom"
)

const (
	propertyGroup  = "oss-review"
	propertyReview = "review-result"
)

// ApprovalRequest carries everything RunApproval needs to gate and
// commit one release.
type ApprovalRequest struct {
	ProjectName  string
	Version      string
	SBOMFile     string
	ReviewText   string
	IssueNumber  int
	ApprovalText string
	Reviewer     string
	ResultsFile  string
}

// RunApproval parses the filled review document, requires both the
// approval request and the approval decision, registers the SBOM with
// the tracking service and stamps each reviewed component with its
// review outcome. When IssueNumber is set, the review document is
// fetched from the hosting platform instead of ReviewText.
func RunApproval(request ApprovalRequest, tracker Tracker, host Forge) (*review.ReviewResultsDocument, error) {
	if request.IssueNumber > 0 {
		issue, err := host.FetchIssue(request.IssueNumber)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch review issue #%d: %w", request.IssueNumber, err)
		}
		request.ReviewText = issue.Body
		if len(request.Reviewer) == 0 {
			request.Reviewer = issue.User.Login
		}
	}
	if len(request.ApprovalText) == 0 {
		request.ApprovalText = request.ReviewText
	}
	if !review.ParseApprovalRequest(request.ReviewText) {
		return nil, fmt.Errorf("approval was not requested in the review document")
	}
	if !review.ParseApproval(request.ApprovalText) {
		return nil, fmt.Errorf("approval checkbox is not checked, refusing to register the SBOM")
	}

	document := review.ParseReviewIssue(request.ReviewText, request.Reviewer, request.Version)

	if len(request.ResultsFile) > 0 {
		blob, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(request.ResultsFile, blob, 0o644); err != nil {
			return nil, fmt.Errorf("cannot write review results %q: %w", request.ResultsFile, err)
		}
	}

	data, err := os.ReadFile(request.SBOMFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read SBOM file %q: %w", request.SBOMFile, err)
	}
	current, err := sbom.Parse(data, "current")
	if err != nil {
		return nil, err
	}

	project, err := tracker.UploadSBOM(request.ProjectName, request.Version, current)
	if err != nil {
		return nil, err
	}
	common.Log("SBOM registered as project %s (%s %s).", project.UUID, project.Name, project.Version)

	for _, result := range document.Results {
		if len(result.Actions) == 0 {
			continue
		}
		value, err := json.Marshal(result.Actions)
		if err != nil {
			return nil, err
		}
		err = tracker.SetComponentProperty(project.UUID,
			result.Component.Group, result.Component.Name, result.Component.Version,
			propertyGroup, propertyReview, string(value))
		if err != nil {
			common.Log("Warning: could not stamp review result on %s: %v", result.Component.Name, err)
			continue
		}
		common.Debug("Stamped review result on %s %s.", result.Component.Name, result.Component.Version)
	}
	return document, nil
}
