// Package operations chains the lower level pieces into the two
// release pipeline workflows: requesting a review and approving one.
package operations

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/dtrack"
	"github.com/ossreview/depgate/forge"
	"github.com/ossreview/depgate/guide"
	"github.com/ossreview/depgate/resolver"
	"github.com/ossreview/depgate/review"
	"github.com/ossreview/depgate/sbom"
	"github.com/ossreview/depgate/settings"
)

// Tracker is the slice of the Dependency-Track client the workflows
// need.
type Tracker interface {
	resolver.Fetcher
	UploadSBOM(projectName, version string, document *sbom.SBOM) (*dtrack.Project, error)
	SetComponentProperty(projectUUID, group, name, version, propertyGroup, propertyName, propertyValue string) error
}

// Forge is the slice of the GitHub client the workflows need.
type Forge interface {
	CreateIssue(title, body string, labels, assignees []string) (int, error)
	PostComment(issueNumber int, body string) error
	FetchIssue(issueNumber int) (*forge.Issue, error)
}

// ReviewRequest carries everything RunReview needs to decide, render
// and publish one review round.
type ReviewRequest struct {
	ProjectName     string
	CurrentVersion  string
	RepoRoot        string
	SBOMFile        string
	GuidelineFile   string
	SBOMArtifactURL string
	DiffFile        string
	FormFile        string
	CommentOn       int
	FileIssue       bool
	Assignees       []string
}

// ReviewOutcome is what one review round produced.
type ReviewOutcome struct {
	Resolution  resolver.Resolution
	Diffs       []sbom.ComponentDiff
	DiffResult  *sbom.DiffResult
	Guidelines  map[string][]guide.Guideline
	Body        string
	IssueNumber int
}

// GuidelineMap evaluates the applicable guidelines once per distinct
// license among the diff entries. Conditions are evaluated against an
// empty component context, so only unconditional rules surface at
// review time. The reviewer answers the conditional ones in the
// rendered document.
func GuidelineMap(provider *guide.Provider, diffs []sbom.ComponentDiff) map[string][]guide.Guideline {
	guidelines := make(map[string][]guide.Guideline)
	for _, diff := range diffs {
		licenseID := diff.Component.LicenseID()
		if _, done := guidelines[licenseID]; done {
			continue
		}
		guidelines[licenseID] = provider.Guidelines(licenseID, guide.Context{})
	}
	return guidelines
}

// RunReview resolves the baseline, diffs the SBOMs, attaches license
// guidance and renders the review document. When requested it also
// files the review issue or posts the pull request comment.
func RunReview(request ReviewRequest, tracker Tracker, forge Forge) (*ReviewOutcome, error) {
	data, err := os.ReadFile(request.SBOMFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read SBOM file %q: %w", request.SBOMFile, err)
	}
	current, err := sbom.Parse(data, "current")
	if err != nil {
		return nil, err
	}

	config := settings.ReadReleaseConfig(request.RepoRoot)
	resolution := resolver.Resolve(config, tracker, request.ProjectName, request.CurrentVersion)

	previous := sbom.Empty()
	if !resolution.IsFirstVersion {
		fetched, err := tracker.FetchSBOM(request.ProjectName, resolution.PreviousVersion)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch previous SBOM %s %s: %w", request.ProjectName, resolution.PreviousVersion, err)
		}
		if fetched == nil {
			return nil, fmt.Errorf("previous SBOM disappeared from tracking service: %s %s", request.ProjectName, resolution.PreviousVersion)
		}
		previous = fetched
	}

	diffs := sbom.Compare(current, previous)
	common.Log("Comparison of %s: %d current, %d previous, %d changes.", request.ProjectName, len(current.Components), len(previous.Components), len(diffs))

	provider := guide.NewProvider(request.GuidelineFile)
	provider.Load()
	guidelines := GuidelineMap(provider, diffs)

	outcome := &ReviewOutcome{
		Resolution: resolution,
		Diffs:      diffs,
		DiffResult: sbom.NewDiffResult(request.CurrentVersion, resolution.PreviousVersion, diffs),
		Guidelines: guidelines,
	}

	if len(request.DiffFile) > 0 {
		if err := writeDiffArtifact(request.DiffFile, outcome.DiffResult); err != nil {
			return nil, err
		}
	}

	if len(diffs) == 0 {
		outcome.Body = review.NoChangesBody()
	} else {
		outcome.Body = review.ReviewBody(request.CurrentVersion, diffs, guidelines, request.SBOMArtifactURL)
	}

	if len(request.FormFile) > 0 && len(diffs) > 0 {
		form, err := review.ReviewForm(request.CurrentVersion, diffs, guidelines, request.SBOMArtifactURL)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(request.FormFile, []byte(form), 0o644); err != nil {
			return nil, fmt.Errorf("cannot write issue form %q: %w", request.FormFile, err)
		}
		common.Debug("Wrote issue form to %s.", request.FormFile)
	}

	if request.FileIssue && len(diffs) > 0 {
		number, err := forge.CreateIssue(
			review.ReviewFormTitle(request.CurrentVersion),
			outcome.Body,
			[]string{"oss-review"},
			request.Assignees)
		if err != nil {
			return nil, err
		}
		outcome.IssueNumber = number
		common.Log("Filed review issue #%d.", number)
	}
	if request.CommentOn > 0 {
		comment := review.CommentBody(diffs, guidelines, request.SBOMArtifactURL)
		if err := forge.PostComment(request.CommentOn, comment); err != nil {
			return nil, err
		}
		common.Log("Posted review comment on #%d.", request.CommentOn)
	}
	return outcome, nil
}

func writeDiffArtifact(filename string, result *sbom.DiffResult) error {
	blob, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, blob, 0o644); err != nil {
		return fmt.Errorf("cannot write diff artifact %q: %w", filename, err)
	}
	common.Debug("Wrote diff artifact to %s.", filename)
	return nil
}
