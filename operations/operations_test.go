package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ossreview/depgate/dtrack"
	"github.com/ossreview/depgate/forge"
	"github.com/ossreview/depgate/hamlet"
	"github.com/ossreview/depgate/resolver"
	"github.com/ossreview/depgate/review"
	"github.com/ossreview/depgate/sbom"
)

type fakeTracker struct {
	previous     *sbom.SBOM
	fetchErr     error
	fetchCalls   int
	uploaded     *sbom.SBOM
	uploadedName string
	uploadedVer  string
	stamped      []string
}

func (it *fakeTracker) FetchSBOM(projectName, version string) (*sbom.SBOM, error) {
	it.fetchCalls++
	return it.previous, it.fetchErr
}

func (it *fakeTracker) UploadSBOM(projectName, version string, document *sbom.SBOM) (*dtrack.Project, error) {
	it.uploaded = document
	it.uploadedName = projectName
	it.uploadedVer = version
	return &dtrack.Project{UUID: "proj-1", Name: projectName, Version: version}, nil
}

func (it *fakeTracker) SetComponentProperty(projectUUID, group, name, version, propertyGroup, propertyName, propertyValue string) error {
	it.stamped = append(it.stamped, fmt.Sprintf("%s|%s|%s|%s=%s", group, name, version, propertyName, propertyValue))
	return nil
}

type fakeForge struct {
	issueTitle  string
	issueBody   string
	issueLabels []string
	comments    map[int]string
	filedIssue  *forge.Issue
	fetched     []int
}

func (it *fakeForge) CreateIssue(title, body string, labels, assignees []string) (int, error) {
	it.issueTitle = title
	it.issueBody = body
	it.issueLabels = labels
	return 42, nil
}

func (it *fakeForge) PostComment(issueNumber int, body string) error {
	if it.comments == nil {
		it.comments = make(map[int]string)
	}
	it.comments[issueNumber] = body
	return nil
}

func (it *fakeForge) FetchIssue(issueNumber int) (*forge.Issue, error) {
	it.fetched = append(it.fetched, issueNumber)
	if it.filedIssue == nil {
		return nil, fmt.Errorf("issue #%d not found", issueNumber)
	}
	return it.filedIssue, nil
}

func snapshot(t *testing.T, directory, filename string, components ...sbom.Component) string {
	t.Helper()
	document := sbom.Empty()
	document.Components = components
	blob, err := json.Marshal(document)
	if err != nil {
		t.Fatal(err)
	}
	fullpath := filepath.Join(directory, filename)
	if err := os.WriteFile(fullpath, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	return fullpath
}

func mitComponent(name, version string) sbom.Component {
	return sbom.Component{
		Type:     sbom.KindLibrary,
		Name:     name,
		Version:  version,
		Licenses: []sbom.License{{License: &sbom.LicenseDetail{ID: "MIT"}}},
	}
}

func guidelineFile(t *testing.T, directory string) string {
	t.Helper()
	content := `version: "1.0"
guidelines:
  - license_id: MIT
    rules:
      - condition: always
        message: Keep the copyright line.
        input_type: checkbox
        label: Copyright attribution
`
	fullpath := filepath.Join(directory, "license-guidelines.yml")
	if err := os.WriteFile(fullpath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return fullpath
}

func TestRunReviewFirstRelease(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}
	forge := &fakeForge{}

	outcome, err := RunReview(ReviewRequest{
		ProjectName:     "widget",
		CurrentVersion:  "v1.0.0",
		RepoRoot:        directory,
		SBOMFile:        snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0")),
		GuidelineFile:   guidelineFile(t, directory),
		SBOMArtifactURL: "https://artifacts/sbom.json",
		DiffFile:        filepath.Join(directory, "diff.json"),
	}, tracker, forge)

	must_be.Nil(err)
	must_be.True(outcome.Resolution.IsFirstVersion)
	must_be.Equal(resolver.SourceFirstVersion, outcome.Resolution.Source)
	must_be.Equal(0, tracker.fetchCalls)
	must_be.Equal(1, len(outcome.Diffs))
	must_be.Equal(sbom.Added, outcome.Diffs[0].ChangeType)
	must_be.Contain("lib-a", outcome.Body)
	must_be.Contain("Copyright attribution", outcome.Body)
	must_be.Equal(0, outcome.IssueNumber)

	blob, err := os.ReadFile(filepath.Join(directory, "diff.json"))
	must_be.Nil(err)
	written := new(sbom.DiffResult)
	must_be.Nil(json.Unmarshal(blob, written))
	must_be.Equal(1, len(written.Diffs))
}

func TestRunReviewAgainstBaseline(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	configBody := "pre-project-version: v1.0.0\n"
	must_be.Nil(os.WriteFile(filepath.Join(directory, "oss-management-system.yml"), []byte(configBody), 0o644))

	previous := sbom.Empty()
	previous.Components = []sbom.Component{mitComponent("lib-a", "1.0.0")}
	tracker := &fakeTracker{previous: previous}
	forge := &fakeForge{}

	outcome, err := RunReview(ReviewRequest{
		ProjectName:     "widget",
		CurrentVersion:  "v1.1.0",
		RepoRoot:        directory,
		SBOMFile:        snapshot(t, directory, "bom.json", mitComponent("lib-a", "2.0.0")),
		GuidelineFile:   guidelineFile(t, directory),
		SBOMArtifactURL: "https://artifacts/sbom.json",
		FileIssue:       true,
		CommentOn:       7,
	}, tracker, forge)

	must_be.Nil(err)
	must_be.Equal("v1.0.0", outcome.Resolution.PreviousVersion)
	must_be.Equal(1, len(outcome.Diffs))
	must_be.Equal(sbom.Updated, outcome.Diffs[0].ChangeType)
	must_be.Equal("1.0.0", outcome.Diffs[0].PreviousVersion)

	must_be.Equal(42, outcome.IssueNumber)
	must_be.Equal(review.ReviewFormTitle("v1.1.0"), forge.issueTitle)
	must_be.Equal([]string{"oss-review"}, forge.issueLabels)
	must_be.Contain("1.0.0 → 2.0.0", forge.issueBody)
	must_be.Contain("License guidelines", forge.comments[7])
}

func TestRunReviewNoChanges(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	configBody := "pre-project-version: v1.0.0\n"
	must_be.Nil(os.WriteFile(filepath.Join(directory, "oss-management-system.yml"), []byte(configBody), 0o644))

	previous := sbom.Empty()
	previous.Components = []sbom.Component{mitComponent("lib-a", "1.0.0")}
	tracker := &fakeTracker{previous: previous}
	forge := &fakeForge{}

	outcome, err := RunReview(ReviewRequest{
		ProjectName:    "widget",
		CurrentVersion: "v1.0.1",
		RepoRoot:       directory,
		SBOMFile:       snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0")),
		GuidelineFile:  guidelineFile(t, directory),
		FileIssue:      true,
		CommentOn:      7,
	}, tracker, forge)

	must_be.Nil(err)
	must_be.Equal(0, len(outcome.Diffs))
	must_be.Equal(review.NoChangesBody(), outcome.Body)
	must_be.Equal(0, outcome.IssueNumber)
	must_be.Equal(review.NoChangesBody(), forge.comments[7])
}

func TestRunReviewPreviousFetchFails(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	directory := t.TempDir()
	configBody := "pre-project-version: v1.0.0\n"
	must_be.Nil(os.WriteFile(filepath.Join(directory, "oss-management-system.yml"), []byte(configBody), 0o644))

	previous := sbom.Empty()
	previous.Components = []sbom.Component{mitComponent("lib-a", "1.0.0")}
	tracker := &fakeTracker{previous: previous, fetchErr: fmt.Errorf("connection refused")}
	forge := &fakeForge{}

	outcome, err := RunReview(ReviewRequest{
		ProjectName:    "widget",
		CurrentVersion: "v1.1.0",
		RepoRoot:       directory,
		SBOMFile:       snapshot(t, directory, "bom.json", mitComponent("lib-a", "2.0.0")),
		GuidelineFile:  guidelineFile(t, directory),
	}, tracker, forge)

	must_be.True(outcome == nil)
	wont_be.Nil(err)
}

const approvedReview = `## OSS usage review

| Change | Component | Version | License |
|--------|-----------|---------|---------|
| 🆕 Added | lib-a | 1.0.0 | MIT |
| 🆕 Added | lib-b | 2.0.0 | MIT |

### lib-a (MIT)

#### Copyright attribution

- [x] Done

### Approval request

- [x] Request approval from an administrator
`

const approvalDecision = "- [x] I have confirmed the contents above and approve registration to Dependency-Track"

func TestRunApproval(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}

	document, err := RunApproval(ApprovalRequest{
		ProjectName:  "widget",
		Version:      "v1.0.0",
		SBOMFile:     snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0"), mitComponent("lib-b", "2.0.0")),
		ReviewText:   approvedReview,
		ApprovalText: approvalDecision,
		Reviewer:     "octocat",
		ResultsFile:  filepath.Join(directory, "results.json"),
	}, tracker, nil)

	must_be.Nil(err)
	must_be.Equal("widget", tracker.uploadedName)
	must_be.Equal("v1.0.0", tracker.uploadedVer)
	must_be.Equal(2, len(tracker.uploaded.Components))
	must_be.Equal(2, len(document.Results))

	must_be.Equal(1, len(tracker.stamped))
	must_be.Contain("lib-a", tracker.stamped[0])
	must_be.Contain(`{"Copyright attribution":"Done"}`, tracker.stamped[0])

	blob, err := os.ReadFile(filepath.Join(directory, "results.json"))
	must_be.Nil(err)
	must_be.Contain(`"reviewer": "octocat"`, string(blob))
}

func TestRunApprovalRequiresApprovalRequest(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}
	unrequested := "| Change | Component | Version | License |\n|---|---|---|---|\n| 🆕 Added | lib-a | 1.0.0 | MIT |\n"

	document, err := RunApproval(ApprovalRequest{
		ProjectName:  "widget",
		Version:      "v1.0.0",
		SBOMFile:     snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0")),
		ReviewText:   unrequested,
		ApprovalText: approvalDecision,
	}, tracker, nil)

	must_be.True(document == nil)
	wont_be.Nil(err)
	must_be.True(tracker.uploaded == nil)
}

func TestRunApprovalRequiresDecision(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}

	document, err := RunApproval(ApprovalRequest{
		ProjectName:  "widget",
		Version:      "v1.0.0",
		SBOMFile:     snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0")),
		ReviewText:   approvedReview,
		ApprovalText: "- [ ] I have confirmed the contents above and approve registration to Dependency-Track",
	}, tracker, nil)

	must_be.True(document == nil)
	wont_be.Nil(err)
	must_be.Contain("approval checkbox", err.Error())
	must_be.True(tracker.uploaded == nil)
}

func TestRunApprovalFetchesReviewFromIssue(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}
	host := &fakeForge{filedIssue: &forge.Issue{
		Number: 42,
		Body:   approvedReview,
		User:   forge.User{Login: "octocat"},
	}}

	document, err := RunApproval(ApprovalRequest{
		ProjectName:  "widget",
		Version:      "v1.0.0",
		SBOMFile:     snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0"), mitComponent("lib-b", "2.0.0")),
		IssueNumber:  42,
		ApprovalText: approvalDecision,
	}, tracker, host)

	must_be.Nil(err)
	must_be.Equal([]int{42}, host.fetched)
	must_be.Equal("widget", tracker.uploadedName)
	must_be.Equal("octocat", document.Reviewer)
	must_be.Equal(2, len(document.Results))
}

func TestRunApprovalIssueFetchFailure(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	directory := t.TempDir()
	tracker := &fakeTracker{}
	host := &fakeForge{}

	document, err := RunApproval(ApprovalRequest{
		ProjectName:  "widget",
		Version:      "v1.0.0",
		SBOMFile:     snapshot(t, directory, "bom.json", mitComponent("lib-a", "1.0.0")),
		IssueNumber:  7,
		ApprovalText: approvalDecision,
	}, tracker, host)

	must_be.True(document == nil)
	wont_be.Nil(err)
	must_be.Contain("review issue #7", err.Error())
	must_be.True(tracker.uploaded == nil)
}
