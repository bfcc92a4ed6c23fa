package review

import (
	"fmt"
	"strings"

	"github.com/ossreview/depgate/guide"
	"github.com/ossreview/depgate/sbom"
)

const noResponsePlaceholder = "_No response_"

// ReviewBody renders the review issue body: summary table, common
// checks, one section per component with one field per guideline,
// and the terminal approval request checkbox. This is the text the
// parse direction understands, so it doubles as the round-trip
// counterpart of ParseReviewIssue and as the PR comment body.
func ReviewBody(version string, diffs []sbom.ComponentDiff, guidelines map[string][]guide.Guideline, sbomArtifactURL string) string {
	lines := []string{
		"## Differences and guidelines",
		"",
		fmt.Sprintf("Differences from the previous release were detected for **%s**. Review the items below.", version),
		"",
	}
	lines = append(lines, summaryTable(diffs)...)
	lines = append(lines,
		"",
		"### Common checks",
		"",
		"- [ ] "+CommonCheckLicenses,
		"- [ ] "+CommonCheckVersions,
		"")

	for _, diff := range diffs {
		applicable := guidelines[diff.Component.LicenseID()]
		if len(applicable) == 0 {
			continue
		}
		lines = append(lines, sectionHeading(diff), "")
		for _, guideline := range applicable {
			lines = append(lines, fmt.Sprintf("#### %s", guideline.Label), "")
			switch guideline.InputType {
			case guide.Checkbox:
				lines = append(lines, "- [ ] "+CheckboxDoneLabel)
			case guide.Select:
				lines = append(lines, noResponsePlaceholder)
			default:
				lines = append(lines, noResponsePlaceholder)
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("\U0001F4E6 [Download SBOM](%s)", sbomArtifactURL),
		"",
		"### Approval request",
		"",
		"- [ ] "+ApprovalRequestLabel,
		"")
	return strings.Join(lines, "\n")
}

// NoChangesBody is posted when a comparison found nothing to review.
func NoChangesBody() string {
	return "## Differences and guidelines\n\nNo differences from the previous release were detected."
}

// CommentBody renders the lighter PR comment: the summary table plus
// a guideline digest per component, without input fields.
func CommentBody(diffs []sbom.ComponentDiff, guidelines map[string][]guide.Guideline, sbomArtifactURL string) string {
	if len(diffs) == 0 {
		return NoChangesBody()
	}
	lines := []string{
		"## Differences and guidelines",
		"",
		"Differences from the previous release were detected.",
		"",
	}
	lines = append(lines, summaryTable(diffs)...)
	lines = append(lines, "")

	digest := []string{}
	for _, diff := range diffs {
		applicable := guidelines[diff.Component.LicenseID()]
		if len(applicable) == 0 {
			continue
		}
		digest = append(digest, fmt.Sprintf("**%s (%s)**", EscapeMarkdown(diff.Component.LicenseID()), EscapeMarkdown(diff.Component.FullName())))
		for _, guideline := range applicable {
			digest = append(digest, fmt.Sprintf("- %s", guideline.Message))
		}
		digest = append(digest, "")
	}
	if len(digest) > 0 {
		lines = append(lines, "### License guidelines", "")
		lines = append(lines, digest...)
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("\U0001F4E6 [Download SBOM](%s)", sbomArtifactURL))
	return strings.Join(lines, "\n")
}

// ApprovalBody renders the terminal approval issue for parsed review
// results.
func ApprovalBody(version string, results []ComponentReviewResult, sbomArtifactURL, reviewResultsURL string) string {
	lines := []string{
		"## OSS usage approval",
		"",
		fmt.Sprintf("Release version: **%s**", version),
		"",
		"Review of the detected differences is complete. Confirm the contents below and approve.",
		"",
		"### Review results",
		"",
		"| Component | Version | License | Status |",
		"|-----------|---------|---------|--------|",
	}
	for _, result := range results {
		status := "No actions"
		if len(result.Actions) > 0 {
			status = fmt.Sprintf("%d action(s)", len(result.Actions))
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |",
			EscapeMarkdown(fullName(result.Component)),
			EscapeMarkdown(result.Component.Version),
			EscapeMarkdown(result.License),
			status))
	}

	lines = append(lines, "", "### Detailed review results", "")
	for _, result := range results {
		lines = append(lines, fmt.Sprintf("#### %s (%s)", EscapeMarkdown(fullName(result.Component)), EscapeMarkdown(result.License)), "")
		if len(result.Actions) == 0 {
			lines = append(lines, "No actions required", "")
			continue
		}
		for _, action := range result.Actions {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", EscapeMarkdown(action.Label), EscapeMarkdown(action.Value)))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("\U0001F4E6 [Download SBOM](%s)", sbomArtifactURL),
		"",
		fmt.Sprintf("\U0001F4C4 [Download review results JSON](%s)", reviewResultsURL),
		"",
		"### Approval",
		"",
		"- [ ] "+ApprovalLabel,
		"")
	return strings.Join(lines, "\n")
}

func fullName(ref ComponentRef) string {
	if len(ref.Group) > 0 {
		return fmt.Sprintf("%s:%s", ref.Group, ref.Name)
	}
	return ref.Name
}
