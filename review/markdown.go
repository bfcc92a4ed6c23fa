package review

import (
	"fmt"
	"strings"

	"github.com/ossreview/depgate/sbom"
)

// Change markers in the summary table. The parse direction mirrors
// this mapping exactly.
const (
	markerAdded   = "\U0001F195"       // 🆕
	markerUpdated = "\U0001F504"       // 🔄
	markerRemoved = "\U0001F5D1️" // 🗑️
	markerUnknown = "❓"           // ❓
)

const (
	tableHeader  = "| Change | Component | Version | License |"
	tableDivider = "|--------|-----------|---------|---------|"

	versionArrow = "→" // →
)

// EscapeMarkdown keeps cell content from corrupting table structure:
// pipes are escaped, newlines collapse to spaces, carriage returns
// vanish.
func EscapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	return text
}

func ChangeMarker(change sbom.ChangeType) string {
	switch change {
	case sbom.Added:
		return markerAdded
	case sbom.Updated:
		return markerUpdated
	case sbom.Removed:
		return markerRemoved
	default:
		return markerUnknown
	}
}

func markerChange(marker string) sbom.ChangeType {
	switch {
	case strings.Contains(marker, markerAdded):
		return sbom.Added
	case strings.Contains(marker, markerUpdated):
		return sbom.Updated
	case strings.Contains(marker, markerRemoved):
		return sbom.Removed
	default:
		return sbom.Unknown
	}
}

// VersionDisplay shows "old → new" for updates and the plain version
// otherwise.
func VersionDisplay(diff sbom.ComponentDiff) string {
	version := EscapeMarkdown(diff.Component.Version)
	if diff.ChangeType == sbom.Updated && len(diff.PreviousVersion) > 0 {
		return fmt.Sprintf("%s %s %s", EscapeMarkdown(diff.PreviousVersion), versionArrow, version)
	}
	return version
}

// summaryTable renders the scanning table for a diff list.
func summaryTable(diffs []sbom.ComponentDiff) []string {
	lines := []string{tableHeader, tableDivider}
	for _, diff := range diffs {
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s |",
			ChangeMarker(diff.ChangeType),
			EscapeMarkdown(diff.Component.FullName()),
			VersionDisplay(diff),
			EscapeMarkdown(diff.Component.LicenseID())))
	}
	return lines
}

func sectionHeading(diff sbom.ComponentDiff) string {
	return fmt.Sprintf("### %s (%s)", EscapeMarkdown(diff.Component.FullName()), EscapeMarkdown(diff.Component.LicenseID()))
}
