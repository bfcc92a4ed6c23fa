package sbom

import (
	"time"
)

type ChangeType string

const (
	Added   ChangeType = "added"
	Updated ChangeType = "updated"
	Removed ChangeType = "removed"
	Unknown ChangeType = "unknown"
)

// ComponentDiff is one identity-keyed change between two snapshots.
// PreviousVersion is set only for updates.
type ComponentDiff struct {
	ChangeType      ChangeType `json:"changeType"`
	Component       Component  `json:"component"`
	PreviousVersion string     `json:"previousVersion,omitempty"`
}

type ComparisonInfo struct {
	CurrentVersion  string `json:"currentVersion"`
	PreviousVersion string `json:"previousVersion"`
	ComparedAt      string `json:"comparedAt"`
}

// DiffResult is the machine readable artifact written after a
// comparison, consumed by the issue/comment renderers.
type DiffResult struct {
	ComparisonInfo ComparisonInfo  `json:"comparisonInfo"`
	Diffs          []ComponentDiff `json:"diffs"`
}

// Compare diffs current against previous by component identity.
// Added/Updated entries come out in current order, then Removed
// entries in previous order. Equal versions produce no entry. Within
// one snapshot, a later duplicate key silently overrides an earlier
// one. Pure and total over validated input.
func Compare(current, previous *SBOM) []ComponentDiff {
	diffs := make([]ComponentDiff, 0, len(current.Components))

	currentByKey := make(map[string]Component, len(current.Components))
	for _, component := range current.Components {
		currentByKey[component.Key()] = component
	}
	previousByKey := make(map[string]Component, len(previous.Components))
	for _, component := range previous.Components {
		previousByKey[component.Key()] = component
	}

	// Duplicate keys inside one snapshot: last value wins, emitted at
	// the first occurrence position.
	seen := make(map[string]bool, len(current.Components))
	for _, listed := range current.Components {
		key := listed.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		component := currentByKey[key]
		before, ok := previousByKey[key]
		if !ok {
			diffs = append(diffs, ComponentDiff{
				ChangeType: Added,
				Component:  component,
			})
			continue
		}
		if before.Version != component.Version {
			diffs = append(diffs, ComponentDiff{
				ChangeType:      Updated,
				Component:       component,
				PreviousVersion: before.Version,
			})
		}
	}

	for _, listed := range previous.Components {
		key := listed.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		diffs = append(diffs, ComponentDiff{
			ChangeType: Removed,
			Component:  previousByKey[key],
		})
	}

	return diffs
}

// NewDiffResult stamps a comparison for the JSON artifact.
func NewDiffResult(currentVersion, previousVersion string, diffs []ComponentDiff) *DiffResult {
	return &DiffResult{
		ComparisonInfo: ComparisonInfo{
			CurrentVersion:  currentVersion,
			PreviousVersion: previousVersion,
			ComparedAt:      time.Now().UTC().Format(time.RFC3339),
		},
		Diffs: diffs,
	}
}
