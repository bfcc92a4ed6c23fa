// Package review renders component diffs and license guidance into
// human reviewable issue documents, and parses filled-in copies of
// those documents back into structured decisions. Render and parse
// are designed to round-trip.
package review

import (
	"bytes"
	"encoding/json"
)

// Fixed labels shared by the render and parse directions. These are
// the anchors the parser locates in free text, so they must not
// drift.
const (
	CheckboxDoneLabel    = "Done"
	CheckboxDoneValue    = "Done"
	CheckboxNotDoneValue = "Not done"

	CommonCheckLicenses = "Confirmed that the license classification of every new component is correct"
	CommonCheckVersions = "Confirmed that no unintended version updates are included"

	ApprovalRequestLabel = "Request approval from an administrator"
	ApprovalLabel        = "I have confirmed the contents above and approve registration to Dependency-Track"
)

// ComponentRef identifies one reviewed component.
type ComponentRef struct {
	Group   string `json:"group,omitempty"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Action is one reviewer response, keyed by the field label it was
// entered under.
type Action struct {
	Label string
	Value string
}

// Actions preserves the order fields appeared in the document.
type Actions []Action

func (it Actions) Get(label string) (string, bool) {
	for _, action := range it {
		if action.Label == label {
			return action.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the label to value mapping as a JSON object in
// document order.
func (it Actions) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString("{")
	for index, action := range it {
		if index > 0 {
			buffer.WriteString(",")
		}
		label, err := json.Marshal(action.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(action.Value)
		if err != nil {
			return nil, err
		}
		buffer.Write(label)
		buffer.WriteString(":")
		buffer.Write(value)
	}
	buffer.WriteString("}")
	return buffer.Bytes(), nil
}

// ComponentReviewResult is the per-component outcome of a review.
type ComponentReviewResult struct {
	Component ComponentRef `json:"component"`
	License   string       `json:"license"`
	Actions   Actions      `json:"actions"`
}

// ReviewResultsDocument is the terminal artifact of a review, parsed
// from the human edited issue text.
type ReviewResultsDocument struct {
	Version    string                  `json:"version"`
	ReviewedAt string                  `json:"reviewedAt"`
	Reviewer   string                  `json:"reviewer"`
	Results    []ComponentReviewResult `json:"results"`
}
