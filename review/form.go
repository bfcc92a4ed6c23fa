package review

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v2"

	"github.com/ossreview/depgate/guide"
	"github.com/ossreview/depgate/sbom"
)

// GitHub issue form document model, marshalled with yaml.v2 so field
// order is stable.

type formCheckOption struct {
	Label    string `yaml:"label"`
	Required bool   `yaml:"required"`
}

type formValidations struct {
	Required bool `yaml:"required"`
}

type formAttributes struct {
	Value       string      `yaml:"value,omitempty"`
	Label       string      `yaml:"label,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Placeholder string      `yaml:"placeholder,omitempty"`
	Options     interface{} `yaml:"options,omitempty"`
}

type formElement struct {
	Type        string           `yaml:"type"`
	ID          string           `yaml:"id,omitempty"`
	Attributes  formAttributes   `yaml:"attributes"`
	Validations *formValidations `yaml:"validations,omitempty"`
}

type issueForm struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Title       string        `yaml:"title"`
	Labels      []string      `yaml:"labels"`
	Body        []formElement `yaml:"body"`
}

var fieldIDCleaner = regexp.MustCompile(`[^a-zA-Z0-9]`)

func markdownElement(value string) formElement {
	return formElement{
		Type:       "markdown",
		Attributes: formAttributes{Value: value},
	}
}

// ReviewFormTitle is the issue title used when the form is filed.
func ReviewFormTitle(version string) string {
	return fmt.Sprintf("[Review] OSS usage review %s", version)
}

// ApprovalTitle is the terminal approval issue title.
func ApprovalTitle(version string) string {
	return fmt.Sprintf("[Approval] OSS usage approval %s", version)
}

// ReviewForm renders the structured review request as a GitHub issue
// form: summary table, two always-present common checks, one input
// field per applicable guideline per component, and the terminal
// approval request checkbox.
func ReviewForm(version string, diffs []sbom.ComponentDiff, guidelines map[string][]guide.Guideline, sbomArtifactURL string) (string, error) {
	form := issueForm{
		Name:        "OSS usage review",
		Description: "Pre-release OSS usage review",
		Title:       ReviewFormTitle(version),
		Labels:      []string{"oss-review"},
	}

	form.Body = append(form.Body, markdownElement(
		"## Differences and guidelines\n\nDifferences from the previous release were detected. Review the items below."))

	table := ""
	for _, line := range summaryTable(diffs) {
		table += line + "\n"
	}
	form.Body = append(form.Body, markdownElement("\n"+table))

	form.Body = append(form.Body, formElement{
		Type: "checkboxes",
		ID:   "common-checks",
		Attributes: formAttributes{
			Label: "Common checks",
			Options: []formCheckOption{
				{Label: CommonCheckLicenses, Required: true},
				{Label: CommonCheckVersions, Required: true},
			},
		},
	})

	for _, diff := range diffs {
		applicable := guidelines[diff.Component.LicenseID()]
		if len(applicable) == 0 {
			continue
		}
		form.Body = append(form.Body, markdownElement("\n"+sectionHeading(diff)))
		for index, guideline := range applicable {
			// a select without options cannot be answered, leave it out
			if guideline.InputType == guide.Select && len(guideline.Options) == 0 {
				continue
			}
			form.Body = append(form.Body, fieldElement(diff, guideline, index))
		}
	}

	form.Body = append(form.Body, markdownElement(
		fmt.Sprintf("\n---\n\n\U0001F4E6 [Download SBOM](%s)", sbomArtifactURL)))

	form.Body = append(form.Body, formElement{
		Type: "checkboxes",
		ID:   "approval-request",
		Attributes: formAttributes{
			Label: "Approval request",
			Options: []formCheckOption{
				{Label: ApprovalRequestLabel, Required: false},
			},
		},
	})

	rendered, err := yaml.Marshal(form)
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

func fieldElement(diff sbom.ComponentDiff, guideline guide.Guideline, index int) formElement {
	fieldID := fmt.Sprintf("%s-%d", fieldIDCleaner.ReplaceAllString(diff.Component.Name, "-"), index)
	switch guideline.InputType {
	case guide.Checkbox:
		return formElement{
			Type: "checkboxes",
			ID:   fieldID,
			Attributes: formAttributes{
				Label:       guideline.Label,
				Description: guideline.Message,
				Options: []formCheckOption{
					{Label: CheckboxDoneLabel, Required: false},
				},
			},
		}
	case guide.Select:
		return formElement{
			Type: "dropdown",
			ID:   fieldID,
			Attributes: formAttributes{
				Label:       guideline.Label,
				Description: guideline.Message,
				Options:     guideline.Options,
			},
			Validations: &formValidations{Required: true},
		}
	default:
		return formElement{
			Type: "input",
			ID:   fieldID,
			Attributes: formAttributes{
				Label:       guideline.Label,
				Description: guideline.Message,
				Placeholder: "Describe the response taken",
			},
			Validations: &formValidations{Required: true},
		}
	}
}
