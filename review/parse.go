package review

import (
	"regexp"
	"strings"
	"time"

	"github.com/ossreview/depgate/sbom"
)

type parsedComponent struct {
	group   string
	name    string
	version string
	license string
	change  sbom.ChangeType
}

// checkboxState finds "- [x] label" vs "- [ ] label" anywhere in the
// text. The label is taken literally. A missing line is false, not an
// error.
func checkboxState(text, label string) bool {
	pattern := regexp.MustCompile(`(?m)^\s*-\s*\[([ xX])\]\s*` + regexp.QuoteMeta(label) + `\s*$`)
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return false
	}
	return strings.ToLower(match[1]) == "x"
}

// ParseApproval reads the terminal approval gate of an approval
// issue.
func ParseApproval(text string) bool {
	return checkboxState(text, ApprovalLabel)
}

// ParseApprovalRequest reads the approval request flag of a review
// issue.
func ParseApprovalRequest(text string) bool {
	return checkboxState(text, ApprovalRequestLabel)
}

// splitRow splits one table row on unescaped pipes, so escaped "\|"
// stays inside its cell.
func splitRow(line string) []string {
	var fields []string
	var current strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			if r != '|' {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	fields = append(fields, current.String())

	cleaned := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if len(field) > 0 {
			cleaned = append(cleaned, field)
		}
	}
	return cleaned
}

func parseRow(line string) *parsedComponent {
	fields := splitRow(line)
	if len(fields) < 4 {
		return nil
	}
	marker, fullName, versionText, license := fields[0], fields[1], fields[2], fields[3]

	group, name := "", fullName
	if index := strings.Index(fullName, ":"); index >= 0 {
		group = fullName[:index]
		name = fullName[index+1:]
	}

	version := versionText
	if index := strings.Index(versionText, versionArrow); index >= 0 {
		version = strings.TrimSpace(versionText[index+len(versionArrow):])
	}

	return &parsedComponent{
		group:   group,
		name:    name,
		version: version,
		license: license,
		change:  markerChange(marker),
	}
}

// componentsFromTable locates the summary table by its fixed header
// cells and collects rows until a blank line or a new section. An
// absent table yields zero components, silently.
func componentsFromTable(text string) []parsedComponent {
	var components []parsedComponent

	inTable := false
	for _, line := range strings.Split(text, "\n") {
		if !inTable {
			if strings.Contains(line, "|") &&
				strings.Contains(line, "Change") &&
				strings.Contains(line, "Component") &&
				strings.Contains(line, "Version") &&
				strings.Contains(line, "License") {
				inTable = true
			}
			continue
		}
		if strings.Contains(line, "---") {
			continue
		}
		if len(strings.TrimSpace(line)) == 0 || strings.HasPrefix(line, "#") {
			break
		}
		if strings.Contains(line, "|") {
			if component := parseRow(line); component != nil {
				components = append(components, *component)
			}
		}
	}
	return components
}

// componentSection slices the detail section belonging to one table
// row, up to the next heading or horizontal rule. Headings were
// rendered through EscapeMarkdown, so the lookup escapes the
// recovered name and license the same way before matching.
func componentSection(text string, component parsedComponent) (string, bool) {
	fullName := component.name
	if len(component.group) > 0 {
		fullName = component.group + ":" + component.name
	}
	heading := regexp.MustCompile(`###[ \t]*` + regexp.QuoteMeta(EscapeMarkdown(fullName)) + `[ \t]*\(` + regexp.QuoteMeta(EscapeMarkdown(component.license)) + `\)`)
	location := heading.FindStringIndex(text)
	if location == nil {
		return "", false
	}
	rest := text[location[1]:]
	end := len(rest)
	if stop := sectionStop.FindStringIndex(rest); stop != nil {
		end = stop[0]
	}
	return rest[:end], true
}

// Field headings (####) belong to the section, the next section
// heading or horizontal rule ends it.
var sectionStop = regexp.MustCompile(`(?m)^(### |## |---)`)

var fieldHeading = regexp.MustCompile(`(?m)^####[ \t]*(.+)$`)

// sectionActions collects the labeled sub-blocks of one component
// section: checkbox bodies record done/not-done, non-placeholder text
// is kept verbatim.
func sectionActions(section string) Actions {
	actions := Actions{}
	matches := fieldHeading.FindAllStringSubmatchIndex(section, -1)
	for index, match := range matches {
		label := strings.TrimSpace(section[match[2]:match[3]])
		bodyEnd := len(section)
		if index+1 < len(matches) {
			bodyEnd = matches[index+1][0]
		}
		content := strings.TrimSpace(section[match[1]:bodyEnd])

		if strings.Contains(content, "- [") {
			value := CheckboxNotDoneValue
			if checkboxState(content, CheckboxDoneLabel) {
				value = CheckboxDoneValue
			}
			actions = append(actions, Action{Label: label, Value: value})
			continue
		}
		if len(content) > 0 && content != "No response" && content != noResponsePlaceholder {
			actions = append(actions, Action{Label: label, Value: content})
		}
	}
	return actions
}

// ParseReviewIssue recovers structured review results from a rendered
// and possibly human edited review document. Parse failures are local
// and silent: unparseable rows are skipped, a component without a
// detail section is kept with empty actions.
func ParseReviewIssue(text, reviewer, version string) *ReviewResultsDocument {
	components := componentsFromTable(text)

	results := make([]ComponentReviewResult, 0, len(components))
	for _, component := range components {
		actions := Actions{}
		if section, found := componentSection(text, component); found {
			actions = sectionActions(section)
		}
		results = append(results, ComponentReviewResult{
			Component: ComponentRef{
				Group:   component.group,
				Name:    component.name,
				Version: component.version,
			},
			License: component.license,
			Actions: actions,
		})
	}

	return &ReviewResultsDocument{
		Version:    version,
		ReviewedAt: time.Now().UTC().Format(time.RFC3339),
		Reviewer:   reviewer,
		Results:    results,
	}
}
