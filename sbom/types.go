package sbom

import (
	"fmt"
)

const (
	// BomFormat is the only accepted format tag for parsed documents.
	BomFormat = "CycloneDX"

	UnknownLicense = "Unknown"
)

// Component kinds accepted in CycloneDX documents.
const (
	KindLibrary     = "library"
	KindApplication = "application"
	KindFramework   = "framework"
	KindContainer   = "container"
	KindFile        = "file"
)

// LicenseDetail is the structured form of a license reference.
type LicenseDetail struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// License is either an SPDX expression or a structured license detail.
type License struct {
	License    *LicenseDetail `json:"license,omitempty"`
	Expression string         `json:"expression,omitempty"`
}

type Hash struct {
	Alg     string `json:"alg"`
	Content string `json:"content"`
}

// Component is one tracked piece of software in an SBOM.
type Component struct {
	Type     string    `json:"type"`
	Group    string    `json:"group,omitempty"`
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Licenses []License `json:"licenses,omitempty"`
	Purl     string    `json:"purl,omitempty"`
	Hashes   []Hash    `json:"hashes,omitempty"`
}

// Key is the component identity used across snapshots. Version is
// deliberately excluded, so a version bump mutates the same identity.
func (it Component) Key() string {
	return fmt.Sprintf("%s:%s", it.Group, it.Name)
}

// FullName is the human facing "group:name" form, or plain name for
// ungrouped components.
func (it Component) FullName() string {
	if len(it.Group) > 0 {
		return fmt.Sprintf("%s:%s", it.Group, it.Name)
	}
	return it.Name
}

// LicenseID resolves "the" license identifier of a component: first
// license entry's SPDX expression, else its id, else its name, else
// the Unknown sentinel.
func (it Component) LicenseID() string {
	if len(it.Licenses) == 0 {
		return UnknownLicense
	}
	first := it.Licenses[0]
	if len(first.Expression) > 0 {
		return first.Expression
	}
	if first.License != nil {
		if len(first.License.ID) > 0 {
			return first.License.ID
		}
		if len(first.License.Name) > 0 {
			return first.License.Name
		}
	}
	return UnknownLicense
}

type Tool struct {
	Vendor  string `json:"vendor,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

type Metadata struct {
	Timestamp string     `json:"timestamp,omitempty"`
	Tools     []Tool     `json:"tools,omitempty"`
	Component *Component `json:"component,omitempty"`
}

// SBOM is one CycloneDX document. Component order is not semantically
// significant but is preserved as loaded.
type SBOM struct {
	BomFormat    string      `json:"bomFormat"`
	SpecVersion  string      `json:"specVersion"`
	SerialNumber string      `json:"serialNumber,omitempty"`
	Version      int         `json:"version,omitempty"`
	Metadata     *Metadata   `json:"metadata,omitempty"`
	Components   []Component `json:"components"`
}

// Empty gives a valid zero-component document, used as the diff
// baseline for first releases.
func Empty() *SBOM {
	return &SBOM{
		BomFormat:   BomFormat,
		SpecVersion: "1.4",
		Components:  []Component{},
	}
}
