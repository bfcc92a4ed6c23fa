// Package resolver decides what "previous version" means for a
// release comparison. Absence of a usable baseline never aborts the
// pipeline, it degrades to a first-release state with an empty
// baseline SBOM.
package resolver

import (
	"fmt"
	"strings"

	"github.com/ossreview/depgate/common"
	"github.com/ossreview/depgate/sbom"
	"github.com/ossreview/depgate/settings"
)

// Source tells which rule produced a resolution.
const (
	SourceConfigFile   = "config-file"
	SourceFirstVersion = "first-version"
	SourceDTNotFound   = "dt-not-found"
)

// Resolution is the baseline decision. PreviousVersion is empty
// exactly when IsFirstVersion holds.
type Resolution struct {
	PreviousVersion string
	IsFirstVersion  bool
	Source          string
	Reason          string
}

// Fetcher is the one tracking-service operation the resolver needs.
// A nil document with nil error means "not found".
type Fetcher interface {
	FetchSBOM(projectName, version string) (*sbom.SBOM, error)
}

// IsEmpty treats absent and whitespace-only version strings alike.
func IsEmpty(value string) bool {
	return len(strings.TrimSpace(value)) == 0
}

// Resolve applies the baseline policy in strict rule order: failed
// config read, empty recorded version, then a tracking-service probe
// for the recorded version. All service failures map to a first
// version outcome; this function never fails.
//
// currentVersion does not take part in the decision; it is carried
// for the audit trail only.
func Resolve(config settings.ConfigReadResult, fetcher Fetcher, projectName, currentVersion string) Resolution {
	common.Debug("Resolving previous version for %s %s", projectName, currentVersion)

	if !config.Success {
		common.Log("[INFO] No previous version: config file not found or invalid")
		return Resolution{
			IsFirstVersion: true,
			Source:         SourceFirstVersion,
			Reason:         "Config file not found or invalid",
		}
	}

	recorded := ""
	if config.Config != nil {
		recorded = config.Config.PreProjectVersion
	}
	if IsEmpty(recorded) {
		common.Log("[INFO] No previous version: pre-project-version is empty")
		return Resolution{
			IsFirstVersion: true,
			Source:         SourceFirstVersion,
			Reason:         "pre-project-version is empty",
		}
	}

	document, err := fetcher.FetchSBOM(projectName, recorded)
	if err != nil {
		common.Log("[WARN] DT API error while checking %s: %v", recorded, err)
		return Resolution{
			IsFirstVersion: true,
			Source:         SourceDTNotFound,
			Reason:         fmt.Sprintf("DT API error: %v", err),
		}
	}
	if document == nil {
		common.Log("[WARN] SBOM for %s %s not found in DT", projectName, recorded)
		return Resolution{
			IsFirstVersion: true,
			Source:         SourceDTNotFound,
			Reason:         "SBOM not found in DT",
		}
	}

	common.Log("[INFO] Previous version resolved: %s (source: %s)", recorded, SourceConfigFile)
	return Resolution{
		PreviousVersion: recorded,
		IsFirstVersion:  false,
		Source:          SourceConfigFile,
	}
}
