// Package guide maps license identifiers and component context to
// conditional reviewer instructions, driven by a versioned YAML
// configuration.
package guide

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ossreview/depgate/common"
)

type InputType string

const (
	Checkbox InputType = "checkbox"
	Text     InputType = "text"
	Select   InputType = "select"
)

// Guideline is one reviewer instruction, rendered as one interactive
// field in the review document. Condition is retained for
// traceability. Options are present only for select fields.
type Guideline struct {
	Condition string
	Message   string
	InputType InputType
	Label     string
	Options   []string
}

type Rule struct {
	Condition string   `yaml:"condition"`
	Message   string   `yaml:"message"`
	InputType string   `yaml:"input_type"`
	Label     string   `yaml:"label"`
	Options   []string `yaml:"options,omitempty"`
}

type LicenseGuideline struct {
	LicenseID          string `yaml:"license_id"`
	CommonInstructions string `yaml:"common_instructions,omitempty"`
	Rules              []Rule `yaml:"rules"`
}

type Config struct {
	Version    string             `yaml:"version"`
	Guidelines []LicenseGuideline `yaml:"guidelines"`
}

// DefaultGuideline is returned whenever no specific guidance exists,
// so a reviewer is never left without an instruction.
func DefaultGuideline() Guideline {
	return Guideline{
		Condition: "always",
		Message:   "No guideline is defined for this license. Consult your legal or compliance contact.",
		InputType: Text,
		Label:     "Response",
	}
}

// Provider serves guidelines from one configuration load. Load must
// be called before use; a failed load is a remembered, degraded state
// (default guidelines only), never retried within the process.
type Provider struct {
	path   string
	loaded bool
	config *Config
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Load reads the configuration once. All failures degrade to the
// built-in default guideline and are reported, not raised.
func (it *Provider) Load() {
	it.loaded = true
	it.config = nil

	content, err := os.ReadFile(it.path)
	if err != nil {
		common.Log("Warning: license guideline configuration not available: %v", err)
		common.Log("Warning: using default guidelines for all licenses.")
		return
	}

	parsed := new(Config)
	err = yaml.Unmarshal(content, parsed)
	if err == nil {
		err = validate(parsed)
	}
	if err != nil {
		common.Log("Warning: failed to load license guideline configuration: %v", err)
		common.Log("Warning: using default guidelines for all licenses.")
		return
	}

	it.config = parsed
	common.Debug("Loaded license guidelines configuration (version: %s)", parsed.Version)
}

func validate(config *Config) error {
	if len(config.Version) == 0 {
		return fmt.Errorf("missing required field: version")
	}
	if config.Guidelines == nil {
		return fmt.Errorf("missing required field: guidelines")
	}
	for _, entry := range config.Guidelines {
		for _, rule := range entry.Rules {
			if rule.InputType == string(Select) && len(rule.Options) == 0 {
				return fmt.Errorf("license %s: select rule %q must carry options", entry.LicenseID, rule.Label)
			}
		}
	}
	return nil
}

// Loaded tells whether a usable configuration is in place.
func (it *Provider) Loaded() bool {
	return it.loaded && it.config != nil
}

func (it *Provider) find(licenseID string) *LicenseGuideline {
	if it.config == nil {
		return nil
	}
	for index := range it.config.Guidelines {
		if it.config.Guidelines[index].LicenseID == licenseID {
			return &it.config.Guidelines[index]
		}
	}
	return nil
}

// Guidelines gives the applicable instructions for a license in the
// given context. License match is exact and case-sensitive. Unknown
// licenses, and any use before or after a failed Load, yield exactly
// the one default guideline.
func (it *Provider) Guidelines(licenseID string, context Context) []Guideline {
	entry := it.find(licenseID)
	if entry == nil {
		return []Guideline{DefaultGuideline()}
	}
	applicable := []Guideline{}
	for _, rule := range entry.Rules {
		if Evaluate(rule.Condition, context) {
			applicable = append(applicable, Guideline{
				Condition: rule.Condition,
				Message:   rule.Message,
				InputType: InputType(rule.InputType),
				Label:     rule.Label,
				Options:   rule.Options,
			})
		}
	}
	return applicable
}

// CommonInstructions gives the license's shared instruction text, or
// empty when undefined.
func (it *Provider) CommonInstructions(licenseID string) string {
	entry := it.find(licenseID)
	if entry == nil {
		return ""
	}
	return entry.CommonInstructions
}

// LicenseIDs lists every configured license identifier.
func (it *Provider) LicenseIDs() []string {
	if it.config == nil {
		return []string{}
	}
	ids := make([]string, 0, len(it.config.Guidelines))
	for _, entry := range it.config.Guidelines {
		ids = append(ids, entry.LicenseID)
	}
	return ids
}
