package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/ossreview/depgate/common"
)

// ReleaseConfigName is the per-repository compliance configuration
// committed next to the released code.
const ReleaseConfigName = "oss-management-system.yml"

// ReleaseConfig holds the recorded baseline version for the next
// release comparison. The field may be absent or empty, both of which
// are valid first-release states.
type ReleaseConfig struct {
	PreProjectVersion string `yaml:"pre-project-version"`
}

// ConfigReadResult reports a release config read without failing the
// pipeline: an absent or malformed file is a state, not an error.
type ConfigReadResult struct {
	Success  bool
	Config   *ReleaseConfig
	Error    string
	FilePath string
}

// ReadReleaseConfig loads oss-management-system.yml from the given
// repository root.
func ReadReleaseConfig(repoRoot string) ConfigReadResult {
	configPath := filepath.Join(repoRoot, ReleaseConfigName)

	content, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			common.Log("Warning: config file not found: %s", configPath)
			return ConfigReadResult{
				Success:  false,
				Error:    "File not found",
				FilePath: configPath,
			}
		}
		common.Error("release config", err)
		return ConfigReadResult{
			Success:  false,
			Error:    fmt.Sprintf("Read error: %v", err),
			FilePath: configPath,
		}
	}

	config := new(ReleaseConfig)
	err = yaml.Unmarshal(content, config)
	if err != nil {
		common.Log("Error: failed to parse config file: %s", configPath)
		common.Log("Error: expected format: pre-project-version: v1.0.0")
		return ConfigReadResult{
			Success:  false,
			Error:    fmt.Sprintf("Invalid YAML: %v", err),
			FilePath: configPath,
		}
	}

	common.Debug("Config file found: %s", configPath)
	common.Debug("pre-project-version: %s", orUnset(config.PreProjectVersion))
	return ConfigReadResult{
		Success:  true,
		Config:   config,
		FilePath: configPath,
	}
}

func orUnset(value string) string {
	if len(value) == 0 {
		return "(not set)"
	}
	return value
}
