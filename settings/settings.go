package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/ossreview/depgate/common"
)

const (
	defaultTrackerURL    = "http://localhost:8081"
	defaultGuidelineFile = "config/license-guidelines.yml"
)

// Settings is the process-wide service configuration, bound once from
// the environment (optionally overlaid by a depgate.yml next to the
// working directory). Read-only after SummonSettings.
type Settings struct {
	inside *viper.Viper
}

var (
	Global      *Settings
	summonMutex sync.Mutex
)

// SummonSettings binds the environment into the Global settings
// exactly once. Safe to call repeatedly.
func SummonSettings() (*Settings, error) {
	summonMutex.Lock()
	defer summonMutex.Unlock()
	if Global != nil {
		return Global, nil
	}
	inside := viper.New()
	inside.SetConfigName("depgate")
	inside.SetConfigType("yaml")
	inside.AddConfigPath(".")
	inside.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	inside.AutomaticEnv()
	inside.SetDefault("dt.base.url", defaultTrackerURL)
	inside.SetDefault("license.guidelines", defaultGuidelineFile)

	bindings := map[string]string{
		"dt.base.url":        "DT_BASE_URL",
		"dt.api.key":         "DT_API_KEY",
		"github.token":       "GITHUB_TOKEN",
		"github.repository":  "GITHUB_REPOSITORY",
		"github.output":      "GITHUB_OUTPUT",
		"license.guidelines": "LICENSE_GUIDELINES",
	}
	for key, variable := range bindings {
		if err := inside.BindEnv(key, variable); err != nil {
			return nil, err
		}
	}

	err := inside.ReadInConfig()
	if err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			common.Uncritical("settings", err)
		}
	} else {
		common.Debug("Using settings overlay from %q.", inside.ConfigFileUsed())
	}

	Global = &Settings{inside: inside}
	return Global, nil
}

func (it *Settings) TrackerURL() string {
	return it.inside.GetString("dt.base.url")
}

func (it *Settings) TrackerAPIKey() string {
	return it.inside.GetString("dt.api.key")
}

func (it *Settings) GithubToken() string {
	return it.inside.GetString("github.token")
}

func (it *Settings) GithubRepository() string {
	return it.inside.GetString("github.repository")
}

// GithubOutput is the GITHUB_OUTPUT file for machine readable
// key=value pipeline outputs, empty outside hosted workflows.
func (it *Settings) GithubOutput() string {
	return it.inside.GetString("github.output")
}

func (it *Settings) GuidelineFile() string {
	return it.inside.GetString("license.guidelines")
}

// SplitRepository breaks "owner/repo" into its parts.
func (it *Settings) SplitRepository() (string, string, error) {
	slug := it.GithubRepository()
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return "", "", fmt.Errorf("invalid repository format: %q, expected \"owner/repo\"", slug)
	}
	return parts[0], parts[1], nil
}
