package scenario

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads a Scenario from a YAML file at path. viper reads and decodes
// the file into a generic settings map, which is then re-marshaled and
// unmarshaled through yaml.v3 into the typed Scenario; the two-stage dance
// exercises viper's file-location/format handling alongside yaml.v3's
// struct tags rather than relying on either one alone.
func Load(path string) (*Scenario, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	raw := vp.AllSettings()
	doc, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("scenario: re-marshaling %s: %w", path, err)
	}

	sc := &Scenario{}
	if err := yaml.Unmarshal(doc, sc); err != nil {
		return nil, fmt.Errorf("scenario: decoding %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}
