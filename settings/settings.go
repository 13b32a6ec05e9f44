// Package settings holds the process-wide configuration named in spec
// §5 "Shared resources": decimal/grouping characters, custom-currency
// templates, the casefile workspace budget, the temp-file directory,
// and the default weight behavior. Grounded on the teacher's
// db/connection.go Config struct style: a flat struct with documented
// fields, a constructor that fills in defaults, and (new here) a YAML
// loader in the style of aretext-aretext's app/config.go.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mstgnz/pspp/format"
)

// CustomCurrency holds one CCA..CCE template: prefix/suffix strings for
// the negative and non-negative cases, per original_source's
// cust_currency struct.
type CustomCurrency struct {
	Prefix       string `yaml:"prefix"`
	Suffix       string `yaml:"suffix"`
	NegPrefix    string `yaml:"neg_prefix"`
	NegSuffix    string `yaml:"neg_suffix"`
	DecimalChar  byte   `yaml:"-"`
	GroupingChar byte   `yaml:"-"`
}

// Settings is read once at procedure start (§5); mutating it
// mid-procedure is undefined, matching the original's global-settings
// semantics.
type Settings struct {
	DecimalChar  byte `yaml:"decimal_char"`
	GroupingChar byte `yaml:"grouping_char"`

	// CCA through CCE, indexed 0..4.
	CustomCurrency [5]CustomCurrency `yaml:"custom_currency"`

	// WorkspaceBudget is the casefile in-memory byte budget before
	// spilling to disk (§4.7); 0 forces immediate spill.
	WorkspaceBudget int64 `yaml:"workspace_budget"`

	// TempDir is where casefiles and other scratch files are created;
	// defaults to os.TempDir() (akin to TMPDIR, §6).
	TempDir string `yaml:"temp_dir"`

	// DefaultWeightEnabled mirrors the original's "weight by default"
	// toggle; most callers leave it false.
	DefaultWeightEnabled bool `yaml:"default_weight_enabled"`
}

// Default returns the settings original_source ships out of the box:
// '.' decimal, ',' grouping, a 4 MiB casefile workspace, and the
// system temp directory.
func Default() *Settings {
	return &Settings{
		DecimalChar:     '.',
		GroupingChar:    ',',
		WorkspaceBudget: 4 * 1024 * 1024,
		TempDir:         os.TempDir(),
	}
}

// Load parses YAML settings data, starting from Default() so a partial
// file only overrides what it mentions.
func Load(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("settings: yaml.Unmarshal: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads and parses a YAML settings file from path.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Load(data)
}

func (s *Settings) validate() error {
	if s.DecimalChar == s.GroupingChar {
		return fmt.Errorf("settings: decimal_char and grouping_char must differ")
	}
	if s.WorkspaceBudget < 0 {
		return fmt.Errorf("settings: workspace_budget must not be negative")
	}
	return nil
}

// Currency returns the CCA..CCE template for index 0..4, or the zero
// CustomCurrency if idx is out of range.
func (s *Settings) Currency(idx int) CustomCurrency {
	if idx < 0 || idx >= len(s.CustomCurrency) {
		return CustomCurrency{}
	}
	return s.CustomCurrency[idx]
}

// FormatValue renders v per spec using this settings' decimal and
// grouping characters (§4.4) and CCA..CCE templates, so callers never
// hardcode '.'/',' or a custom-currency prefix/suffix.
func (s *Settings) FormatValue(v format.Result, spec format.Spec) []byte {
	var cc [5]format.CCTemplate
	for i, c := range s.CustomCurrency {
		cc[i] = format.CCTemplate{
			Prefix: c.Prefix, Suffix: c.Suffix,
			NegPrefix: c.NegPrefix, NegSuffix: c.NegSuffix,
		}
	}
	return format.DataOut(v, spec, s.DecimalChar, s.GroupingChar, cc[:]...)
}
