package classify

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
)

// Policy holds the knobs of the labeling cascade. Regional conventions ("EG" vs "NGL")
// and looser or tighter radii are expressed here rather than in code.
type Policy struct {
	NGLKeywords     []string `yaml:"nglKeywords" json:"nglKeywords"`
	DesignKeywords  []string `yaml:"designKeywords" json:"designKeywords"`
	ProximityRadius float64  `yaml:"proximityRadius" json:"proximityRadius"`

	// PreferDesignOnTie flips the default bias: a text matching both keyword sets is
	// labeled Design instead of NGL.
	PreferDesignOnTie bool `yaml:"preferDesignOnTie" json:"preferDesignOnTie"`

	// ZeroElevationIsUnset treats an elevation of exactly 0.0 as missing when
	// aggregating terrain statistics.
	ZeroElevationIsUnset bool `yaml:"zeroElevationIsUnset" json:"zeroElevationIsUnset"`

	// FallbackAllNGL relabels every point NGL when the cascade found neither NGL nor Design.
	FallbackAllNGL bool `yaml:"fallbackAllNGL" json:"fallbackAllNGL"`
}

// DefaultPolicy returns the stock keyword sets and a 5 unit radius.
func DefaultPolicy() Policy {
	return Policy{
		NGLKeywords:          slices.Clone(constants.DefaultNGLKeywords),
		DesignKeywords:       slices.Clone(constants.DefaultDesignKeywords),
		ProximityRadius:      constants.DefaultProximityRadius,
		ZeroElevationIsUnset: true,
		FallbackAllNGL:       true,
	}
}

// LoadPolicy reads a YAML policy file. Fields missing from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, common.NewAppError("POLICY_ERROR", "decode "+path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks the radius and rejects blank keywords.
func (p Policy) Validate() error {
	if p.ProximityRadius <= 0 || math.IsNaN(p.ProximityRadius) || math.IsInf(p.ProximityRadius, 0) {
		return common.NewAppError("POLICY_ERROR", fmt.Sprintf("proximityRadius must be a positive number, got %v", p.ProximityRadius), common.ErrInvalidInput)
	}
	if len(p.NGLKeywords) == 0 && len(p.DesignKeywords) == 0 {
		return common.NewAppError("POLICY_ERROR", "at least one keyword is required", common.ErrInvalidInput)
	}
	for _, set := range [][]string{p.NGLKeywords, p.DesignKeywords} {
		for _, k := range set {
			if strings.TrimSpace(k) == "" {
				return common.NewAppError("POLICY_ERROR", "keywords must not be blank", common.ErrInvalidInput)
			}
		}
	}
	return nil
}
