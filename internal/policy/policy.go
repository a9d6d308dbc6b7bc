package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/gradebook/internal/grading"
	"github.com/abhisek/gradebook/internal/lateness"
	"github.com/abhisek/gradebook/internal/letters"
	"gopkg.in/yaml.v3"
)

// Policy is the course grading configuration: category weights, lateness
// schedule and letter scale.
type Policy struct {
	Weights  grading.Weights
	Lateness lateness.Policy
	Scale    letters.Scale
}

// Default returns the standard course policy.
func Default() Policy {
	return Policy{
		Weights:  grading.DefaultWeights(),
		Lateness: lateness.DefaultPolicy(),
		Scale:    letters.DefaultScale(),
	}
}

// Validate checks every part of the policy.
func (p Policy) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if err := p.Lateness.Validate(); err != nil {
		return fmt.Errorf("lateness: %w", err)
	}
	if err := p.Scale.Validate(); err != nil {
		return fmt.Errorf("letters: %w", err)
	}
	return nil
}

// Calculator builds a grading calculator from the policy.
func (p Policy) Calculator() (*grading.Calculator, error) {
	return grading.NewCalculator(p.Weights, p.Lateness)
}

// file is the on-disk JSON form.
type file struct {
	Weights  *grading.Weights `json:"weights,omitempty"`
	Lateness *latenessFile    `json:"lateness,omitempty"`
	Letters  *lettersFile     `json:"letters,omitempty"`
}

type latenessFile struct {
	Tiers     []tierFile `json:"tiers"`
	Otherwise float64    `json:"otherwise"`
}

type tierFile struct {
	Within     string  `json:"within"`
	Multiplier float64 `json:"multiplier"`
}

type lettersFile struct {
	Thresholds []letters.Threshold `json:"thresholds"`
	Floor      letters.Grade       `json:"floor"`
}

// Encode returns the policy in the same JSON form Parse accepts.
func (p Policy) Encode() ([]byte, error) {
	lf := &latenessFile{Tiers: []tierFile{}, Otherwise: p.Lateness.Otherwise}
	for _, t := range p.Lateness.Tiers {
		lf.Tiers = append(lf.Tiers, tierFile{Within: t.Within.String(), Multiplier: t.Multiplier})
	}
	w := p.Weights
	return json.Marshal(file{
		Weights:  &w,
		Lateness: lf,
		Letters:  &lettersFile{Thresholds: p.Scale.Thresholds, Floor: p.Scale.Floor},
	})
}

// Load reads a JSON or YAML policy file, chosen by extension. Sections the
// file omits keep their defaults.
func Load(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(raw)
	default:
		return Parse(raw)
	}
}

// ParseYAML accepts the same document as Parse written in YAML.
func ParseYAML(raw []byte) (Policy, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Policy{}, fmt.Errorf("invalid policy YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return Policy{}, fmt.Errorf("convert policy YAML: %w", err)
	}
	return Parse(js)
}

// Parse validates raw JSON against the policy schema and decodes it.
func Parse(raw []byte) (Policy, error) {
	if err := validateDocument(raw); err != nil {
		return Policy{}, err
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}

	p := Default()
	if f.Weights != nil {
		p.Weights = *f.Weights
	}
	if f.Lateness != nil {
		lp := lateness.Policy{Otherwise: f.Lateness.Otherwise}
		for i, t := range f.Lateness.Tiers {
			d, err := time.ParseDuration(t.Within)
			if err != nil {
				return Policy{}, fmt.Errorf("lateness tier %d: %w", i, err)
			}
			lp.Tiers = append(lp.Tiers, lateness.Tier{Within: d, Multiplier: t.Multiplier})
		}
		p.Lateness = lp
	}
	if f.Letters != nil {
		p.Scale = letters.Scale{Thresholds: f.Letters.Thresholds, Floor: f.Letters.Floor}
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
