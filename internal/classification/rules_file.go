package classification

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kosarica/grooming-service/internal/types"
)

type rulesFile struct {
	Rules []types.ClassificationRule `yaml:"rules"`
}

// LoadRulesYAML reads a rules document of the form
//
//	rules:
//	  - keyword: shampoo
//	    match_type: contains
//	    target: store
//
// Positions default to file order.
func LoadRulesYAML(r io.Reader) ([]types.ClassificationRule, error) {
	var doc rulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode rules file: %w", err)
	}

	for i := range doc.Rules {
		if doc.Rules[i].Position == 0 {
			doc.Rules[i].Position = i + 1
		}
	}
	if err := ValidateRules(doc.Rules); err != nil {
		return nil, err
	}
	return doc.Rules, nil
}
