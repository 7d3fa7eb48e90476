package gateway

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"commission-reconciliation/internal/domain"
)

// rulebookDocument is the YAML rulebook layout:
//
//	rules:
//	  - keyword: apple
//	    specification: 500g
//	    existing_rate: 0.5
//	    incremental_rate: "1.0"
type rulebookDocument struct {
	Rules []rawRule `yaml:"rules"`
}

func readYAMLRules(path string, unit RateUnit) (*domain.RuleBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gateway: open %s", path)
	}

	var doc rulebookDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "gateway: decode rulebook %s", path)
	}

	source := filepath.Base(path)
	batch := &domain.RuleBatch{Source: source, Rows: len(doc.Rules)}
	for i, raw := range doc.Rules {
		rule, verr := buildRule(source, i+1, raw, unit)
		if verr != nil {
			batch.Rejected = append(batch.Rejected, verr)
			continue
		}
		batch.Rules = append(batch.Rules, rule)
	}
	return batch, nil
}
