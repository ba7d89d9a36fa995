package inventory

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// LoadCatalog parses the embedded starter catalog.
func LoadCatalog() ([]Product, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) ([]Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Products))
	for i := range f.Products {
		p := &f.Products[i]
		if p.Unit == "" {
			p.Unit = UnitKg
		}
		p.Active = true
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, p.Name, err)
		}
		key := string(p.Category) + "/" + p.Name
		if seen[key] {
			return nil, fmt.Errorf("catalog entry %d: duplicate %q", i, p.Name)
		}
		seen[key] = true
	}
	return f.Products, nil
}
