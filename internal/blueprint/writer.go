package blueprint

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteProduction writes a production to a YAML blueprint file
func WriteProduction(p *Production, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadProduction reads a production from a YAML blueprint file
func ReadProduction(path string) (*Production, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Production
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}
