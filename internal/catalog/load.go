package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Doctors []struct {
		Specialty string `yaml:"specialty"`
		Name      string `yaml:"name"`
	} `yaml:"doctors"`
	Services []struct {
		Key             string `yaml:"key"`
		Name            string `yaml:"name"`
		DurationMinutes int    `yaml:"duration_minutes"`
		Price           string `yaml:"price"`
	} `yaml:"services"`
}

// Load reads a YAML catalog file. ${ENV_VAR} placeholders are expanded.
// A service without a name is displayed under its key.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("catalog: decode yaml: %w", err)
	}

	doctors := make([]Doctor, 0, len(fc.Doctors))
	for _, d := range fc.Doctors {
		doctors = append(doctors, Doctor{Key: d.Specialty, DisplayName: d.Name})
	}

	services := make([]Service, 0, len(fc.Services))
	for _, s := range fc.Services {
		price := decimal.Zero
		if s.Price != "" {
			p, err := decimal.NewFromString(s.Price)
			if err != nil {
				return nil, fmt.Errorf("%w: service %q price %q: %v", ErrInvalidEntry, s.Key, s.Price, err)
			}
			price = p
		}
		name := s.Name
		if name == "" {
			name = s.Key
		}
		services = append(services, Service{
			Key:             s.Key,
			DisplayName:     name,
			DurationMinutes: s.DurationMinutes,
			Price:           price,
		})
	}

	return New(doctors, services)
}
