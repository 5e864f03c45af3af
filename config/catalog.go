package config

import (
	"fmt"
	"os"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML document read by the catalog importer
type Catalog struct {
	Listings []models.CPTListing `yaml:"listings"`
}

// LoadCatalog reads CPT listings from a YAML file
func LoadCatalog(path string) ([]models.CPTListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document
func ParseCatalog(data []byte) ([]models.CPTListing, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(catalog.Listings) == 0 {
		return nil, fmt.Errorf("catalog contains no listings")
	}
	return catalog.Listings, nil
}
