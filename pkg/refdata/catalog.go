package refdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the CID/CIAP diagnosis-code catalog loaded at startup and
// seeded into the condition_codes reference table.
type Catalog struct {
	CID  map[string]string `yaml:"cid" json:"cid"`   // code -> description
	CIAP map[string]string `yaml:"ciap" json:"ciap"` // code -> description
}

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.CID) == 0 && len(cat.CIAP) == 0 {
		return Catalog{}, fmt.Errorf("condition catalog empty")
	}
	return cat, nil
}

func (c Catalog) Lookup(codeType, value string) (string, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch codeType {
	case CodeTypeCID:
		desc, ok := c.CID[value]
		return desc, ok
	case CodeTypeCIAP:
		desc, ok := c.CIAP[value]
		return desc, ok
	default:
		return "", false
	}
}

// Codes flattens the catalog into ConditionCode rows for seeding.
func (c Catalog) Codes() []ConditionCode {
	codes := make([]ConditionCode, 0, len(c.CID)+len(c.CIAP))
	for value, desc := range c.CID {
		codes = append(codes, ConditionCode{
			ID:          CodeTypeCID + ":" + value,
			Type:        CodeTypeCID,
			Value:       value,
			Description: desc,
		})
	}
	for value, desc := range c.CIAP {
		codes = append(codes, ConditionCode{
			ID:          CodeTypeCIAP + ":" + value,
			Type:        CodeTypeCIAP,
			Value:       value,
			Description: desc,
		})
	}
	return codes
}

func DefaultCatalog() Catalog {
	return Catalog{
		CID: map[string]string{
			"A90": "Dengue",
			"E11": "Type 2 diabetes mellitus",
			"I10": "Essential (primary) hypertension",
			"J45": "Asthma",
			"Z00": "General examination without complaint",
		},
		CIAP: map[string]string{
			"K86": "Hypertension uncomplicated",
			"T90": "Diabetes non-insulin dependent",
			"R96": "Asthma",
		},
	}
}
