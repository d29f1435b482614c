package domain

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalog struct {
	PlaceholderSupplement string              `yaml:"placeholder_supplement"`
	DemoMedications       []catalogMedication `yaml:"demo_medications"`
	Rationale             map[Severity]string `yaml:"rationale"`
}

type catalogMedication struct {
	Name string `yaml:"name"`
	Dose string `yaml:"dose"`
}

var builtin = mustParseCatalog(catalogYAML)

func mustParseCatalog(raw []byte) catalog {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		panic(fmt.Sprintf("domain: parse catalog: %v", err))
	}
	if c.PlaceholderSupplement == "" || len(c.DemoMedications) == 0 {
		panic("domain: catalog is missing placeholder or demo medications")
	}
	return c
}

// PlaceholderSupplement labels a run whose label yielded no ingredients.
func PlaceholderSupplement() string { return builtin.PlaceholderSupplement }

// SupplementLabel names the detected supplement: the first ingredient, or the
// placeholder when there is none or it is blank.
func SupplementLabel(ingredients []string) string {
	if len(ingredients) == 0 || strings.TrimSpace(ingredients[0]) == "" {
		return builtin.PlaceholderSupplement
	}
	return ingredients[0]
}

// DemoMedications returns a fresh copy of the fixed demo list. Entries carry no id and no
// owner; they only become rows when seeded for a user.
func DemoMedications() []Medication {
	out := make([]Medication, 0, len(builtin.DemoMedications))
	for _, m := range builtin.DemoMedications {
		out = append(out, Medication{Name: m.Name, Dose: m.Dose})
	}
	return out
}

// Rationale fills the finding template for a severity.
func Rationale(sev Severity, supplement, drug string) string {
	tmpl := builtin.Rationale[sev]
	if tmpl == "" {
		tmpl = "Possible interaction between {supplement} and {drug}."
	}
	return strings.NewReplacer("{supplement}", supplement, "{drug}", drug).Replace(tmpl)
}
