package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuoteFixture is the test data one quote scenario runs with. Loaded from a
// YAML file so suites can be pointed at different books of business without
// a rebuild.
type QuoteFixture struct {
	Account  AccountFixture   `yaml:"account"`
	Location LocationFixture  `yaml:"location"`
	Coverage CoverageFixture  `yaml:"coverage"`
	Vehicles []VehicleFixture `yaml:"vehicles"`
}

// AccountFixture identifies the insured account to quote against
type AccountFixture struct {
	Name          string `yaml:"name"`
	Producer      string `yaml:"producer"`
	EffectiveDate string `yaml:"effective_date"`
}

// LocationFixture is one insured location
type LocationFixture struct {
	Address string `yaml:"address"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Zip     string `yaml:"zip"`
}

// CoverageFixture holds the coverage selections
type CoverageFixture struct {
	LiabilityLimit string `yaml:"liability_limit"`
	Deductible     string `yaml:"deductible"`
	Paperless      bool   `yaml:"paperless"`
}

// VehicleFixture is one vehicle on the schedule
type VehicleFixture struct {
	Year  string `yaml:"year"`
	Make  string `yaml:"make"`
	Model string `yaml:"model"`
	VIN   string `yaml:"vin"`
}

// LoadFixture reads and validates a quote fixture file
func LoadFixture(path string) (*QuoteFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var f QuoteFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validating fixture %s: %w", path, err)
	}
	return &f, nil
}

// DefaultFixture returns the built-in smoke-test data used when no fixture
// file is supplied
func DefaultFixture() *QuoteFixture {
	return &QuoteFixture{
		Account: AccountFixture{
			Name:          "Texas State University",
			Producer:      "House Account",
			EffectiveDate: "01/01/2027",
		},
		Location: LocationFixture{
			Address: "601 University Dr",
			City:    "San Marcos",
			State:   "TX",
			Zip:     "78666",
		},
		Coverage: CoverageFixture{
			LiabilityLimit: "1,000,000",
			Deductible:     "5,000",
			Paperless:      true,
		},
		Vehicles: []VehicleFixture{
			{Year: "2023", Make: "Ford", Model: "Transit", VIN: "1FTBW2CM5PKA44981"},
		},
	}
}

// Validate checks the fields every quote flow depends on
func (f *QuoteFixture) Validate() error {
	var errs []string

	if strings.TrimSpace(f.Account.Name) == "" {
		errs = append(errs, "account.name is required")
	}
	if strings.TrimSpace(f.Coverage.LiabilityLimit) == "" {
		errs = append(errs, "coverage.liability_limit is required")
	}
	for i, v := range f.Vehicles {
		if strings.TrimSpace(v.VIN) == "" && (v.Make == "" || v.Model == "") {
			errs = append(errs, fmt.Sprintf("vehicles[%d] needs a vin or make and model", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("fixture errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
