package catchment

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

//go:embed tables.yaml
var embeddedTables []byte

var (
	// ErrUnknownYear is returned when no population is configured for the requested year.
	ErrUnknownYear = errors.New("unknown simulation year")

	// ErrUnknownCatchment is returned when the requested catchment is not configured.
	ErrUnknownCatchment = errors.New("unknown catchment")

	// ErrInvalidTables is returned when the tables document cannot be decoded.
	ErrInvalidTables = errors.New("invalid tables document")
)

// Area is the catchment-specific part of the tables.
type Area struct {
	SharePercent float64          `yaml:"share_percent"`
	Hospitals    []arrivals.Entry `yaml:"hospitals"`
	Residences   []arrivals.Entry `yaml:"residences"`
}

// Set is the full tables document: every year and every catchment.
type Set struct {
	Incidence     arrivals.IncidenceRates        `yaml:"incidence"`
	Populations   map[string]arrivals.Population `yaml:"populations"`
	Ages          []arrivals.Entry               `yaml:"ages"`
	Fragility     []arrivals.Entry               `yaml:"fragility"`
	FractureTypes []arrivals.Entry               `yaml:"fracture_types"`
	Diagnoses     []arrivals.DiagnosisEntry      `yaml:"diagnoses"`
	Areas         map[string]Area                `yaml:"catchments"`
}

// Default returns the embedded tables.
func Default() (Set, error) {
	return decode(embeddedTables)
}

// Load reads a tables document in YAML from r.
func Load(r io.Reader) (Set, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Set{}, errors.Join(arrivals.ErrConfiguration, err)
	}

	return decode(raw)
}

// LoadFile reads a tables document from path; an empty path yields the embedded tables.
func LoadFile(path string) (Set, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return Set{}, errors.Join(arrivals.ErrConfiguration, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

func decode(raw []byte) (Set, error) {
	var set Set

	if err := yaml.Unmarshal(raw, &set); err != nil {
		return Set{}, errors.Join(arrivals.ErrConfiguration, ErrInvalidTables, err)
	}

	if len(set.Populations) == 0 {
		return Set{}, errors.Join(arrivals.ErrConfiguration, fmt.Errorf("%w: no populations", ErrInvalidTables))
	}

	if len(set.Areas) == 0 {
		return Set{}, errors.Join(arrivals.ErrConfiguration, fmt.Errorf("%w: no catchments", ErrInvalidTables))
	}

	return set, nil
}

// Select returns the tables of one run. The result is validated, so a returned error always
// matches arrivals.ErrConfiguration.
func (s Set) Select(year, catchment string) (arrivals.Tables, error) {
	population, ok := s.Populations[year]
	if !ok {
		return arrivals.Tables{}, errors.Join(arrivals.ErrConfiguration, fmt.Errorf("%w: %q", ErrUnknownYear, year))
	}

	area, ok := s.Areas[catchment]
	if !ok {
		return arrivals.Tables{}, errors.Join(
			arrivals.ErrConfiguration,
			fmt.Errorf("%w: %q", ErrUnknownCatchment, catchment),
		)
	}

	tables := arrivals.Tables{
		Population:    population,
		SharePercent:  area.SharePercent,
		Incidence:     s.Incidence,
		Hospitals:     slices.Clone(area.Hospitals),
		Residences:    slices.Clone(area.Residences),
		Ages:          slices.Clone(s.Ages),
		Fragility:     slices.Clone(s.Fragility),
		FractureTypes: slices.Clone(s.FractureTypes),
		Diagnoses:     slices.Clone(s.Diagnoses),
	}

	if err := tables.Validate(); err != nil {
		return arrivals.Tables{}, fmt.Errorf("%s/%s: %w", catchment, year, err)
	}

	return tables, nil
}

// Years returns the configured simulation years in ascending order.
func (s Set) Years() []string {
	return sortedKeys(s.Populations)
}

// Catchments returns the configured catchment names in ascending order.
func (s Set) Catchments() []string {
	return sortedKeys(s.Areas)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
