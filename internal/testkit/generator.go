// Package testkit generates synthetic time-course datasets with planted
// cluster structure, used by tests and the CLI's generate command.
package testkit

import (
	"fmt"
	"math/rand"

	"goclue/domain/annotation"
	"goclue/domain/core"
	"goclue/domain/matrix"
)

// Profile is one planted expression shape and the number of rows drawn from it
type Profile struct {
	Name  string
	Shape []float64
	Rows  int
}

// GeneratorConfig controls the synthetic dataset
type GeneratorConfig struct {
	Profiles       []Profile
	Noise          float64 // stddev of additive gaussian noise per measurement
	NoiseGroups    int     // count of random annotation groups with no structure
	NoiseGroupSize int
	Seed           int64
}

// Dataset couples a generated matrix with its annotation: one exact group per
// profile plus the configured number of random noise groups.
type Dataset struct {
	Matrix     *matrix.TimeCourseMatrix
	Annotation annotation.Set
	TrueGroups []core.GroupID
}

// Generate builds a synthetic dataset. Deterministic given the seed.
func Generate(cfg GeneratorConfig) (*Dataset, error) {
	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("at least one profile is required")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	width := len(cfg.Profiles[0].Shape)
	var entities []core.EntityID
	var data [][]float64
	groups := make(map[string][]string, len(cfg.Profiles)+cfg.NoiseGroups)
	trueGroups := make([]core.GroupID, 0, len(cfg.Profiles))

	for _, profile := range cfg.Profiles {
		if len(profile.Shape) != width {
			return nil, fmt.Errorf("profile %s has %d measurements, want %d", profile.Name, len(profile.Shape), width)
		}
		trueGroups = append(trueGroups, core.GroupID(profile.Name))
		for i := 0; i < profile.Rows; i++ {
			id := fmt.Sprintf("e%04d", len(entities))
			row := make([]float64, width)
			for j, v := range profile.Shape {
				row[j] = v + rng.NormFloat64()*cfg.Noise
			}
			entities = append(entities, core.EntityID(id))
			data = append(data, row)
			groups[profile.Name] = append(groups[profile.Name], id)
		}
	}

	size := cfg.NoiseGroupSize
	if size == 0 {
		size = 5
	}
	for g := 0; g < cfg.NoiseGroups; g++ {
		var members []string
		for i := 0; i < size; i++ {
			members = append(members, string(entities[rng.Intn(len(entities))]))
		}
		groups[fmt.Sprintf("noise%02d", g)] = members
	}

	m, err := matrix.New(entities, data)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Matrix:     m,
		Annotation: annotation.NewSet(groups),
		TrueGroups: trueGroups,
	}, nil
}

// DefaultProfiles returns the three-shape configuration used across tests
// and the generate command
func DefaultProfiles(rowsPerShape int) []Profile {
	return []Profile{
		{Name: "rising", Shape: []float64{0, 1, 2, 3}, Rows: rowsPerShape},
		{Name: "falling", Shape: []float64{3, 2, 1, 0}, Rows: rowsPerShape},
		{Name: "peak", Shape: []float64{0, 3, 0, 0}, Rows: rowsPerShape},
	}
}
