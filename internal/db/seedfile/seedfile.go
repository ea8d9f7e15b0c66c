// Package seedfile reads the records the storage starts with from a JSON or
// YAML file. The file is only read; nothing is written back.
package seedfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/patric-chuzhbe/apidemo/internal/models"
)

var (
	ErrBadID       = errors.New("record id must be positive")
	ErrDuplicateID = errors.New("duplicate record id")
)

// Seed is the content of a seed file.
type Seed struct {
	Users    []models.User    `json:"users"`
	Products []models.Product `json:"products"`
}

// fromYAML converts YAML to JSON so both formats share the json tags of
// the models.
func fromYAML(data []byte) ([]byte, error) {
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, err
	}
	if document == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(document)
}

func parse(fileName string, data []byte) (Seed, error) {
	var seed Seed

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		converted, err := fromYAML(data)
		if err != nil {
			return seed, fmt.Errorf("parse %s: %w", fileName, err)
		}
		data = converted
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&seed); err != nil {
		return seed, fmt.Errorf("parse %s: %w", fileName, err)
	}

	return seed, nil
}

func checkIDs[T any](kind string, records []T, idOf func(T) int) error {
	seen := make(map[int]struct{}, len(records))
	for _, record := range records {
		id := idOf(record)
		if id <= 0 {
			return fmt.Errorf("%s %d: %w", kind, id, ErrBadID)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%s %d: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Load reads and checks fileName. Files ending in .yaml or .yml are read
// as YAML, anything else as JSON.
func Load(fileName string) (Seed, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Seed{}, err
	}

	seed, err := parse(fileName, data)
	if err != nil {
		return Seed{}, err
	}

	if err := checkIDs("user", seed.Users, func(usr models.User) int { return usr.ID }); err != nil {
		return Seed{}, err
	}
	if err := checkIDs("product", seed.Products, func(product models.Product) int { return product.ID }); err != nil {
		return Seed{}, err
	}

	return seed, nil
}
