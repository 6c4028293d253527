package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoadFile reads a Model from a .json, .yaml or .yml file.
func LoadFile(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, err
	}
	return Decode(data, filepath.Ext(path))
}

// Decode unmarshals a Model. ext selects the format, json when empty.
func Decode(data []byte, ext string) (Model, error) {
	m := Model{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Model{}, err
		}
	case "", ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return Model{}, err
		}
	default:
		return Model{}, fmt.Errorf("unsupported model file extension %q", ext)
	}
	return m, nil
}
