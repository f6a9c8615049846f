package catalog

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile registers every descriptor found in a YAML file and returns the
// loaded set. The file holds a list of descriptor objects keyed like the
// Descriptor yaml tags. Decoding is weakly typed, so quoted numbers and
// scalar/list mixups from hand-written YAML are coerced instead of
// rejected.
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	loaded := make([]Descriptor, 0, len(raw))
	for i, entry := range raw {
		var d Descriptor
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &d,
		})
		if err != nil {
			return nil, fmt.Errorf("build descriptor decoder: %w", err)
		}
		if err := decoder.Decode(entry); err != nil {
			return nil, fmt.Errorf("decode descriptor %d in %s: %w", i, path, err)
		}
		if err := Register(d); err != nil {
			return nil, fmt.Errorf("register descriptor %d in %s: %w", i, path, err)
		}
		loaded = append(loaded, d)
	}
	return loaded, nil
}
