package services

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type draftFile struct {
	Chores []map[string]any `yaml:"chores"`
}

// LoadDrafts reads chore drafts from a YAML or JSON document. The document is
// either a list of drafts or a mapping with a "chores" list.
func LoadDrafts(reader io.Reader) ([]Draft, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading drafts: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing drafts: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var raw []map[string]any
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		if err := node.Content[0].Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding draft list: %w", err)
		}
	case yaml.MappingNode:
		var file draftFile
		if err := node.Content[0].Decode(&file); err != nil {
			return nil, fmt.Errorf("decoding draft file: %w", err)
		}
		raw = file.Chores
	default:
		return nil, fmt.Errorf("parsing drafts: expected a list or a chores mapping")
	}

	drafts := make([]Draft, len(raw))
	for i, values := range raw {
		drafts[i] = Draft(values)
	}
	return drafts, nil
}
