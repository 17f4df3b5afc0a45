package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is one fixture: a customer query plus the hidden order context.
type Case struct {
	ID        CaseID       `json:"id" yaml:"id"`
	UserInput string       `json:"user_input" yaml:"user_input"`
	Context   OrderContext `json:"context" yaml:"context"`
	// ExpectedActions optionally lists the tool names the agent should invoke,
	// in order. An empty, non-nil list expects a direct reply.
	ExpectedActions []string `json:"expected_actions,omitempty" yaml:"expected_actions,omitempty"`
}

// OrderContext is the system data the agent validates claims against.
type OrderContext struct {
	TimePlaced string `json:"time_placed" yaml:"time_placed"`
	Items      Items  `json:"items" yaml:"items"`
	ETA        string `json:"eta" yaml:"eta"`
	Status     string `json:"status" yaml:"status"`
}

// CaseID accepts numeric or string ids.
type CaseID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *CaseID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = CaseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("harness: case id must be a string or number: %w", err)
	}
	*id = CaseID(n.String())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (id *CaseID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("harness: case id must be a scalar (line %d)", node.Line)
	}
	*id = CaseID(node.Value)
	return nil
}

// Items accepts either a single string or a list of strings.
type Items []string

func (it Items) String() string { return strings.Join(it, ", ") }

// UnmarshalJSON implements json.Unmarshaler.
func (it *Items) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*it = Items{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("harness: items must be a string or a list of strings: %w", err)
	}
	*it = Items(list)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (it *Items) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*it = Items{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*it = Items(list)
		return nil
	default:
		return fmt.Errorf("harness: items must be a string or a list of strings (line %d)", node.Line)
	}
}

// LoadCases reads fixtures from a .json, .yaml or .yml file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path is caller-provided
	if err != nil {
		return nil, fmt.Errorf("harness: load cases: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("harness: unsupported fixture format %q", ext)
	}
}

// ParseJSON decodes a JSON list of cases.
func ParseJSON(data []byte) ([]Case, error) {
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("harness: parse cases: %w", err)
	}
	return numberCases(cases), nil
}

// ParseYAML decodes a YAML list of cases.
func ParseYAML(data []byte) ([]Case, error) {
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("harness: parse cases: %w", err)
	}
	return numberCases(cases), nil
}

// numberCases assigns 1-based ids to cases without one.
func numberCases(cases []Case) []Case {
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = CaseID(strconv.Itoa(i + 1))
		}
	}
	return cases
}
