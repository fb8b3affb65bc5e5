// Package evals checks how well a model picks Confluence and HelloMCP tools
// from natural language requests. Suites are JSON files; a ToolSelector
// (a model, a mock or the keyword baseline) is scored against them.
package evals

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Suite file names inside an eval directory
const (
	ToolSelectionFile = "tool_selection.json"
	ConfusionPairFile = "confusion_pairs.json"
	ArgumentFile      = "argument_correctness.json"
)

//go:embed *.json
var builtin embed.FS

// ToolSelectionTest is one request and the tool that should answer it
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args"`
	NotTools     []string       `json:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest is a request that sits between two similar tools
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair groups tools that are easy to mix up, such as search_cql
// and get_children
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ArgumentTest checks the arguments extracted for a tool call
type ArgumentTest struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Input         string         `json:"input"`
	RequiredArgs  []string       `json:"required_args"`
	ExpectedArgs  map[string]any `json:"expected_args"`
	ForbiddenArgs []string       `json:"forbidden_args"`
	ArgNotes      string         `json:"arg_notes,omitempty"`
}

// ValidationRules documents how arguments are expected to be written
type ValidationRules struct {
	PageIDFormat    string `json:"page_id_format"`
	CQLFormat       string `json:"cql_format"`
	LimitHandling   string `json:"limit_handling"`
	BodyFormat      string `json:"body_format"`
	IntegerHandling string `json:"integer_handling"`
}

// ArgumentSuite contains all argument correctness tests
type ArgumentSuite struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Description     string          `json:"description"`
	Tests           []ArgumentTest  `json:"tests"`
	ValidationRules ValidationRules `json:"validation_rules"`
}

// Suites bundles the three suites of an eval directory
type Suites struct {
	ToolSelection  *ToolSelectionSuite
	ConfusionPairs *ConfusionPairSuite
	Arguments      *ArgumentSuite
}

func loadJSON[T any](fsys fs.FS, name string) (*T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return &v, nil
}

// LoadToolSelectionSuite loads tool selection tests from a JSON file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	return loadJSON[ToolSelectionSuite](os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadConfusionPairSuite loads confusion pair tests from a JSON file
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	return loadJSON[ConfusionPairSuite](os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadArgumentSuite loads argument correctness tests from a JSON file
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	return loadJSON[ArgumentSuite](os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadFS loads all three suites from fsys
func LoadFS(fsys fs.FS) (*Suites, error) {
	toolSelection, err := loadJSON[ToolSelectionSuite](fsys, ToolSelectionFile)
	if err != nil {
		return nil, fmt.Errorf("loading tool selection: %w", err)
	}
	confusionPairs, err := loadJSON[ConfusionPairSuite](fsys, ConfusionPairFile)
	if err != nil {
		return nil, fmt.Errorf("loading confusion pairs: %w", err)
	}
	arguments, err := loadJSON[ArgumentSuite](fsys, ArgumentFile)
	if err != nil {
		return nil, fmt.Errorf("loading arguments: %w", err)
	}
	return &Suites{
		ToolSelection:  toolSelection,
		ConfusionPairs: confusionPairs,
		Arguments:      arguments,
	}, nil
}

// LoadAll loads all suites from dir, or the suites compiled into the
// binary when dir is empty.
func LoadAll(dir string) (*Suites, error) {
	if dir == "" {
		return LoadFS(builtin)
	}
	return LoadFS(os.DirFS(dir))
}

// TotalTests counts the test cases across all suites
func (s *Suites) TotalTests() int {
	n := len(s.ToolSelection.Tests) + len(s.Arguments.Tests)
	for _, pair := range s.ConfusionPairs.Pairs {
		n += len(pair.Tests)
	}
	return n
}

// CoveredTools returns every tool name referenced by the suites
func (s *Suites) CoveredTools() map[string]bool {
	covered := make(map[string]bool)
	for _, test := range s.ToolSelection.Tests {
		covered[test.ExpectedTool] = true
		for _, name := range test.NotTools {
			covered[name] = true
		}
	}
	for _, pair := range s.ConfusionPairs.Pairs {
		for _, name := range pair.Tools {
			covered[name] = true
		}
		for _, test := range pair.Tests {
			covered[test.Expected] = true
		}
	}
	for _, test := range s.Arguments.Tests {
		covered[test.Tool] = true
	}
	return covered
}

// Validate reports suite entries that name tools outside known
func (s *Suites) Validate(known []string) error {
	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	var unknown []string
	for name := range s.CoveredTools() {
		if !set[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("suites reference unknown tools: %v", unknown)
	}
	return nil
}
