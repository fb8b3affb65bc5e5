package evals

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ToolSelector is implemented by whatever is being evaluated: an LLM
// integration, a mock, or KeywordSelector.
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// ToolSelectionResult is the outcome of one tool selection test
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// ConfusionPairResult is the outcome of one confusion pair test
type ConfusionPairResult struct {
	PairID       string
	TestInput    string
	ExpectedTool string
	ActualTool   string
	Reason       string
	Passed       bool
}

// ArgumentResult is the outcome of one argument test
type ArgumentResult struct {
	TestID       string
	Tool         string
	ActualTool   string
	Input        string
	Passed       bool
	Error        string
	MissingArgs  []string
	WrongArgs    map[string]string // arg -> "expected X, got Y"
	ForbiddenHit []string
}

// EvalMetrics aggregates one evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics counts results per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics counts results per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	SelectedCount  int // times tool was actually selected
	CorrectCount   int // times tool was correctly selected
	FalsePositives int // times tool was selected instead of another
	FalseNegatives int // times tool should have been selected but wasn't
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	c := m.ByCategory[name]
	if c == nil {
		c = &CategoryMetrics{}
		m.ByCategory[name] = c
	}
	return c
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	t := m.ByTool[name]
	if t == nil {
		t = &ToolMetrics{}
		m.ByTool[name] = t
	}
	return t
}

// record counts one finished test under category
func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.category(category)
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// selection tracks which tool was picked against which was expected
func (m *EvalMetrics) selection(expected, actual string) {
	m.tool(expected).ExpectedCount++
	m.tool(actual).SelectedCount++
	if expected == actual {
		m.tool(expected).CorrectCount++
		return
	}
	m.tool(expected).FalseNegatives++
	m.tool(actual).FalsePositives++
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newMetrics()
	results := make([]ToolSelectionResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		actualTool, actualArgs, err := selector.SelectTool(test.Input)
		metrics.selection(test.ExpectedTool, actualTool)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}
		if actualTool != test.ExpectedTool {
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
		}
		for _, forbidden := range test.NotTools {
			if actualTool == forbidden {
				result.Errors = append(result.Errors, fmt.Sprintf("selected forbidden tool: %s", forbidden))
			}
		}
		for _, key := range sortedKeys(test.ExpectedArgs) {
			expected := test.ExpectedArgs[key]
			actual, ok := actualArgs[key]
			switch {
			case !ok:
				result.Errors = append(result.Errors, fmt.Sprintf("missing arg %s (expected %v)", key, expected))
			case !compareValues(expected, actual):
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong arg %s: expected %v, got %v", key, expected, actual))
			}
		}

		result.Passed = len(result.Errors) == 0
		metrics.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

// EvaluateConfusionPairs runs confusion pair tests against a selector.
// Each pair is reported as its own category.
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []ConfusionPairResult) {
	metrics := newMetrics()
	var results []ConfusionPairResult

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			actualTool, _, err := selector.SelectTool(test.Input)
			metrics.selection(test.Expected, actualTool)

			result := ConfusionPairResult{
				PairID:       pair.ID,
				TestInput:    test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   actualTool,
				Reason:       test.Reason,
				Passed:       err == nil && actualTool == test.Expected,
			}
			metrics.record(pair.ID, result.Passed,
				fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
					pair.ID, test.Input, test.Expected, actualTool, test.Reason))
			results = append(results, result)
		}
	}

	metrics.finish()
	return metrics, results
}

// EvaluateArguments runs argument tests against a selector. A wrong tool or
// a selector error fails the test without looking at arguments.
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []ArgumentResult) {
	metrics := newMetrics()
	results := make([]ArgumentResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ArgumentResult{
			TestID:     test.ID,
			Tool:       test.Tool,
			ActualTool: actualTool,
			Input:      test.Input,
			WrongArgs:  make(map[string]string),
		}

		switch {
		case err != nil:
			result.Error = fmt.Sprintf("selector error: %v", err)
		case actualTool != test.Tool:
			result.Error = fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, actualTool)
		default:
			checkArguments(test, actualArgs, &result)
		}

		result.Passed = result.Error == "" &&
			len(result.MissingArgs) == 0 &&
			len(result.WrongArgs) == 0 &&
			len(result.ForbiddenHit) == 0

		metrics.record(test.Tool, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, describeArgumentFailure(result)))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

func checkArguments(test ArgumentTest, actual map[string]any, result *ArgumentResult) {
	for _, name := range test.RequiredArgs {
		if _, ok := actual[name]; !ok {
			result.MissingArgs = append(result.MissingArgs, name)
		}
	}
	for _, key := range sortedKeys(test.ExpectedArgs) {
		expected := test.ExpectedArgs[key]
		value, ok := actual[key]
		if !ok {
			if !contains(result.MissingArgs, key) {
				result.MissingArgs = append(result.MissingArgs, key)
			}
			continue
		}
		if !compareValues(expected, value) {
			result.WrongArgs[key] = fmt.Sprintf("expected %v, got %v", expected, value)
		}
	}
	for _, forbidden := range test.ForbiddenArgs {
		if _, ok := actual[forbidden]; ok {
			result.ForbiddenHit = append(result.ForbiddenHit, forbidden)
		}
	}
}

func describeArgumentFailure(r ArgumentResult) string {
	var parts []string
	if r.Error != "" {
		parts = append(parts, r.Error)
	}
	if len(r.MissingArgs) > 0 {
		parts = append(parts, fmt.Sprintf("missing: %v", r.MissingArgs))
	}
	for _, k := range sortedKeys(r.WrongArgs) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, r.WrongArgs[k]))
	}
	if len(r.ForbiddenHit) > 0 {
		parts = append(parts, fmt.Sprintf("forbidden: %v", r.ForbiddenHit))
	}
	return strings.Join(parts, "; ")
}

// compareValues compares an expected value from JSON with what a selector
// produced. Numbers compare by value whatever their Go type.
func compareValues(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		for _, cat := range sortedKeys(metrics.ByCategory) {
			m := metrics.ByCategory[cat]
			if m.Total > 0 {
				acc := float64(m.Passed) / float64(m.Total) * 100
				fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, m.Passed, m.Total, acc)
			}
		}
	}

	const maxShown = 10
	if n := len(metrics.FailedDetails); n > 0 {
		shown := metrics.FailedDetails
		if n > maxShown {
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxShown, n)
			shown = shown[:maxShown]
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, detail := range shown {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
