package evals

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/olgasafonova/confluence-mcp-server/tools"
)

// MockToolSelector returns canned answers by input
type MockToolSelector struct {
	Responses   map[string]mockResponse
	DefaultTool string
}

type mockResponse struct {
	Tool string
	Args map[string]any
	Err  error
}

func (m *MockToolSelector) SelectTool(input string) (string, map[string]any, error) {
	if resp, ok := m.Responses[input]; ok {
		return resp.Tool, resp.Args, resp.Err
	}
	return m.DefaultTool, nil, nil
}

// PerfectToolSelector returns the expected answer for each tool selection test
type PerfectToolSelector struct {
	suite *ToolSelectionSuite
}

func (p *PerfectToolSelector) SelectTool(input string) (string, map[string]any, error) {
	for _, test := range p.suite.Tests {
		if test.Input == input {
			return test.ExpectedTool, test.ExpectedArgs, nil
		}
	}
	return "", nil, nil
}

func loadSuites(t *testing.T) *Suites {
	t.Helper()
	suites, err := LoadAll(".")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	return suites
}

func TestLoadSuites(t *testing.T) {
	suites := loadSuites(t)

	if suites.ToolSelection.Name == "" || len(suites.ToolSelection.Tests) == 0 {
		t.Error("tool selection suite should have a name and tests")
	}
	for _, test := range suites.ToolSelection.Tests {
		if test.ID == "" || test.Input == "" || test.ExpectedTool == "" {
			t.Errorf("incomplete tool selection test: %+v", test)
		}
	}

	if len(suites.ConfusionPairs.Pairs) == 0 {
		t.Fatal("confusion suite should have pairs")
	}
	for _, pair := range suites.ConfusionPairs.Pairs {
		if len(pair.Tools) < 2 {
			t.Errorf("pair %s should have at least 2 tools", pair.ID)
		}
		if len(pair.Tests) == 0 {
			t.Errorf("pair %s should have tests", pair.ID)
		}
	}

	if len(suites.Arguments.Tests) == 0 {
		t.Error("argument suite should have tests")
	}
	if suites.Arguments.ValidationRules.PageIDFormat == "" {
		t.Error("validation rules should be loaded")
	}
}

func TestLoadAll_Builtin(t *testing.T) {
	builtin, err := LoadAll("")
	if err != nil {
		t.Fatalf("LoadAll(\"\") failed: %v", err)
	}
	onDisk := loadSuites(t)
	if builtin.TotalTests() != onDisk.TotalTests() {
		t.Errorf("builtin suites have %d tests, on disk %d", builtin.TotalTests(), onDisk.TotalTests())
	}
}

func TestLoadSingleSuites(t *testing.T) {
	if _, err := LoadToolSelectionSuite(ToolSelectionFile); err != nil {
		t.Errorf("LoadToolSelectionSuite: %v", err)
	}
	if _, err := LoadConfusionPairSuite(ConfusionPairFile); err != nil {
		t.Errorf("LoadConfusionPairSuite: %v", err)
	}
	if _, err := LoadArgumentSuite(ArgumentFile); err != nil {
		t.Errorf("LoadArgumentSuite: %v", err)
	}
	if _, err := LoadToolSelectionSuite("missing.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFS_Errors(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{}); err == nil || !strings.Contains(err.Error(), "tool selection") {
		t.Errorf("expected tool selection load error, got %v", err)
	}

	broken := fstest.MapFS{
		ToolSelectionFile: {Data: []byte(`{"tests": [}`)},
	}
	if _, err := LoadFS(broken); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestSuitesOnlyReferenceRegisteredTools(t *testing.T) {
	suites := loadSuites(t)
	if err := suites.Validate(tools.ToolNames()); err != nil {
		t.Fatal(err)
	}

	covered := suites.CoveredTools()
	for _, name := range tools.ToolNames() {
		if !covered[name] {
			t.Errorf("tool %s has no eval coverage", name)
		}
	}
}

func TestValidate_UnknownTool(t *testing.T) {
	suites := &Suites{
		ToolSelection:  &ToolSelectionSuite{Tests: []ToolSelectionTest{{ExpectedTool: "get_page", NotTools: []string{"delete_page"}}}},
		ConfusionPairs: &ConfusionPairSuite{},
		Arguments:      &ArgumentSuite{Tests: []ArgumentTest{{Tool: "create_page"}}},
	}
	err := suites.Validate([]string{"get_page"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "[create_page delete_page]") {
		t.Errorf("error should list unknown tools sorted, got %v", err)
	}
}

func TestEvaluateToolSelection_Perfect(t *testing.T) {
	suite := loadSuites(t).ToolSelection

	metrics, results := EvaluateToolSelection(suite, &PerfectToolSelector{suite: suite})

	if metrics.TotalTests != len(suite.Tests) || len(results) != len(suite.Tests) {
		t.Errorf("expected %d tests, got %d metrics / %d results", len(suite.Tests), metrics.TotalTests, len(results))
	}
	if metrics.Accuracy != 1.0 {
		t.Errorf("expected 100%% accuracy, got %.2f: %v", metrics.Accuracy, metrics.FailedDetails)
	}
}

func TestEvaluateToolSelection_WrongAnswers(t *testing.T) {
	suite := &ToolSelectionSuite{
		Tests: []ToolSelectionTest{
			{ID: "t1", Category: "read", Input: "open page 1", ExpectedTool: "get_page", ExpectedArgs: map[string]any{"page_id": "1"}},
			{ID: "t2", Category: "browse", Input: "children of page 1", ExpectedTool: "get_children", NotTools: []string{"get_page"}},
			{ID: "t3", Category: "demo", Input: "7 plus 5", ExpectedTool: "add", ExpectedArgs: map[string]any{"a": float64(7), "b": float64(5)}},
		},
	}
	selector := &MockToolSelector{
		Responses: map[string]mockResponse{
			"open page 1":        {Tool: "get_page", Args: map[string]any{"page_id": "2"}},
			"children of page 1": {Tool: "get_page"},
			"7 plus 5":           {Tool: "add", Args: map[string]any{"a": 7, "b": 5}},
		},
	}

	metrics, results := EvaluateToolSelection(suite, selector)

	if metrics.PassedTests != 1 || metrics.FailedTests != 2 {
		t.Fatalf("passed/failed = %d/%d, want 1/2", metrics.PassedTests, metrics.FailedTests)
	}
	if !strings.Contains(strings.Join(results[0].Errors, ";"), "wrong arg page_id") {
		t.Errorf("t1 errors = %v", results[0].Errors)
	}
	if !strings.Contains(strings.Join(results[1].Errors, ";"), "forbidden tool: get_page") {
		t.Errorf("t2 errors = %v", results[1].Errors)
	}
	if !results[2].Passed {
		t.Errorf("t3 should pass with int args against float expectations: %v", results[2].Errors)
	}

	if got := metrics.ByTool["get_children"].FalseNegatives; got != 1 {
		t.Errorf("get_children false negatives = %d, want 1", got)
	}
	if got := metrics.ByTool["get_page"].FalsePositives; got != 1 {
		t.Errorf("get_page false positives = %d, want 1", got)
	}
	if got := metrics.ByCategory["browse"].Failed; got != 1 {
		t.Errorf("browse failed = %d, want 1", got)
	}
}

func TestEvaluateConfusionPairs(t *testing.T) {
	suite := loadSuites(t).ConfusionPairs

	// Always answering search_cql passes only the search cases
	metrics, results := EvaluateConfusionPairs(suite, &MockToolSelector{DefaultTool: "search_cql"})

	want := 0
	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			if test.Expected == "search_cql" {
				want++
			}
		}
	}
	if metrics.PassedTests != want {
		t.Errorf("passed = %d, want %d", metrics.PassedTests, want)
	}
	if len(results) != metrics.TotalTests {
		t.Errorf("results = %d, total = %d", len(results), metrics.TotalTests)
	}
	if _, ok := metrics.ByCategory["search_vs_children"]; !ok {
		t.Error("pairs should be reported as categories")
	}
}

func TestEvaluateConfusionPairs_SelectorError(t *testing.T) {
	suite := &ConfusionPairSuite{Pairs: []ConfusionPair{{
		ID:    "p",
		Tools: []string{"get_page", "get_children"},
		Tests: []ConfusionPairTest{{Input: "x", Expected: "get_page"}},
	}}}
	selector := &MockToolSelector{Responses: map[string]mockResponse{
		"x": {Tool: "get_page", Err: errors.New("rate limited")},
	}}

	metrics, _ := EvaluateConfusionPairs(suite, selector)
	if metrics.PassedTests != 0 {
		t.Error("a selector error should fail the test even with the right tool")
	}
}

func TestEvaluateArguments(t *testing.T) {
	suite := &ArgumentSuite{Tests: []ArgumentTest{
		{ID: "a1", Tool: "get_page", Input: "ok", RequiredArgs: []string{"page_id"}, ExpectedArgs: map[string]any{"page_id": "5"}},
		{ID: "a2", Tool: "get_page", Input: "missing", RequiredArgs: []string{"page_id"}},
		{ID: "a3", Tool: "list_spaces", Input: "forbidden", ForbiddenArgs: []string{"limit"}},
		{ID: "a4", Tool: "get_children", Input: "wrong tool"},
		{ID: "a5", Tool: "add", Input: "wrong value", ExpectedArgs: map[string]any{"a": float64(1)}},
	}}
	selector := &MockToolSelector{Responses: map[string]mockResponse{
		"ok":          {Tool: "get_page", Args: map[string]any{"page_id": "5"}},
		"missing":     {Tool: "get_page", Args: map[string]any{}},
		"forbidden":   {Tool: "list_spaces", Args: map[string]any{"limit": 25}},
		"wrong tool":  {Tool: "get_page"},
		"wrong value": {Tool: "add", Args: map[string]any{"a": 2}},
	}}

	metrics, results := EvaluateArguments(suite, selector)

	if metrics.TotalTests != 5 || len(results) != 5 {
		t.Fatalf("every test must be counted, got %d metrics / %d results", metrics.TotalTests, len(results))
	}
	if metrics.PassedTests != 1 {
		t.Errorf("passed = %d, want 1", metrics.PassedTests)
	}
	if len(results[1].MissingArgs) != 1 || results[1].MissingArgs[0] != "page_id" {
		t.Errorf("a2 missing = %v", results[1].MissingArgs)
	}
	if len(results[2].ForbiddenHit) != 1 {
		t.Errorf("a3 forbidden = %v", results[2].ForbiddenHit)
	}
	if !strings.Contains(results[3].Error, "wrong tool") {
		t.Errorf("a4 error = %q", results[3].Error)
	}
	if results[4].WrongArgs["a"] == "" {
		t.Errorf("a5 wrong args = %v", results[4].WrongArgs)
	}
}

func TestKeywordSelector_PassesBuiltinSuites(t *testing.T) {
	suites := loadSuites(t)
	selector := KeywordSelector{}

	if m, _ := EvaluateToolSelection(suites.ToolSelection, selector); m.Accuracy != 1.0 {
		t.Errorf("tool selection accuracy %.2f: %v", m.Accuracy, m.FailedDetails)
	}
	if m, _ := EvaluateConfusionPairs(suites.ConfusionPairs, selector); m.Accuracy != 1.0 {
		t.Errorf("confusion accuracy %.2f: %v", m.Accuracy, m.FailedDetails)
	}
	if m, _ := EvaluateArguments(suites.Arguments, selector); m.Accuracy != 1.0 {
		t.Errorf("argument accuracy %.2f: %v", m.Accuracy, m.FailedDetails)
	}
}

func TestKeywordSelector_NoMatch(t *testing.T) {
	for _, input := range []string{"what's the weather", "add them up"} {
		if _, _, err := (KeywordSelector{}).SelectTool(input); !errors.Is(err, ErrNoMatch) {
			t.Errorf("SelectTool(%q) err = %v, want ErrNoMatch", input, err)
		}
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		expected, actual any
		want             bool
	}{
		{"hello", "hello", true},
		{"hello", "world", false},
		{float64(25), 25, true},
		{25, float64(25), true},
		{float64(-3), int64(-3), true},
		{float64(1), "1", false},
		{true, true, true},
		{nil, nil, true},
		{nil, "x", false},
		{[]any{"a", float64(1)}, []any{"a", 1}, true},
		{[]any{"a"}, []any{"a", "b"}, false},
	}

	for _, tt := range tests {
		if got := compareValues(tt.expected, tt.actual); got != tt.want {
			t.Errorf("compareValues(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
		}
	}
}

func TestFormatMetrics(t *testing.T) {
	metrics := newMetrics()
	metrics.record("search", true, "")
	metrics.record("read", false, "[t2] open page: wrong tool")
	metrics.finish()

	out := FormatMetrics(metrics, "Test Suite")
	for _, want := range []string{"=== Test Suite ===", "Total: 2 tests", "Passed: 1 (50.0%)", "read", "[t2] open page"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "read") > strings.Index(out, "search") {
		t.Error("categories should be sorted")
	}
}

func TestFormatMetrics_TruncatesFailures(t *testing.T) {
	metrics := newMetrics()
	for i := 0; i < 12; i++ {
		metrics.record("c", false, "fail")
	}
	metrics.finish()

	out := FormatMetrics(metrics, "Many")
	if !strings.Contains(out, "showing first 10 of 12") {
		t.Errorf("expected truncation notice:\n%s", out)
	}
}
