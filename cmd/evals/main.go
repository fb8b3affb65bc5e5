// Command evals loads the tool selection suites and reports coverage.
//
// Usage:
//
//	go run ./cmd/evals -suite all
//	go run ./cmd/evals -dir ./evals -baseline
//
// Without -dir the suites compiled into the binary are used. -baseline scores
// the keyword selector against the suites; wire an LLM by implementing
// evals.ToolSelector.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olgasafonova/confluence-mcp-server/evals"
	"github.com/olgasafonova/confluence-mcp-server/tools"
)

func main() {
	dir := flag.String("dir", "", "Directory containing eval JSON files (default: built-in suites)")
	suite := flag.String("suite", "all", "Suite to show: tool_selection, confusion_pairs, arguments, or all")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	baseline := flag.Bool("baseline", false, "Score the keyword baseline selector")
	flag.Parse()

	if err := run(os.Stdout, *dir, *suite, *verbose, *baseline); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir, suite string, verbose, baseline bool) error {
	suites, err := evals.LoadAll(dir)
	if err != nil {
		return err
	}
	if err := suites.Validate(tools.ToolNames()); err != nil {
		return err
	}

	fmt.Fprintln(w, "Confluence MCP Server - Evaluation Framework")
	fmt.Fprintln(w, "============================================")
	fmt.Fprintln(w)

	switch suite {
	case "tool_selection":
		showToolSelection(w, suites.ToolSelection, verbose)
	case "confusion_pairs":
		showConfusionPairs(w, suites.ConfusionPairs, verbose)
	case "arguments":
		showArguments(w, suites.Arguments, verbose)
	case "all":
		showSummary(w, suites, verbose)
	default:
		return fmt.Errorf("unknown suite: %s", suite)
	}

	if baseline {
		runBaseline(w, suites, suite)
	}
	return nil
}

func showToolSelection(w io.Writer, suite *evals.ToolSelectionSuite, verbose bool) {
	fmt.Fprintf(w, "Tool Selection Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	categories := make(map[string]int)
	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		byTool[test.ExpectedTool]++
	}

	fmt.Fprintln(w, "Tests by Category:")
	printCounts(w, categories, 15)
	fmt.Fprintln(w, "Tests by Tool:")
	printCounts(w, byTool, 15)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    → %s\n", test.ExpectedTool)
			if len(test.NotTools) > 0 {
				fmt.Fprintf(w, "    ✗ %v\n", test.NotTools)
			}
		}
	}
}

func showConfusionPairs(w io.Writer, suite *evals.ConfusionPairSuite, verbose bool) {
	total := 0
	for _, pair := range suite.Pairs {
		total += len(pair.Tests)
	}

	fmt.Fprintf(w, "Confusion Pairs Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Pairs: %d\n", len(suite.Pairs))
	fmt.Fprintf(w, "Total Tests: %d\n\n", total)

	fmt.Fprintln(w, "Confusion Pairs:")
	for _, pair := range suite.Pairs {
		fmt.Fprintf(w, "\n  %s:\n", pair.ID)
		fmt.Fprintf(w, "    Tools: %v\n", pair.Tools)
		fmt.Fprintf(w, "    Rule: %s\n", pair.Disambiguation)
		fmt.Fprintf(w, "    Tests: %d\n", len(pair.Tests))

		if verbose {
			for _, test := range pair.Tests {
				fmt.Fprintf(w, "      %q\n", test.Input)
				fmt.Fprintf(w, "        → %s (%s)\n", test.Expected, test.Reason)
			}
		}
	}
	fmt.Fprintln(w)
}

func showArguments(w io.Writer, suite *evals.ArgumentSuite, verbose bool) {
	fmt.Fprintf(w, "Argument Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		byTool[test.Tool]++
	}
	fmt.Fprintln(w, "Tests by Tool:")
	printCounts(w, byTool, 15)

	rules := suite.ValidationRules
	fmt.Fprintln(w, "Validation Rules:")
	fmt.Fprintf(w, "  Page ID Format: %s\n", rules.PageIDFormat)
	fmt.Fprintf(w, "  CQL Format: %s\n", rules.CQLFormat)
	fmt.Fprintf(w, "  Limit Handling: %s\n", rules.LimitHandling)
	fmt.Fprintf(w, "  Body Format: %s\n", rules.BodyFormat)
	fmt.Fprintf(w, "  Integer Handling: %s\n\n", rules.IntegerHandling)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    Tool: %s\n", test.Tool)
			fmt.Fprintf(w, "    Required: %v\n", test.RequiredArgs)
			fmt.Fprintf(w, "    Expected: %v\n", test.ExpectedArgs)
			if len(test.ForbiddenArgs) > 0 {
				fmt.Fprintf(w, "    Forbidden: %v\n", test.ForbiddenArgs)
			}
			if test.ArgNotes != "" {
				fmt.Fprintf(w, "    Notes: %s\n", test.ArgNotes)
			}
		}
	}
}

func showSummary(w io.Writer, suites *evals.Suites, verbose bool) {
	confusionTests := 0
	for _, pair := range suites.ConfusionPairs.Pairs {
		confusionTests += len(pair.Tests)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintln(w, "--------")
	fmt.Fprintf(w, "Tool Selection Tests:   %d\n", len(suites.ToolSelection.Tests))
	fmt.Fprintf(w, "Confusion Pair Tests:   %d (across %d pairs)\n", confusionTests, len(suites.ConfusionPairs.Pairs))
	fmt.Fprintf(w, "Argument Tests:         %d\n", len(suites.Arguments.Tests))
	fmt.Fprintln(w, "──────────────────────────")
	fmt.Fprintf(w, "Total Evaluation Tests: %d\n\n", suites.TotalTests())

	covered := suites.CoveredTools()
	fmt.Fprintf(w, "Tool Coverage: %d of %d tools\n", len(covered), len(tools.ToolNames()))

	if verbose {
		fmt.Fprintln(w, "\nCovered Tools:")
		for _, name := range tools.ToolNames() {
			mark := "✗"
			if covered[name] {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %s\n", mark, name)
		}
	}
	fmt.Fprintln(w)
}

func runBaseline(w io.Writer, suites *evals.Suites, suite string) {
	selector := evals.KeywordSelector{}
	if suite == "all" || suite == "tool_selection" {
		m, _ := evals.EvaluateToolSelection(suites.ToolSelection, selector)
		fmt.Fprint(w, evals.FormatMetrics(m, "Baseline: Tool Selection"))
	}
	if suite == "all" || suite == "confusion_pairs" {
		m, _ := evals.EvaluateConfusionPairs(suites.ConfusionPairs, selector)
		fmt.Fprint(w, evals.FormatMetrics(m, "Baseline: Confusion Pairs"))
	}
	if suite == "all" || suite == "arguments" {
		m, _ := evals.EvaluateArguments(suites.Arguments, selector)
		fmt.Fprint(w, evals.FormatMetrics(m, "Baseline: Arguments"))
	}
}

func printCounts(w io.Writer, counts map[string]int, width int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-*s: %d\n", width, k, counts[k])
	}
	fmt.Fprintln(w)
}
