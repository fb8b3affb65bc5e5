package evals

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoMatch is returned by KeywordSelector when no rule fits the input
var ErrNoMatch = errors.New("no tool matches input")

var (
	numberRe   = regexp.MustCompile(`-?\d+`)
	quotedRe   = regexp.MustCompile("[\"`]([^\"`]+)[\"`]")
	pageIDRe   = regexp.MustCompile(`(?i)\bpage\s*(?:id\s*)?#?(\d+)`)
	limitRe    = regexp.MustCompile(`(?i)\b(?:first|top|up to|limit|max)\s+(\d+)`)
	childrenRe = regexp.MustCompile(`(?i)\b(children|child pages?|sub-?pages?|under(neath)? page|nested under)\b`)
	searchRe   = regexp.MustCompile(`(?i)\b(cql|search|find|look for|mention(s|ing)?)\b`)
	spacesRe   = regexp.MustCompile(`(?i)\bspaces?\b`)
	addRe      = regexp.MustCompile(`(?i)\b(add|plus|sum|total of)\b|\+`)
	greetRe    = regexp.MustCompile(`(?i)\b(greet|say (hello|hi)|welcome)\b|안녕`)
	greetToRe  = regexp.MustCompile(`(?i)\b(?:greet|to|welcome)\s+([\p{L}][\p{L}\-']*)`)
	pageRe     = regexp.MustCompile(`(?i)\bpages?\b`)
)

// KeywordSelector is a rule-based ToolSelector. It gives a baseline for
// the suites and a sanity check that the suites are answerable.
type KeywordSelector struct{}

// SelectTool implements ToolSelector
func (KeywordSelector) SelectTool(input string) (string, map[string]any, error) {
	args := make(map[string]any)

	switch {
	case childrenRe.MatchString(input):
		if id := pageID(input); id != "" {
			args["page_id"] = id
		}
		setLimit(input, args)
		return "get_children", args, nil

	case searchRe.MatchString(input):
		if m := quotedRe.FindStringSubmatch(input); m != nil {
			args["cql"] = m[1]
		}
		setLimit(input, args)
		return "search_cql", args, nil

	case spacesRe.MatchString(input):
		setLimit(input, args)
		return "list_spaces", args, nil

	case addRe.MatchString(input):
		nums := numberRe.FindAllString(input, -1)
		if len(nums) < 2 {
			return "", nil, ErrNoMatch
		}
		args["a"], _ = strconv.Atoi(nums[0])
		args["b"], _ = strconv.Atoi(nums[1])
		return "add", args, nil

	case pageRe.MatchString(input) && pageID(input) != "":
		args["page_id"] = pageID(input)
		for _, format := range []string{"atlas_doc_format", "view", "storage"} {
			if strings.Contains(input, format) {
				args["body_format"] = format
				break
			}
		}
		return "get_page", args, nil

	case greetRe.MatchString(input):
		if m := greetToRe.FindStringSubmatch(input); m != nil {
			args["name"] = m[1]
		}
		return "greet", args, nil
	}

	return "", nil, ErrNoMatch
}

func pageID(input string) string {
	if m := pageIDRe.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return ""
}

func setLimit(input string, args map[string]any) {
	if m := limitRe.FindStringSubmatch(input); m != nil {
		n, _ := strconv.Atoi(m[1])
		args["limit"] = n
	}
}
