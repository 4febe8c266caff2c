package pipeline

import (
	"regexp"

	"orgtree/internal"
)

type categoryRule struct {
	category internal.Category
	pattern  *regexp.Regexp
}

// Rules are tried in order and the first match wins; names often hit several
// keyword sets ("AI Engineering" is research, not engineering).
var categoryRules = []categoryRule{
	{internal.CategoryResearch, regexp.MustCompile(`(?i)research|ai|ml|machine learning|artificial intelligence|data science|analytics`)},
	{internal.CategoryEngineering, regexp.MustCompile(`(?i)engineering|software|hardware|development|design|architecture|platform|infrastructure|systems|technical`)},
	{internal.CategoryMarketing, regexp.MustCompile(`(?i)marketing|brand|advertising|communications|marcom|publicity|promotion`)},
	{internal.CategoryOperations, regexp.MustCompile(`(?i)operations|logistics|supply|procurement|manufacturing|finance|business|sales`)},
	{internal.CategorySupport, regexp.MustCompile(`(?i)support|service|quality|testing|qa|qe|validation|compliance`)},
	{internal.CategoryManagement, regexp.MustCompile(`(?i)management|strategy|planning|program|project|executive`)},
}

// Categorize classifies a cleaned team name. Keywords match anywhere in the
// name, including inside longer words.
func Categorize(name string) internal.Category {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(name) {
			return rule.category
		}
	}
	return internal.CategoryOther
}
