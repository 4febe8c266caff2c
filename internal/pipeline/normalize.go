package pipeline

import (
	"regexp"
	"strings"

	"orgtree/internal/util"
)

type rewrite struct {
	pattern *regexp.Regexp
	replace string
}

type abbreviation struct {
	short string
	full  string
}

// Abbreviations are expanded in this order. The short forms are disjoint words
// and no expansion contains a later short form, so the order does not change
// the result; it is fixed anyway so runs are reproducible.
var abbreviations = []abbreviation{
	{"AMP", "Apple Media Products"},
	{"TDG", "Technology Development Group"},
	{"IS&T", "Information Systems and Technology"},
	{"ACS", "Apple Cloud Services"},
	{"WTE", "Wireless Technologies and Ecosystems"},
	{"SEG", "Silicon Engineering Group"},
	{"IMG", "Interactive Media Group"},
	{"SPG", "Special Projects Group"},
	{"EPM", "Engineering Program Management"},
	{"SRE", "Site Reliability Engineering"},
	{"QA", "Quality Assurance"},
	{"QE", "Quality Engineering"},
	{"HW", "Hardware"},
	{"SW", "Software"},
	{"GPU", "Graphics Processing Unit"},
	{"CPU", "Central Processing Unit"},
	{"CAD", "Computer-Aided Design"},
	{"AI/ML", "Artificial Intelligence/Machine Learning"},
	{"AIML", "Artificial Intelligence Machine Learning"},
	{"RF", "Radio Frequency"},
	{"SoC", "System on Chip"},
	{"SOC", "System on Chip"},
	{"UI", "User Interface"},
	{"UX", "User Experience"},
}

var stopWords = map[string]struct{}{
	")": {}, "(": {}, ",": {}, "&": {}, "'": {}, `"`: {},
	"and": {}, "the": {}, "of": {}, "for": {}, "in": {}, "at": {}, "on": {},
	"with": {}, "or": {}, "a": {}, "an": {}, "to": {}, "by": {}, "is": {},
	"as": {}, "ml": {}, "characterization": {},
}

// Canonical spellings of product names, keyed by lower case.
var productNames = map[string]string{
	"iphone":  "iPhone",
	"ipad":    "iPad",
	"ipod":    "iPod",
	"imac":    "iMac",
	"airpods": "AirPods",
	"homepod": "HomePod",
	"appletv": "AppleTV",
	"macbook": "MacBook",
	"icloud":  "iCloud",
}

var (
	reQuotes      = regexp.MustCompile("[\"“”'‘’`]")
	reEdgePunct   = regexp.MustCompile(`^[,(\[\]'"~` + "`" + `!@#$%^&*+={}|\\:;<>?/._-]+|[,(\[\]'"~` + "`" + `!@#$%^&*+={}|\\:;<>?/._-]+$`)
	reHasLetter   = regexp.MustCompile(`[a-zA-Z]`)
	rePossessive  = regexp.MustCompile(`([a-zA-Z])'s\b`)
	reOpenParen   = regexp.MustCompile(`\([^)]*$`)
	reNoiseSuffix = regexp.MustCompile(`(?i)\b(team|group|organization|dept|department)\b$`)
	reLeadJunk    = regexp.MustCompile(`^[^a-zA-Z0-9]+`)
	reTrailJunk   = regexp.MustCompile(`[^a-zA-Z0-9)]+$`)
	reAcronym     = regexp.MustCompile(`(?i)^(API|GPU|CPU|iOS|macOS|tvOS|watchOS|WiFi|NFC|RF|AI|ML|UI|UX|QA|QE|3D|2D|VR|AR|CAD|SoC|SOC)$`)
	reParenAbbr   = regexp.MustCompile(`(?i)^\([A-Z]+\)?$`)

	phraseRewrites = []rewrite{
		{regexp.MustCompile(`(?i)\b(ams|analog mixed-signal)\b`), "Analog Mixed-Signal"},
		{regexp.MustCompile(`(?i)\bmixed-signals?\b`), "Mixed-Signal"},
		{regexp.MustCompile(`(?i)\bap\b`), "Apple"},
		{regexp.MustCompile(`(?i)\barchitecture and kinematics\b`), ""},
		{regexp.MustCompile(`(?i)\bbody technology\b`), ""},
		{regexp.MustCompile(`(?i)\bcharacterization\.+\b`), ""},
	}

	abbreviationRewrites = compileAbbreviations(abbreviations)
)

func compileAbbreviations(list []abbreviation) []rewrite {
	out := make([]rewrite, 0, len(list))
	for _, a := range list {
		out = append(out, rewrite{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(a.short) + `\b`),
			replace: a.full,
		})
	}
	return out
}

// CleanTeamName canonicalizes one raw label. An empty result means the label
// is noise and contributes nothing.
func CleanTeamName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = reQuotes.ReplaceAllString(s, "")
	s = util.CollapseSpaces(s)
	s = strings.TrimSpace(reEdgePunct.ReplaceAllString(s, ""))
	if rejected(s) {
		return ""
	}

	s = rePossessive.ReplaceAllString(s, "$1")
	s = closeParens(s)

	for _, rw := range phraseRewrites {
		s = rw.pattern.ReplaceAllLiteralString(s, rw.replace)
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}

	for _, rw := range abbreviationRewrites {
		s = rw.pattern.ReplaceAllLiteralString(s, rw.replace)
	}
	// an expansion can split "(QA" into "(Quality Assurance".
	s = closeParens(s)

	s = trimNoise(s)
	if rejected(s) {
		return ""
	}
	return titleCase(s)
}

// rejected reports labels too short, without letters, or made of a stop word.
func rejected(s string) bool {
	if util.Length(s) < 3 || !reHasLetter.MatchString(s) {
		return true
	}
	_, stop := stopWords[strings.ToLower(s)]
	return stop
}

// closeParens appends a missing ")" to a trailing "(..." and to any word that
// opens a parenthesis without closing it.
func closeParens(s string) string {
	if reOpenParen.MatchString(s) {
		s += ")"
	}
	words := strings.Split(s, " ")
	for i, w := range words {
		if strings.HasPrefix(w, "(") && !strings.Contains(w, ")") {
			words[i] = w + ")"
		}
	}
	return strings.Join(words, " ")
}

// trimNoise drops trailing organizational words and stray edge characters
// until neither changes the label.
func trimNoise(s string) string {
	for {
		prev := s
		s = reNoiseSuffix.ReplaceAllString(s, "")
		s = strings.TrimSpace(util.CollapseSpaces(s))
		s = reLeadJunk.ReplaceAllString(s, "")
		s = reTrailJunk.ReplaceAllString(s, "")
		if s == prev {
			return s
		}
	}
}

func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		switch {
		case reAcronym.MatchString(w), reParenAbbr.MatchString(w):
			words[i] = strings.ToUpper(w)
		case productNames[strings.ToLower(w)] != "":
			words[i] = productNames[strings.ToLower(w)]
		default:
			words[i] = util.ProperCase(w)
		}
	}
	return strings.Join(words, " ")
}
