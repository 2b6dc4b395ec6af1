package profanity

import (
	"regexp"
	"strings"
)

// blockedTokens are matched case-insensitively as substrings anywhere in
// the text, not at word boundaries. That means benign words containing a
// token ("classic", "passage") also match; this mirrors the established
// filter behavior and changing it is a product decision.
var blockedTokens = []string{
	"fuck", "fucking", "fucked", "fucker", "fck", "f*ck",
	"shit", "shitty", "shitting", "bullshit", "horseshit",
	"bitch", "bitching", "bastard", "asshole", "ass",
	"dick", "cock", "penis", "pussy",
	"vagina", "cunt", "whore", "slut", "hoe", "prostitute",
	"nigger", "nigga", "negro", "n*gger", "n*gga",
	"fag", "faggot", "f*ggot", "dyke", "retard", "retarded",
	"terrorist", "rape", "raping", "rapist",
	"kill yourself", "kys", "suicide", "cancer", "aids",
	"holocaust", "dork", "nazi", "hitler", "slave", "slavery",
}

// Filter is a stateless matcher over the fixed token list. Safe for
// concurrent use.
type Filter struct {
	pattern *regexp.Regexp
}

func New() *Filter {
	escaped := make([]string, len(blockedTokens))
	for i, token := range blockedTokens {
		escaped[i] = regexp.QuoteMeta(token)
	}
	return &Filter{
		pattern: regexp.MustCompile("(?i)(" + strings.Join(escaped, "|") + ")"),
	}
}

func (f *Filter) ContainsViolation(text string) bool {
	return f.pattern.MatchString(text)
}
