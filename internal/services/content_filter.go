package services

import (
	"regexp"
	"strconv"
	"strings"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

// Rejection reasons returned by ContentFilter.Check.
const (
	ReasonLanguage = "inappropriate_language"
	ReasonSpam     = "spam_detected"
	ReasonCaps     = "excessive_caps"
)

// ContentFilter screens user-written message text. Contact details are
// allowed since buyers and sellers exchange them.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps:   make([]*regexp.Regexp, 0, len(BannedWords)),
		repeatedCharPattern: repeatedCharRegexp(6),
		allCapsPattern:      regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range BannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check reports whether text is acceptable, and the reason when it is not.
func (f *ContentFilter) Check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, ReasonLanguage
		}
	}
	if f.repeatedCharPattern.MatchString(text) {
		return false, ReasonSpam
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 3 {
		return false, ReasonCaps
	}
	return true, ""
}

func (f *ContentFilter) RejectionMessage(reason string) string {
	switch reason {
	case ReasonLanguage:
		return "Your message contains inappropriate language."
	case ReasonSpam:
		return "Your message appears to be spam."
	case ReasonCaps:
		return "Please avoid using excessive capital letters."
	}
	return "Your message does not meet our content guidelines."
}

// repeatedCharRegexp matches any letter or ?!. repeated n or more times.
// RE2 has no backreferences, so each character gets its own alternative.
func repeatedCharRegexp(n int) *regexp.Regexp {
	chars := []string{`!`, `\?`, `\.`}
	for c := 'a'; c <= 'z'; c++ {
		chars = append(chars, string(c))
	}
	alts := make([]string, len(chars))
	for i, c := range chars {
		alts[i] = c + "{" + strconv.Itoa(n) + ",}"
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(alts, "|") + `)`)
}
