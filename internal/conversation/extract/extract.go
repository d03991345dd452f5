// Package extract pulls structured profile fields out of free-form visitor
// messages using fixed pattern families. It is deterministic and side-effect
// free; fields that do not match are simply absent from the result.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// referenceYear resolves month-day dates that arrive without a year.
// Heuristic only; it drifts near year boundaries.
const referenceYear = 2026

var consultTypes = []struct {
	keyword string
	ctype   string
}{
	{"virtual", "virtual"},
	{"video", "virtual"},
	{"in person", "in-person"},
	{"showroom", "in-person"},
}

var (
	isoDatePattern  = regexp.MustCompile(`(202[5-9]|203\d)-\d{2}-\d{2}`)
	monthDayPattern = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\s+(\d{1,2})`)
	emailPattern    = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`(\+?\d[\d\-\s]{7,}\d)`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is ([A-Za-z][A-Za-z' -]{1,40})`),
	regexp.MustCompile(`(?i)\bname is ([A-Za-z][A-Za-z' -]{1,40})`),
	regexp.MustCompile(`(?i)\bnames ([A-Za-z][A-Za-z' -]{1,40})`),
	regexp.MustCompile(`(?i)\bi am ([A-Za-z][A-Za-z' -]{1,40})`),
	regexp.MustCompile(`(?i)\bi'm ([A-Za-z][A-Za-z' -]{1,40})`),
	regexp.MustCompile(`(?i)\bname[: ]+([A-Za-z][A-Za-z' -]{1,40})`),
}

// nameStopWords truncate an extracted name so trailing contact info is not
// swallowed into it ("John Smith phone 555...").
var nameStopWords = map[string]bool{
	"phone":  true,
	"number": true,
	"email":  true,
	"call":   true,
	"text":   true,
	"at":     true,
}

var agentYesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(have|working with|got) an agent\b`),
	regexp.MustCompile(`(?i)\byes\b.*agent`),
}

var agentNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(no|dont|don't) have.*agent\b`),
	regexp.MustCompile(`(?i)\bno agent\b`),
	regexp.MustCompile(`(?i)\bnot working with.*agent`),
}

var preApprovalYesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(have|got).*(pre-?approv|letter)\b`),
	regexp.MustCompile(`(?i)\bpre-?approved\b`),
}

var preApprovalNoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(no|dont|don't) have.*(pre-?approv|letter)\b`),
	regexp.MustCompile(`(?i)\bnot.*pre-?approved\b`),
}

// Fields parses the message and returns the profile fields it could find.
// Recognized keys: agent_status, pre_approval, contact_name, consult_type,
// requested_date, contact_email, contact_phone.
func Fields(message string) map[string]string {
	lowered := strings.ToLower(message)
	profile := map[string]string{}

	for _, p := range agentYesPatterns {
		if p.MatchString(message) {
			profile["agent_status"] = "yes"
			break
		}
	}
	if _, ok := profile["agent_status"]; !ok {
		for _, p := range agentNoPatterns {
			if p.MatchString(message) {
				profile["agent_status"] = "no"
				break
			}
		}
	}

	for _, p := range preApprovalYesPatterns {
		if p.MatchString(message) {
			profile["pre_approval"] = "yes"
			break
		}
	}
	if _, ok := profile["pre_approval"]; !ok {
		for _, p := range preApprovalNoPatterns {
			if p.MatchString(message) {
				profile["pre_approval"] = "no"
				break
			}
		}
	}

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		rawName := strings.Trim(spacePattern.ReplaceAllString(match[1], " "), " .,:;")
		if rawName == "" {
			continue
		}
		var parts []string
		for _, part := range strings.Fields(rawName) {
			if nameStopWords[strings.ToLower(part)] {
				break
			}
			parts = append(parts, part)
		}
		cleanName := strings.TrimSpace(strings.Join(parts, " "))
		if cleanName != "" {
			setIfAbsent(profile, "contact_name", cleanName)
			break
		}
	}

	for _, entry := range consultTypes {
		if strings.Contains(lowered, entry.keyword) {
			setIfAbsent(profile, "consult_type", entry.ctype)
		}
	}

	if iso := isoDatePattern.FindString(message); iso != "" {
		setIfAbsent(profile, "requested_date", iso)
	} else if match := monthDayPattern.FindStringSubmatch(message); match != nil {
		raw := fmt.Sprintf("%s %s %d", titleCase(match[1]), match[2], referenceYear)
		if parsed, err := time.Parse("Jan 2 2006", raw); err == nil {
			setIfAbsent(profile, "requested_date", parsed.Format("2006-01-02"))
		}
	}

	emailLoc := emailPattern.FindStringIndex(message)
	if emailLoc != nil {
		setIfAbsent(profile, "contact_email", message[emailLoc[0]:emailLoc[1]])
	}

	phoneLoc := phonePattern.FindStringIndex(message)
	if phoneLoc != nil {
		setIfAbsent(profile, "contact_phone", message[phoneLoc[0]:phoneLoc[1]])
	}

	if profile["contact_name"] == "" && (emailLoc != nil || phoneLoc != nil) {
		if name := inferNameBeforeContact(message, emailLoc, phoneLoc); name != "" {
			setIfAbsent(profile, "contact_name", name)
		}
	}

	return profile
}

// inferNameBeforeContact is a low-confidence fallback: it takes up to three
// alphabetic tokens immediately preceding the earliest contact match.
func inferNameBeforeContact(message string, emailLoc, phoneLoc []int) string {
	contactStart := -1
	if emailLoc != nil {
		contactStart = emailLoc[0]
	}
	if phoneLoc != nil {
		if contactStart == -1 || phoneLoc[0] < contactStart {
			contactStart = phoneLoc[0]
		}
	}
	if contactStart <= 0 {
		return ""
	}

	prefix := strings.Trim(strings.TrimSpace(message[:contactStart]), ",;:-")
	if idx := strings.LastIndex(prefix, ","); idx != -1 {
		prefix = strings.TrimSpace(prefix[idx+1:])
	}
	tokens := strings.Fields(prefix)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) > 3 {
		tokens = tokens[len(tokens)-3:]
	}
	candidate := strings.Trim(strings.Join(tokens, " "), " .,:;")
	if candidate == "" {
		return ""
	}
	for _, part := range strings.Fields(candidate) {
		if !isAlpha(part) {
			return ""
		}
	}
	if nameStopWords[strings.ToLower(candidate)] {
		return ""
	}
	return candidate
}

func setIfAbsent(profile map[string]string, key, value string) {
	if profile[key] == "" {
		profile[key] = value
	}
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
