package ai

import (
	"regexp"
	"strings"
)

// Fields are the structured values pulled out of OCR text.
type Fields struct {
	Plates        []string `json:"plates"`
	Dates         []string `json:"dates"`
	Times         []string `json:"times"`
	PolicyNumbers []string `json:"policy_numbers"`
}

var (
	platePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z]{2}-\d{3}-[A-Z]{2}\b`),             // AB-123-CD
		regexp.MustCompile(`\b[A-Z]{1,3}-[A-Z]{1,2} ?\d{1,4}[EH]?\b`), // M-AB 1234
		regexp.MustCompile(`\b[A-Z]{2}\d{2} ?[A-Z]{3}\b`),             // AB12 CDE
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`),
	}
	timePattern = regexp.MustCompile(`\b(?:[01]?\d|2[0-3])[:h][0-5]\d\b`)
	// "policy" must be followed by a number label or a colon.
	policyPattern = regexp.MustCompile(`(?i)\bpolicy\s*(?:no\b\.?|number\b|nr\b\.?|#|:)\s*[:#]?\s*([A-Z0-9][A-Z0-9/-]{4,})`)
	digitPattern  = regexp.MustCompile(`\d`)
)

// ExtractFields scans OCR output for licence plates, dates, times and
// insurance policy numbers. Matches keep their first-seen order and are
// deduplicated.
func ExtractFields(text string) Fields {
	f := Fields{
		Plates:        []string{},
		Dates:         []string{},
		Times:         []string{},
		PolicyNumbers: []string{},
	}
	upper := strings.ToUpper(text)

	for _, re := range platePatterns {
		f.Plates = appendUnique(f.Plates, re.FindAllString(upper, -1)...)
	}
	for _, re := range datePatterns {
		f.Dates = appendUnique(f.Dates, re.FindAllString(text, -1)...)
	}
	f.Times = appendUnique(f.Times, timePattern.FindAllString(text, -1)...)
	for _, m := range policyPattern.FindAllStringSubmatch(text, -1) {
		if digitPattern.MatchString(m[1]) {
			f.PolicyNumbers = appendUnique(f.PolicyNumbers, strings.ToUpper(m[1]))
		}
	}
	return f
}

func appendUnique(dst []string, vals ...string) []string {
outer:
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		for _, existing := range dst {
			if existing == v {
				continue outer
			}
		}
		dst = append(dst, v)
	}
	return dst
}
