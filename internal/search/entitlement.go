package search

import "strings"

// roleTokens is the fixed uppercase entitlement token set.
var roleTokens = map[string]string{
	"admin":      "ADMIN",
	"supervisor": "SUPERVISOR",
	"manager":    "MANAGER",
	"chat_agent": "CHAT_AGENT",
	"chat agent": "CHAT_AGENT",
}

// departmentKeywords maps, in match order, a department-name keyword
// to its lowercase entitlement token.
var departmentKeywords = []struct{ keyword, token string }{
	{"premier", "premier"},
	{"retail", "retail"},
	{"wealth", "wealth"},
	{"business", "business"},
	{"card", "cards"},
	{"digital", "digital"},
	{"experience", "experience"},
}

// Entitlement derives the X-Agent-Entitlement header value from the
// operator's role and department. Empty when both are absent; the
// trailing "basic" token is always appended otherwise.
func Entitlement(role, department string) string {
	if role == "" && department == "" {
		return ""
	}
	var tokens []string

	if role != "" {
		r := strings.ToLower(strings.TrimSpace(role))
		if tok, ok := roleTokens[r]; ok {
			tokens = append(tokens, tok)
		} else {
			tokens = append(tokens, "AGENT")
		}
	}

	if department != "" {
		d := strings.ToLower(department)
		tok := ""
		for _, kw := range departmentKeywords {
			if strings.Contains(d, kw.keyword) {
				tok = kw.token
				break
			}
		}
		if tok == "" {
			tok = slugify(department)
		}
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	tokens = append(tokens, "basic")
	return strings.Join(tokens, ",")
}

// slugify lowercases and collapses non-alphanumerics to hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
