package mappers

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"course-feeds/internal/domain"
)

// Normalizers never fail: malformed upstream data degrades to a default (or
// passes through trimmed) so a single bad record cannot block the export.

// formatPrice renders a numeric string with exactly two decimals ("19.5" ->
// "19.50"). Non-numeric input passes through unchanged.
func formatPrice(s string) string {
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatDuration renders whole durations without a decimal part ("2.0" ->
// "2") and fractional ones with a single decimal ("0.75" -> "0.8").
// Non-numeric input passes through unchanged.
func formatDuration(s string) string {
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// dayMonthYear reformats an ISO date(-time) string to DD/MM/YYYY. Only the
// first 10 characters are considered, so datetime values work too. Anything
// that does not parse passes through unchanged.
func dayMonthYear(s string) string {
	date := s
	if len(date) > 10 {
		date = date[:10]
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

var clockRe = regexp.MustCompile(`(?:[01][0-9]|2[0-3]):[0-5][0-9]`)

// extractTimeRange scans a free-text hours field ("09:00 - 17:00", "van
// 09:00 tot 17:30") for the first two 24-hour HH:MM values.
// Fewer than two matches yields ("", "").
func extractTimeRange(s string) (string, string) {
	m := clockRe.FindAllString(s, 2)
	if len(m) < 2 {
		return "", ""
	}
	return m[0], m[1]
}

// cdata wraps HTML content so the consuming feed reader treats it as
// unescaped markup.
func cdata(s string) string {
	return "<![CDATA[" + s + "]]>"
}

// addUTM appends the partner's fixed UTM query when the URL has no query
// yet. A URL that already carries any query is returned unchanged, so
// manually tagged links are never overridden.
func addUTM(rawurl, utm string) string {
	if rawurl == "" || utm == "" {
		return rawurl
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	if u.RawQuery != "" {
		return rawurl
	}
	u.RawQuery = utm
	return u.String()
}

// skillsString resolves the skills field to a single delimited string.
// Precedence: the precomputed skills_export formula field (ARRAYJOIN in
// Airtable), then a multi-select list, then free text. The delimiter is a
// versioned per-partner contract and is passed in by the assembler.
func skillsString(f domain.Fields, delim string) string {
	if s := f.Str("skills_export"); s != "" {
		return normalizeSeparators(s, delim)
	}

	switch raw := f["skills"].(type) {
	case []any:
		return strings.Join(f.List("skills"), delim)
	case string:
		txt := strings.TrimSpace(raw)
		if txt == "" {
			return ""
		}
		other := otherSeparator(delim)
		if strings.Contains(txt, other) && !strings.Contains(txt, separatorChar(delim)) {
			parts := strings.Split(txt, other)
			kept := make([]string, 0, len(parts))
			for _, p := range parts {
				if v := strings.TrimSpace(p); v != "" {
					kept = append(kept, v)
				}
			}
			return strings.Join(kept, delim)
		}
		return txt
	default:
		return ""
	}
}

// subsidyString resolves the government_subsidy field (multi-select or
// plain text) to a single delimited string.
func subsidyString(f domain.Fields, delim string) string {
	switch f["government_subsidy"].(type) {
	case []any:
		return strings.Join(f.List("government_subsidy"), delim)
	case string:
		return normalizeSeparators(f.Str("government_subsidy"), delim)
	default:
		return ""
	}
}

// normalizeSeparators rewrites the alternate list separator ("; " or ";")
// to the target delimiter.
func normalizeSeparators(s, delim string) string {
	other := otherSeparator(delim)
	s = strings.ReplaceAll(s, other+" ", delim)
	s = strings.ReplaceAll(s, other, delim)
	return s
}

func otherSeparator(delim string) string {
	if strings.Contains(delim, ";") {
		return ","
	}
	return ";"
}

func separatorChar(delim string) string {
	return strings.TrimSpace(delim)
}
