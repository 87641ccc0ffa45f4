package joblens

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseObject extracts a flat object from model output that is supposed to
// be a single JSON object but frequently is not quite: wrapped in code
// fences, containing unescaped control characters, single quotes, unquoted
// keys or trailing commas, or truncated mid-object.
//
// It tries, in order: a direct parse of the brace-delimited candidate, a
// parse after textual repairs, and a regex scrape of key/value pairs over
// both the repaired and the original text. It never fails; when nothing
// yields a field the result is an empty map.
func ParseObject(raw string) map[string]any {
	candidate := sliceObject(stripFences(raw))

	if obj := tryUnmarshal(candidate); obj != nil {
		return obj
	}

	repaired := RepairJSON(candidate)
	if obj := tryUnmarshal(repaired); obj != nil {
		return obj
	}

	if obj := scrapePairs(repaired); len(obj) > 0 {
		return obj
	}
	if obj := scrapePairs(raw); len(obj) > 0 {
		return obj
	}

	return map[string]any{}
}

// StringField returns the named field from a parsed object as a trimmed
// string, or "" when absent or not a string.
func StringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// StringSliceField returns the named field as a slice of non-empty strings.
func StringSliceField(obj map[string]any, key string) []string {
	items, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var (
	fenceRE        = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	fenceMarkerRE  = regexp.MustCompile("```(?:json|JSON)?")
	unquotedKeyRE  = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_-]*)\s*:`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	pairRE         = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_-]*)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	controlCharsRE = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
)

// stripFences removes Markdown code-fence wrapping, keeping the fenced body
// when a complete fence pair exists and dropping stray markers otherwise.
func stripFences(raw string) string {
	if m := fenceRE.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return fenceMarkerRE.ReplaceAllString(raw, "")
}

// sliceObject takes the substring between the first '{' and the last '}'.
// When no closing brace follows the opening one the tail from '{' is kept,
// so repair can close a truncated object.
func sliceObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	end := strings.LastIndex(s, "}")
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// RepairJSON applies a sequence of textual repairs to near-JSON text:
// smart-quote and single-quote normalization, control character removal,
// unquoted key quoting, trailing comma removal, and closing of unbalanced
// braces and brackets.
func RepairJSON(s string) string {
	// Normalize typographic quotes before structural repairs.
	r := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	s = r.Replace(s)

	s = controlCharsRE.ReplaceAllString(s, " ")
	s = replaceSingleQuotes(s)
	s = unquotedKeyRE.ReplaceAllString(s, `$1"$2":`)
	s = closeUnbalanced(s)
	s = trailingComma.ReplaceAllString(s, "$1")

	return s
}

// replaceSingleQuotes converts single-quoted strings to double-quoted ones,
// leaving apostrophes inside double-quoted strings alone.
func replaceSingleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (inDouble || inSingle):
			b.WriteByte(c)
			i++
			b.WriteByte(s[i])
		case c == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte(c)
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte('"')
		case c == '"' && inSingle:
			// Escape a literal double quote inside a single-quoted string.
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// closeUnbalanced appends the closers a truncated object is missing.
func closeUnbalanced(s string) string {
	var stack []byte
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && inString:
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

func tryUnmarshal(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}

// scrapePairs falls back to regex extraction of "key": "value" pairs.
func scrapePairs(s string) map[string]any {
	matches := pairRE.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	obj := make(map[string]any, len(matches))
	for _, m := range matches {
		key, val := m[1], m[2]
		if _, ok := obj[key]; ok {
			continue
		}
		if unescaped, err := unescapeJSONString(val); err == nil {
			obj[key] = unescaped
		} else {
			obj[key] = val
		}
	}
	return obj
}

func unescapeJSONString(s string) (string, error) {
	var out string
	err := json.Unmarshal([]byte(`"`+s+`"`), &out)
	return out, err
}
