package core

import (
	"fmt"
	"strings"
)

// ToPointer resolves a PathTemplate to a concrete RFC 6901 pointer
// against the given working context, per spec §4.3.
//
// Every "{expr}" token's inner text is trimmed and evaluated as a
// dotted expression against ctx; the result is stringified and
// segment-escaped ('~' -> "~0" first, then '/' -> "~1") before being
// substituted back into the template. Escaping applies only to the
// substituted text, never to the surrounding template, so literal '/'
// characters the plan author typed remain pointer separators.
func ToPointer(template string, ctx map[string]interface{}) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		expr := strings.TrimSpace(rest[start+1 : end])
		val := dottedLookup(ctx, expr)
		b.WriteString(escapeSegment(stringify(val)))
		rest = rest[end+1:]
	}

	out := b.String()
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	return out
}

// escapeSegment applies RFC 6901 segment escaping. The '~' -> "~0"
// substitution must happen before '/' -> "~1", or a literal input '/'
// that becomes "~1" would have its '~' re-escaped into "~01".
func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// stringify converts a resolved token value to its textual form for
// pointer substitution. nil becomes the empty string, per spec §4.3's
// "nullish at any step yields the empty string".
func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Interpolate does plain string-level "{expr}" token replacement with
// no pointer escaping, for message/log templating. Distinct from
// ToPointer per spec §6.
func Interpolate(template string, ctx map[string]interface{}) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		expr := strings.TrimSpace(rest[start+1 : end])
		b.WriteString(stringify(dottedLookup(ctx, expr)))
		rest = rest[end+1:]
	}
	return b.String()
}
