package hostapi

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// Translations maps keyset → language → key → text.
type Translations map[string]map[string]map[string]string

const fallbackLang = "en"

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// normalizeLang reduces a BCP 47 tag to its base language, "en" when it cannot be parsed.
func normalizeLang(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return fallbackLang
	}
	base, conf := tag.Base()
	if conf == language.No {
		return fallbackLang
	}
	return base.String()
}

// lookup finds key in the user language, then in English. ok is false when neither has it.
func (t Translations) lookup(keyset, lang, key string) (string, bool) {
	set, ok := t[keyset]
	if !ok {
		return "", false
	}
	for _, l := range []string{lang, fallbackLang} {
		if text, ok := set[l][key]; ok {
			return text, true
		}
	}
	return "", false
}

// interpolate replaces {{name}} with params[name]. Lists are joined with ", ". Unknown
// placeholders are left alone.
func interpolate(text string, params map[string]any) string {
	if len(params) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			return m
		}
		return paramText(v)
	})
}

func paramText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = paramText(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
