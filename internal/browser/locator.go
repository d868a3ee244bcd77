// File: internal/browser/locator.go
// Locator strategies and their translation into chromedp queries. A Locator is
// a pure value: validation and translation never touch the browser, so a
// malformed locator fails fast before any protocol traffic.
package browser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chromedp/chromedp"
)

// Strategy names one element lookup mechanism.
type Strategy string

const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByTagName         Strategy = "tag-name"
	ByClassName       Strategy = "class-name"
	ByCSSSelector     Strategy = "css-selector"
	ByXPath           Strategy = "xpath"
	ByLinkText        Strategy = "link-text"
	ByPartialLinkText Strategy = "partial-link-text"
)

// Locator pairs a strategy with its value. Alias, when set, is the human
// label used in action logs instead of the raw strategy/value pair.
type Locator struct {
	Strategy Strategy
	Value    string
	Alias    string

	// err marks a locator built from malformed inputs. Set only by
	// constructors; validate surfaces it as invalid-locator.
	err error
}

// attrNameRE matches syntactically valid HTML attribute names. Anything else
// would change the meaning of the generated XPath expression.
var attrNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// ByAttribute builds a locator matching any element carrying the given
// attribute value. It desugars to the XPath //*[@attr='value'] before
// resolution, so it behaves identically to the explicit form. A malformed
// attribute name or empty value is a caller bug: the locator fails fast with
// invalid-locator instead of timing out against a page it can never match.
func ByAttribute(attr, value string) Locator {
	if !attrNameRE.MatchString(attr) {
		return Locator{
			Strategy: ByXPath,
			err:      fmt.Errorf("malformed attribute name %q", attr),
		}
	}
	if value == "" {
		return Locator{
			Strategy: ByXPath,
			err:      fmt.Errorf("attribute locator for %q has an empty value", attr),
		}
	}
	return Locator{
		Strategy: ByXPath,
		Value:    fmt.Sprintf("//*[@%s=%s]", attr, xpathLiteral(value)),
	}
}

// String renders the locator for logs.
func (l Locator) String() string {
	if l.Alias != "" {
		return l.Alias
	}
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// validate reports whether the locator is well formed. Failures here are
// caller bugs and short-circuit resolution with invalid-locator.
func (l Locator) validate() error {
	if l.err != nil {
		return l.err
	}
	if l.Value == "" {
		return fmt.Errorf("locator value must not be empty")
	}
	switch l.Strategy {
	case ByID, ByName, ByTagName, ByClassName, ByCSSSelector, ByXPath, ByLinkText, ByPartialLinkText:
		return nil
	default:
		return fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
}

// query translates the locator into a chromedp selector expression plus the
// query option that selects the matching engine. XPath-backed strategies use
// BySearch; the rest compile to CSS and use ByQueryAll.
func (l Locator) query() (expr string, opt chromedp.QueryOption, err error) {
	if err := l.validate(); err != nil {
		return "", nil, err
	}
	switch l.Strategy {
	case ByID:
		return "#" + cssEscape(l.Value), chromedp.ByQueryAll, nil
	case ByName:
		return fmt.Sprintf("[name=%q]", l.Value), chromedp.ByQueryAll, nil
	case ByTagName:
		return l.Value, chromedp.ByQueryAll, nil
	case ByClassName:
		return "." + cssEscape(l.Value), chromedp.ByQueryAll, nil
	case ByCSSSelector:
		return l.Value, chromedp.ByQueryAll, nil
	case ByXPath:
		return l.Value, chromedp.BySearch, nil
	case ByLinkText:
		return fmt.Sprintf("//a[normalize-space(text())=%s]", xpathLiteral(l.Value)), chromedp.BySearch, nil
	case ByPartialLinkText:
		return fmt.Sprintf("//a[contains(text(),%s)]", xpathLiteral(l.Value)), chromedp.BySearch, nil
	default:
		return "", nil, fmt.Errorf("unknown locator strategy %q", l.Strategy)
	}
}

// usesXPath reports whether the strategy resolves through the XPath engine.
func (l Locator) usesXPath() bool {
	switch l.Strategy {
	case ByXPath, ByLinkText, ByPartialLinkText:
		return true
	}
	return false
}

// xpathLiteral quotes a string for embedding in an XPath expression. Values
// containing both quote characters fall back to concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// cssEscape escapes the characters that would change the meaning of an id or
// class token inside a CSS selector.
func cssEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
