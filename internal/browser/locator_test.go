// File: internal/browser/locator_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Strategy Translation Tests --

func TestLocatorQuery(t *testing.T) {
	cases := []struct {
		name     string
		locator  Locator
		wantExpr string
		wantXP   bool
	}{
		{"id", Locator{Strategy: ByID, Value: "login"}, "#login", false},
		{"name", Locator{Strategy: ByName, Value: "q"}, `[name="q"]`, false},
		{"tag name", Locator{Strategy: ByTagName, Value: "button"}, "button", false},
		{"class name", Locator{Strategy: ByClassName, Value: "btn-primary"}, ".btn-primary", false},
		{"css selector", Locator{Strategy: ByCSSSelector, Value: "div.card > a"}, "div.card > a", false},
		{"xpath", Locator{Strategy: ByXPath, Value: "//div[@id='x']"}, "//div[@id='x']", true},
		{"link text", Locator{Strategy: ByLinkText, Value: "Sign in"},
			"//a[normalize-space(text())='Sign in']", true},
		{"partial link text", Locator{Strategy: ByPartialLinkText, Value: "Sign"},
			"//a[contains(text(),'Sign')]", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expr, opt, err := tc.locator.query()
			require.NoError(t, err)
			assert.Equal(t, tc.wantExpr, expr)
			assert.Equal(t, tc.wantXP, tc.locator.usesXPath())
			assert.NotNil(t, opt)
		})
	}
}

func TestLocatorValidation(t *testing.T) {
	t.Run("empty value is invalid", func(t *testing.T) {
		l := Locator{Strategy: ByID, Value: ""}
		assert.Error(t, l.validate())
	})

	t.Run("unknown strategy is invalid", func(t *testing.T) {
		l := Locator{Strategy: "telepathy", Value: "x"}
		err := l.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telepathy")
	})
}

// -- Attribute Desugaring Tests --

func TestByAttribute(t *testing.T) {
	t.Run("desugars to the explicit xpath form", func(t *testing.T) {
		sugar := ByAttribute("data-test", "submit")
		explicit := Locator{Strategy: ByXPath, Value: "//*[@data-test='submit']"}

		sugarExpr, _, err := sugar.query()
		require.NoError(t, err)
		explicitExpr, _, err := explicit.query()
		require.NoError(t, err)
		assert.Equal(t, explicitExpr, sugarExpr)
	})

	t.Run("values with apostrophes are quoted safely", func(t *testing.T) {
		l := ByAttribute("title", "it's here")
		expr, _, err := l.query()
		require.NoError(t, err)
		assert.Equal(t, `//*[@title="it's here"]`, expr)
	})

	t.Run("values with both quote kinds fall back to concat", func(t *testing.T) {
		l := ByAttribute("title", `it's "here"`)
		expr, _, err := l.query()
		require.NoError(t, err)
		assert.Contains(t, expr, `concat('it',"'",'s "here"')`)
	})

	t.Run("empty attribute name fails validation", func(t *testing.T) {
		l := ByAttribute("", "42")
		err := l.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed attribute name")

		_, _, err = l.query()
		assert.Error(t, err)
	})

	t.Run("attribute name with metacharacters fails validation", func(t *testing.T) {
		for _, attr := range []string{"data-id']|//*", `a"b`, "a b", "@id", "1st"} {
			l := ByAttribute(attr, "42")
			assert.Error(t, l.validate(), "attribute %q should be rejected", attr)
		}
	})

	t.Run("empty value fails validation", func(t *testing.T) {
		l := ByAttribute("name", "")
		err := l.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty value")
	})
}

func TestXpathLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", xpathLiteral("plain"))
	assert.Equal(t, `"don't"`, xpathLiteral("don't"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `concat('a',"'",'b"c')`, xpathLiteral(`a'b"c`))
}

func TestLocatorString(t *testing.T) {
	l := Locator{Strategy: ByID, Value: "login"}
	assert.Equal(t, "id=login", l.String())

	l.Alias = "login form"
	assert.Equal(t, "login form", l.String())
}

func TestCSSEscape(t *testing.T) {
	assert.Equal(t, "simple-id_1", cssEscape("simple-id_1"))
	assert.Equal(t, `a\.b`, cssEscape("a.b"))
	assert.Equal(t, `ns\:field`, cssEscape("ns:field"))
}
