package driver

import (
	"fmt"
	"strings"

	"github.com/quoteforge/quoteforge/internal/browser"
)

// Strategy is one independent matching rule for a logical target. Each
// strategy must be sufficient on its own; no strategy may assume state left
// by a previous one.
type Strategy struct {
	Name     string
	Selector string
}

type targetKind int

const (
	byText targetKind = iota
	byAttribute
	byRole
	bySelector
	resolved
)

// Target is a logical UI target: what to act on, not how to find it. The
// how is an ordered strategy chain, re-evaluated lazily on every use so a
// handle is never cached across navigations.
type Target struct {
	kind  targetKind
	label string

	text        string
	attr, value string
	role, name  string
	selector    string

	handle browser.Element
	chain  []Strategy
}

// Text targets the element labeled or captioned with text. The default
// chain degrades from exact text to fuzzy and structural matches so markup
// churn weakens resolution gracefully instead of breaking it.
func Text(text string) Target {
	return Target{kind: byText, text: text, label: fmt.Sprintf("text %q", text)}
}

// Attribute targets the element carrying attr=value
func Attribute(attr, value string) Target {
	return Target{kind: byAttribute, attr: attr, value: value,
		label: fmt.Sprintf("[%s=%q]", attr, value)}
}

// Role targets by ARIA role and accessible name
func Role(role, name string) Target {
	return Target{kind: byRole, role: role, name: name,
		label: fmt.Sprintf("role %s %q", role, name)}
}

// Selector targets a raw engine selector with a single-strategy chain
func Selector(selector string) Target {
	return Target{kind: bySelector, selector: selector, label: selector}
}

// Resolved wraps an already-located handle. Resolution returns it as-is;
// the caller owns staleness.
func Resolved(label string, el browser.Element) Target {
	return Target{kind: resolved, handle: el, label: label}
}

// WithChain replaces the default strategy chain
func (t Target) WithChain(chain ...Strategy) Target {
	t.chain = chain
	return t
}

// String returns the display label
func (t Target) String() string {
	return t.label
}

// IsResolved reports whether the target already holds a handle
func (t Target) IsResolved() bool {
	return t.kind == resolved
}

// Strategies returns the ordered chain, most specific first
func (t Target) Strategies() []Strategy {
	if len(t.chain) > 0 {
		return t.chain
	}

	switch t.kind {
	case byText:
		q := escapeText(t.text)
		return []Strategy{
			{Name: "exact-text", Selector: fmt.Sprintf(`text="%s"`, q)},
			{Name: "loose-text", Selector: fmt.Sprintf(`text=%s`, t.text)},
			{Name: "aria-label", Selector: fmt.Sprintf(`[aria-label="%s"]`, q)},
			// Innermost node containing the text, climbing up from the
			// text node rather than matching every ancestor.
			{Name: "text-ancestor", Selector: fmt.Sprintf(
				`xpath=(//*[contains(normalize-space(.), "%s")][not(.//*[contains(normalize-space(.), "%s")])])[1]`, q, q)},
		}
	case byAttribute:
		return []Strategy{
			{Name: "attr-exact", Selector: fmt.Sprintf(`[%s="%s"]`, t.attr, t.value)},
			{Name: "attr-contains", Selector: fmt.Sprintf(`[%s*="%s"]`, t.attr, t.value)},
		}
	case byRole:
		return []Strategy{
			{Name: "role-name", Selector: fmt.Sprintf(`role=%s[name="%s"]`, t.role, escapeText(t.name))},
			{Name: "role-text", Selector: fmt.Sprintf(`%s >> text=%s`, roleTag(t.role), t.name)},
		}
	case bySelector:
		return []Strategy{
			{Name: "selector", Selector: t.selector},
		}
	default:
		return nil
	}
}

func escapeText(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// roleTag maps common ARIA roles to their usual element tag for the
// fallback strategy
func roleTag(role string) string {
	switch role {
	case "button":
		return "button, [role=button]"
	case "link":
		return "a"
	case "textbox":
		return "input, textarea"
	default:
		return fmt.Sprintf("[role=%s]", role)
	}
}
