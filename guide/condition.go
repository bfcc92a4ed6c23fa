package guide

import (
	"strings"

	"github.com/ossreview/depgate/common"
)

// Context carries the component attributes a rule condition can test.
// Pointer fields distinguish "explicitly false" from "not stated":
// a condition referencing an absent attribute evaluates false, it is
// not an error.
type Context struct {
	IsModified    *bool
	LinkType      string
	IsDistributed *bool
}

// condition grammar, expressed as a tiny tree instead of chained
// string matching:
//
//	condition   = "always" | test | conjunction | disjunction
//	conjunction = part { "&&" part }
//	disjunction = atom { "||" atom }
//	test        = attribute | "!" attribute | attribute "==" literal
//
// Known limitation, kept on purpose: "&&" is split before "||", so in
// a condition carrying both operators the "&&" acts as the outer
// operator ("a && b || c" reads as "a AND (b OR c)"). Intended
// precedence was never specified upstream, so this keeps the observed
// behavior instead of silently fixing it.
type expression interface {
	evaluate(context Context) bool
}

type alwaysTrue struct{}

func (alwaysTrue) evaluate(Context) bool {
	return true
}

type neverTrue struct {
	source string
}

func (neverTrue) evaluate(Context) bool {
	return false
}

type conjunction []expression

func (it conjunction) evaluate(context Context) bool {
	for _, part := range it {
		if !part.evaluate(context) {
			return false
		}
	}
	return true
}

type disjunction []expression

func (it disjunction) evaluate(context Context) bool {
	for _, part := range it {
		if part.evaluate(context) {
			return true
		}
	}
	return false
}

type booleanTest struct {
	attribute string
	expected  bool
}

func (it booleanTest) evaluate(context Context) bool {
	var actual *bool
	switch it.attribute {
	case "is_modified":
		actual = context.IsModified
	case "is_distributed":
		actual = context.IsDistributed
	}
	return actual != nil && *actual == it.expected
}

type linkTest struct {
	expected string
}

func (it linkTest) evaluate(context Context) bool {
	return context.LinkType == it.expected
}

// ParseCondition builds the expression tree for one condition string.
// Unrecognized conditions parse to a constant false with one warning.
func ParseCondition(source string) expression {
	return parseSplit(source, "&&", func(part string) expression {
		return parseSplit(part, "||", func(atom string) expression {
			return parseAtom(source, atom)
		})
	})
}

// Evaluate is the convenience form used by the provider.
func Evaluate(condition string, context Context) bool {
	return ParseCondition(condition).evaluate(context)
}

func parseSplit(source, operator string, inner func(string) expression) expression {
	parts := strings.Split(source, operator)
	if len(parts) == 1 {
		return inner(strings.TrimSpace(source))
	}
	var group []expression
	for _, part := range parts {
		group = append(group, inner(strings.TrimSpace(part)))
	}
	if operator == "&&" {
		return conjunction(group)
	}
	return disjunction(group)
}

func parseAtom(source, atom string) expression {
	if atom == "always" {
		return alwaysTrue{}
	}
	if negated, found := strings.CutPrefix(atom, "!"); found {
		attribute := strings.TrimSpace(negated)
		if isBooleanAttribute(attribute) {
			return booleanTest{attribute: attribute, expected: false}
		}
		return unknownCondition(source)
	}
	if left, right, found := strings.Cut(atom, "=="); found {
		attribute := strings.TrimSpace(left)
		literal := unquote(strings.TrimSpace(right))
		switch {
		case isBooleanAttribute(attribute) && literal == "true":
			return booleanTest{attribute: attribute, expected: true}
		case isBooleanAttribute(attribute) && literal == "false":
			return booleanTest{attribute: attribute, expected: false}
		case attribute == "link_type" && (literal == "static" || literal == "dynamic"):
			return linkTest{expected: literal}
		}
		return unknownCondition(source)
	}
	if isBooleanAttribute(atom) {
		return booleanTest{attribute: atom, expected: true}
	}
	return unknownCondition(source)
}

func isBooleanAttribute(name string) bool {
	return name == "is_modified" || name == "is_distributed"
}

func unquote(literal string) string {
	if len(literal) >= 2 {
		first, last := literal[0], literal[len(literal)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return literal[1 : len(literal)-1]
		}
	}
	return literal
}

func unknownCondition(source string) expression {
	common.Log("Warning: unknown condition: %s", source)
	return neverTrue{source: source}
}
