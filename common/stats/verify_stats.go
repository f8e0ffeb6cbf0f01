package stats

import (
	"fmt"
	"strings"
	"testing"
)

/*
Utilities for validating the stats registry contents from tests.
*/

// RuleChecker compares the 'got' value rendered by the registry against an expected value.
type RuleChecker struct {
	name    string
	checker func(got, expected interface{}) bool
}

func nilCheck(a, b interface{}) (nilFound, eqValues bool) {
	if a == nil && b == nil {
		return true, true
	}
	if a == nil || b == nil {
		return true, false
	}
	return false, false
}

var FloatEqTest = RuleChecker{name: "floatEqTest", checker: func(a, b interface{}) bool {
	if nilFound, eq := nilCheck(a, b); nilFound {
		return eq
	}
	return a.(float64) == b.(float64)
}}

var FloatGTTest = RuleChecker{name: "floatGTTest", checker: func(a, b interface{}) bool {
	if nilFound, eq := nilCheck(a, b); nilFound {
		return eq
	}
	return a.(float64) > b.(float64)
}}

// Expects an int64 rendered value and an int expectation.
var Int64EqTest = RuleChecker{name: "int64EqTest", checker: func(a, b interface{}) bool {
	if nilFound, eq := nilCheck(a, b); nilFound {
		return eq
	}
	return a.(int64) == int64(b.(int))
}}

var DoesNotExistTest = RuleChecker{name: "doesNotExistTest", checker: func(a, b interface{}) bool {
	return a == nil
}}

// Rule pairs a checker with the value it is checked against.
type Rule struct {
	Checker RuleChecker
	Value   interface{}
}

// VerifyStats checks every key in contains against the finagle registry's rendered values.
func VerifyStats(tag string, registry StatsRegistry, t *testing.T, contains map[string]Rule) {
	finagle, ok := registry.(*finagleStatsRegistry)
	if !ok {
		t.Errorf("%s: VerifyStats requires a finagle registry, got %T", tag, registry)
		return
	}
	rendered := finagle.MarshalAll()

	var failures []string
	for key, rule := range contains {
		got := rendered[key]
		if rule.Checker.checker(got, rule.Value) {
			continue
		}
		if rule.Checker.name == DoesNotExistTest.name {
			failures = append(failures, fmt.Sprintf("%s: found stat entry when there should not be one", key))
		} else {
			failures = append(failures, fmt.Sprintf("%s: got %v, expected to pass %s with %v", key, got, rule.Checker.name, rule.Value))
		}
	}
	if len(failures) > 0 {
		pretty, _ := finagle.MarshalJSONPretty()
		t.Errorf("%s: stats registry error:\n%s\n%s", tag, strings.Join(failures, "\n"), pretty)
	}
}
