package sim

import (
	"fmt"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name does not follow the naming convention.
//  1. It must be organized in a hierarchical structure separated by dots. For
//     example, "A.B.C" is valid, but "A.B.C." is not.
//  2. Individual elements must not be empty.
//  3. Individual elements must be capitalized CamelCase, without underscores,
//     dashes, or quotes.
//  4. Elements in a series use square-bracket notation, e.g., "Cache[2]".
func NameMustBeValid(name string) {
	for _, elem := range strings.Split(name, ".") {
		if err := nameElementError(elem); err != "" {
			panic(fmt.Sprintf("name %q is not valid: %s", name, err))
		}
	}
}

func nameElementError(elem string) string {
	base, index, hasIndex := strings.Cut(elem, "[")

	if base == "" {
		return "name element must not be empty"
	}

	if strings.ContainsAny(base, "_\"'-] ") {
		return "name element must only contain letters and digits"
	}

	if base[0] < 'A' || base[0] > 'Z' {
		return "name element must start with a capital letter"
	}

	if !hasIndex {
		return ""
	}

	for _, part := range strings.Split(index, "[") {
		digits, ok := strings.CutSuffix(part, "]")
		if !ok || digits == "" || strings.Trim(digits, "0123456789") != "" {
			return "name index must be an integer in brackets"
		}
	}

	return ""
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name, and
// an index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, fmt.Sprintf("%s[%d]", elementName, index))
}
