package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	paramFinder = regexp.MustCompile(`(?m):\w+`)
	spaceFinder = regexp.MustCompile(`(?m)\s^\s+`)
)

// Prepare rewrites ":name" placeholders into the positional style the
// database expects, expanding slice values into one placeholder per element.
// Placeholders without a matching parameter are left as they are. Only line
// breaks and their indentation are collapsed, quoted identifiers keep their
// spacing.
func Prepare(statement string, parameters map[string]any, numberedParams bool) (string, []any, error) {
	statement = strings.TrimSpace(spaceFinder.ReplaceAllString(statement, " "))

	args := []any{}
	counter := 0
	paramBuilder := func() string {
		counter++
		if !numberedParams {
			return "?"
		}

		return fmt.Sprintf("$%d", counter)
	}

	newStatement := paramFinder.ReplaceAllStringFunc(statement, func(s string) string {
		parameterValue, found := parameters[s]
		if !found {
			return s
		}

		if IsList(parameterValue) {
			localArgs := []string{}

			valueOf := reflect.ValueOf(parameterValue)
			for i := range valueOf.Len() {
				localArgs = append(localArgs, paramBuilder())
				args = append(args, valueOf.Index(i).Interface())
			}

			return strings.Join(localArgs, ", ")
		}

		args = append(args, parameterValue)

		return paramBuilder()
	})

	return newStatement, args, nil
}

// IsList reports whether value is a slice or array other than raw bytes.
func IsList(value any) bool {
	if value == nil {
		return false
	}

	if _, isBytes := value.([]byte); isBytes {
		return false
	}

	kind := reflect.TypeOf(value).Kind()

	return kind == reflect.Slice || kind == reflect.Array
}
