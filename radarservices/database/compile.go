package database

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/lunagic/radar/radar"
	"github.com/lunagic/radar/radarservices/database/internal/utils"
	"github.com/lunagic/radar/radartools"
)

func compile(dialect dialect, query radar.Query) (radar.Statement, error) {
	if len(query.Insert) > 0 {
		return compileInsert(dialect, query)
	}

	return compileSelect(dialect, query)
}

func compileInsert(dialect dialect, query radar.Query) (radar.Statement, error) {
	schema, table := query.Table()
	if table == "" {
		return radar.Statement{}, ErrNoTable
	}

	columns := slices.Sorted(maps.Keys(query.Insert))
	parameters := map[string]any{}
	placeholders := []string{}

	for i, column := range columns {
		value, err := insertValue(query.Insert[column])
		if err != nil {
			return radar.Statement{}, err
		}

		placeholder := fmt.Sprintf(":insert_%d", i)
		placeholders = append(placeholders, placeholder)
		parameters[placeholder] = value
	}

	return radar.Statement{
		Query: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			qualifiedTable(dialect, schema, table),
			strings.Join(radartools.Map(columns, dialect.quote), ", "),
			strings.Join(placeholders, ", "),
		),
		Parameters: parameters,
	}, nil
}

func compileSelect(dialect dialect, query radar.Query) (radar.Statement, error) {
	if query.From == nil || query.From.Table == "" {
		return radar.Statement{}, ErrNoTable
	}

	selected := []string{}
	if query.Select != nil && !query.Select.All {
		selected = radartools.Filter(query.Select.Columns, func(column string) bool {
			return column != ""
		})
	}

	columns := radar.Wildcard
	if len(selected) > 0 {
		columns = strings.Join(radartools.Map(selected, func(column string) string {
			if column == radar.Wildcard {
				return column
			}

			return dialect.quote(column)
		}), ", ")
	}

	statement := radar.Statement{
		Query: fmt.Sprintf(
			"SELECT %s FROM %s",
			columns,
			qualifiedTable(dialect, query.From.Schema, query.From.Table),
		),
		Parameters: map[string]any{},
	}

	where, err := compileWhere(dialect, query.Where, statement.Parameters)
	if err != nil {
		return radar.Statement{}, err
	}

	if where != "" {
		statement.Query += " WHERE " + where
	}

	if query.Limit != nil {
		if *query.Limit < 0 {
			return radar.Statement{}, ErrInvalidLimit
		}

		statement.Query += fmt.Sprintf(" LIMIT %d", *query.Limit)
	}

	return statement, nil
}

func compileWhere(dialect dialect, criteria map[string]any, parameters map[string]any) (string, error) {
	bind := func(value any) string {
		placeholder := fmt.Sprintf(":where_%d", len(parameters))
		parameters[placeholder] = value

		return placeholder
	}

	conditions := []string{}
	for _, column := range slices.Sorted(maps.Keys(criteria)) {
		value := criteria[column]

		operators, isOperatorMap := asOperatorMap(value)
		if !isOperatorMap {
			clause, err := condition(dialect.quote(column), "=", value, bind)
			if err != nil {
				return "", err
			}

			conditions = append(conditions, clause)
			continue
		}

		for _, operator := range slices.Sorted(maps.Keys(operators)) {
			normalized, err := normalizeOperator(operator)
			if err != nil {
				return "", err
			}

			clause, err := condition(dialect.quote(column), normalized, operators[operator], bind)
			if err != nil {
				return "", err
			}

			conditions = append(conditions, clause)
		}
	}

	return strings.Join(conditions, " AND "), nil
}

func condition(column string, operator string, value any, bind func(value any) string) (string, error) {
	if value == nil {
		switch operator {
		case "=", "IN":
			return column + " IS NULL", nil
		case "!=", "NOT IN":
			return column + " IS NOT NULL", nil
		}

		return "", fmt.Errorf("%w: %s against NULL", ErrUnsupportedOperator, operator)
	}

	if utils.IsList(value) {
		switch operator {
		case "=", "IN":
			operator = "IN"
		case "!=", "NOT IN":
			operator = "NOT IN"
		default:
			return "", fmt.Errorf("%w: %s against a list", ErrUnsupportedOperator, operator)
		}

		// An empty list matches nothing, or everything when negated
		if reflect.ValueOf(value).Len() == 0 {
			if operator == "IN" {
				return "1 = 0", nil
			}

			return "1 = 1", nil
		}

		return fmt.Sprintf("%s %s (%s)", column, operator, bind(value)), nil
	}

	switch operator {
	case "IN":
		operator = "="
	case "NOT IN":
		operator = "!="
	}

	return fmt.Sprintf("%s %s %s", column, operator, bind(value)), nil
}

func normalizeOperator(operator string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(operator), " "))
	switch normalized {
	case "=", "!=", ">", ">=", "<", "<=", "LIKE", "IN", "NOT IN":
		return normalized, nil
	case "<>":
		return "!=", nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, operator)
}

func asOperatorMap(value any) (map[string]any, bool) {
	if operators, ok := value.(map[string]any); ok {
		return operators, true
	}

	if value == nil {
		return nil, false
	}

	valueOf := reflect.ValueOf(value)
	if valueOf.Kind() != reflect.Map || valueOf.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	operators := map[string]any{}
	iterator := valueOf.MapRange()
	for iterator.Next() {
		operators[iterator.Key().String()] = iterator.Value().Interface()
	}

	return operators, true
}

// insertValue JSON encodes nested structures so they fit in a single column.
func insertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch value.(type) {
	case []byte, time.Time:
		return value, nil
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, ErrUnsupportedType{Type: fmt.Sprintf("%T", value)}
		}

		return string(encoded), nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, ErrUnsupportedType{Type: fmt.Sprintf("%T", value)}
	}

	return value, nil
}

func qualifiedTable(dialect dialect, schema string, table string) string {
	if schema == "" {
		return dialect.quote(table)
	}

	return dialect.quote(schema) + "." + dialect.quote(table)
}
