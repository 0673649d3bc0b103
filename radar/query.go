package radar

// Wildcard selects every column.
const Wildcard = "*"

// Query is the descriptor accumulated by a Builder. Every field is optional,
// a nil pointer or map means the clause was never set.
type Query struct {
	Select *Selection
	From   *Source
	Where  map[string]any
	Insert map[string]any
	Into   string
	Limit  *int
}

type Selection struct {
	All     bool
	Columns []string
}

// Source is either a plain table identifier or, once Structured, a table
// paired with a schema.
type Source struct {
	Table      string
	Schema     string
	Structured bool
}

// Clone returns a deep copy that shares nothing with the original.
func (query Query) Clone() Query {
	clone := Query{
		Where:  cloneMap(query.Where),
		Insert: cloneMap(query.Insert),
		Into:   query.Into,
	}

	if query.Select != nil {
		clone.Select = &Selection{
			All:     query.Select.All,
			Columns: append([]string(nil), query.Select.Columns...),
		}
	}

	if query.From != nil {
		from := *query.From
		clone.From = &from
	}

	if query.Limit != nil {
		limit := *query.Limit
		clone.Limit = &limit
	}

	return clone
}

// Table is the table the query targets, preferring Into over From.
func (query Query) Table() (schema string, table string) {
	if query.Into != "" {
		return "", query.Into
	}

	if query.From == nil {
		return "", ""
	}

	return query.From.Schema, query.From.Table
}
