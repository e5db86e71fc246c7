package data

// Types names the kind of value a script produced.
type Types string

const (
	BOOL     Types = "bool"
	ERROR    Types = "error"
	FUNCTION Types = "function"
	HTML     Types = "html"
	INT      Types = "int"
	MAP      Types = "map"
	STRING   Types = "string"
	NONE     Types = "none"
	FLOAT    Types = "float"
	LIST     Types = "list"
)

// TypeOf maps a converted guest value onto Types.
func TypeOf(v any) Types {
	switch v.(type) {
	case nil:
		return NONE
	case bool:
		return BOOL
	case int, int32, int64, uint, uint32, uint64:
		return INT
	case float32, float64:
		return FLOAT
	case string:
		return STRING
	case map[string]any:
		return MAP
	case []any:
		return LIST
	case error:
		return ERROR
	default:
		return NONE
	}
}
