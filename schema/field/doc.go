// Package field provides fluent builders for defining the fields of an
// auth-schema model.
//
// The seven logical field types form a closed set (spec.md §3):
//
//	field.String("email")
//	field.Number("age")
//	field.Bool("email_verified")
//	field.Date("created_at")
//	field.JSON("metadata")
//	field.StringSlice("roles")
//	field.NumberSlice("scores")
//
// # Field options
//
//	field.String("email").
//	    Unique().
//	    Optional().
//	    Default("unknown")
//
//	field.Date("updated_at").
//	    Immutable().
//	    OnUpdate(func() any { return time.Now() })
//
// # References
//
//	field.String("user_id").References("user", field.OnDeleteRef("cascade"))
//
// # Transform hooks
//
//	field.String("email").
//	    TransformInput(func(v any) any { return strings.ToLower(v.(string)) }).
//	    TransformOutput(func(v any) any { return v })
package field
