package schema

import "github.com/go-openapi/inflect"

// pluralize and singularize delegate to the pack's inflection library so
// usePlural physical names (and the registry's singular/literal lookup
// tie-break, spec.md §4.1) follow real English pluralization rules
// instead of a naive "+s" suffix.
func pluralize(name string) string {
	return inflect.Pluralize(name)
}

func singularize(name string) string {
	return inflect.Singularize(name)
}
