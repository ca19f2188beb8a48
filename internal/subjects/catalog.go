// ABOUTME: Fixed catalog of study subjects users can select
// ABOUTME: The catalog is the single source of truth for valid subject names

package subjects

// catalog is the fixed, ordered list of subjects offered in the selection flow.
var catalog = []string{
	"Математика",
	"Физика",
	"Химия",
	"Биология",
	"История",
	"Информатика",
	"Английский язык",
	"Литература",
}

// Catalog returns the ordered list of known subjects. The returned slice is a
// copy; callers may not mutate the catalog.
func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// Known reports whether subject is part of the fixed catalog.
func Known(subject string) bool {
	for _, s := range catalog {
		if s == subject {
			return true
		}
	}
	return false
}
