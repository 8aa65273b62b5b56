package core

// Category is a fixed {name, display color} pair.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultCategory is applied when a draft leaves the category empty.
const DefaultCategory = "Other"

var categories = []Category{
	{Name: "Salary", Color: "#10b981"},
	{Name: "Food", Color: "#ef4444"},
	{Name: "Rent", Color: "#3b82f6"},
	{Name: "Transport", Color: "#f59e0b"},
	{Name: "Entertainment", Color: "#8b5cf6"},
	{Name: "Healthcare", Color: "#ec4899"},
	{Name: DefaultCategory, Color: "#64748b"},
}

// Categories returns the known categories in declared order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// LookupCategory finds a category by exact, case-sensitive name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
