package core

// UnknownCategoryName labels spending whose category id no longer resolves.
const UnknownCategoryName = "Unknown"

// UncategorizedName labels a transaction row whose category id does not resolve.
const UncategorizedName = "Uncategorized"

// DefaultCategories returns the categories every new store starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food & Drinks", Icon: "utensils", Color: "#FF9F1C"},
		{ID: "transport", Name: "Transport", Icon: "bus", Color: "#2EC4B6"},
		{ID: "shopping", Name: "Shopping", Icon: "shopping-bag", Color: "#E71D36"},
		{ID: "entertainment", Name: "Entertainment", Icon: "film", Color: "#011627"},
		{ID: "bills", Name: "Bills & Utilities", Icon: "file-invoice", Color: "#6D10FF"},
		{ID: "health", Name: "Health", Icon: "heartbeat", Color: "#8AC926"},
		{ID: "salary", Name: "Salary", Icon: "money-bill-wave", Color: "#38A3A5"},
		{ID: "other", Name: "Other", Icon: "ellipsis-h", Color: "#7d7d7d"},
	}
}
