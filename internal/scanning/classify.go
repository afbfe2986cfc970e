package scanning

import "strings"

// categoryRules is tested in declaration order; the first category with a
// keyword hit wins, so a name containing both "milk" and "chicken" is dairy.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryDairy, []string{"milk", "cheese", "yogurt", "butter", "cream"}},
	{CategoryMeat, []string{"chicken", "beef", "pork", "meat", "fish", "salmon"}},
	{CategoryProduce, []string{"apple", "banana", "orange", "vegetable", "fruit", "lettuce", "tomato", "potato"}},
	{CategoryBakery, []string{"bread", "bun", "cake", "pastry", "bagel"}},
	{CategoryFrozen, []string{"frozen", "ice cream"}},
	{CategoryBeverages, []string{"juice", "soda", "water", "drink", "tea", "coffee"}},
	{CategorySnacks, []string{"chips", "cookie", "snack", "candy", "chocolate"}},
	{CategoryHousehold, []string{"detergent", "soap", "cleaner", "paper", "tissue"}},
	{CategoryPersonalCare, []string{"shampoo", "toothpaste", "deodorant"}},
}

// Classify assigns a category to an item based on keyword rules over its
// name. The barcode is part of the contract for future rule sets but is not
// consulted today.
func Classify(itemName, barcode string) Category {
	if itemName == "" {
		return CategoryOther
	}

	name := strings.ToLower(itemName)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category
			}
		}
	}

	return CategoryOther
}
