// Package grocery guesses a shopping category from an item name.
package grocery

import "strings"

type rule struct {
	category string
	// phrases are matched as substrings of the whole name, before any word.
	phrases []string
	// words are matched against individual words, singular or plural.
	words []string
}

// Rules are checked in order; Snacks precedes Pantry so "granola bar" wins
// over "granola".
var rules = []rule{
	{
		category: "Snacks",
		phrases:  []string{"granola bar", "trail mix", "fruit snack"},
		words:    []string{"chip", "cracker", "cookie", "popcorn", "pretzel", "candy", "chocolate", "snack"},
	},
	{
		category: "Frozen",
		phrases:  []string{"ice cream"},
		words:    []string{"frozen", "popsicle"},
	},
	{
		category: "Beverages",
		phrases:  []string{"orange juice", "apple juice", "sparkling water"},
		words:    []string{"coffee", "tea", "juice", "soda", "water", "beer", "wine", "drink"},
	},
	{
		category: "Household",
		phrases:  []string{"paper towel", "toilet paper", "trash bag", "dish soap", "plastic wrap", "light bulb"},
		words:    []string{"detergent", "laundry", "cleaner", "sponge", "foil", "battery", "batteries"},
	},
	{
		category: "Personal Care",
		phrases:  []string{"body wash"},
		words:    []string{"shampoo", "conditioner", "toothpaste", "toothbrush", "deodorant", "lotion", "sunscreen", "razor", "tissue"},
	},
	{
		category: "Pantry",
		phrases:  []string{"peanut butter", "olive oil", "soy sauce", "pasta sauce", "maple syrup"},
		words:    []string{"rice", "pasta", "noodle", "flour", "sugar", "cereal", "oatmeal", "granola", "bean", "lentil", "soup", "broth", "spice", "sauce", "salt"},
	},
	{
		category: "Dairy",
		phrases:  []string{"cream cheese", "sour cream"},
		words:    []string{"milk", "cheese", "yogurt", "butter", "cream", "egg"},
	},
	{
		category: "Meat & Seafood",
		phrases:  []string{"ground beef"},
		words:    []string{"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "salmon", "tuna", "shrimp", "fish", "steak"},
	},
	{
		category: "Bakery",
		words: []string{"bread", "bagel", "muffin", "croissant", "tortilla", "bun", "roll", "baguette"},
	},
	{
		category: "Produce",
		words: []string{
			"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato", "tomatoes", "potato", "potatoes",
			"onion", "garlic", "lettuce", "spinach", "kale", "broccoli", "carrot", "celery", "cucumber",
			"pepper", "mushroom", "berry", "berries", "grape", "strawberry", "strawberries",
		},
	},
}

var byWord = func() map[string]string {
	m := make(map[string]string)
	for _, r := range rules {
		for _, w := range r.words {
			if _, taken := m[w]; !taken {
				m[w] = r.category
			}
		}
	}
	return m
}()

// Suggest returns a likely category for an item name, or "" when nothing
// matches. Callers decide whether to use it; it is never applied implicitly.
func Suggest(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return ""
	}

	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(name, p) {
				return r.category
			}
		}
	}

	// Earlier words are usually modifiers ("chicken soup" is soup), so scan
	// from the last word backwards.
	words := strings.FieldsFunc(name, func(c rune) bool {
		return !(c >= 'a' && c <= 'z') && c != '-'
	})
	for i := len(words) - 1; i >= 0; i-- {
		if cat := lookupWord(words[i]); cat != "" {
			return cat
		}
	}
	return ""
}

func lookupWord(w string) string {
	if cat, ok := byWord[w]; ok {
		return cat
	}
	if singular, ok := strings.CutSuffix(w, "s"); ok {
		return byWord[singular]
	}
	return ""
}
