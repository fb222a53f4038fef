package catalog

import (
	constants "github.com/CodeAndHammer/foodle/internal/constants"
	models "github.com/CodeAndHammer/foodle/internal/models"
)

// DefaultRecipes is the built-in catalog used when no recipes file is given.
func DefaultRecipes() []models.Recipe {
	return []models.Recipe{
		{
			ID:          "1",
			Name:        "Margherita Pizza",
			Icon:        "🍕",
			Ingredients: []string{"flour", "tomato", "mozzarella", "basil", "olive oil"},
			Difficulty:  constants.DifficultyMedium,
			Category:    "Italian",
			Description: "Classic Italian pizza with fresh ingredients",
		},
		{
			ID:          "2",
			Name:        "Chocolate Chip Cookies",
			Icon:        "🍪",
			Ingredients: []string{"flour", "butter", "sugar", "eggs", "chocolate chips", "vanilla"},
			Difficulty:  constants.DifficultyEasy,
			Category:    "Dessert",
			Description: "Soft and chewy chocolate chip cookies",
		},
		{
			ID:          "3",
			Name:        "Caesar Salad",
			Icon:        "🥗",
			Ingredients: []string{"lettuce", "parmesan", "croutons", "lemon", "garlic", "anchovies"},
			Difficulty:  constants.DifficultyEasy,
			Category:    "Salad",
			Description: "Fresh and tangy Caesar salad",
		},
		{
			ID:          "4",
			Name:        "Beef Tacos",
			Icon:        "🌮",
			Ingredients: []string{"beef", "tortillas", "onion", "tomato", "lettuce", "cheese", "salsa"},
			Difficulty:  constants.DifficultyMedium,
			Category:    "Mexican",
			Description: "Delicious beef tacos with fresh toppings",
		},
		{
			ID:          "5",
			Name:        "Chicken Curry",
			Icon:        "🍛",
			Ingredients: []string{"chicken", "onion", "garlic", "ginger", "coconut milk", "curry powder", "rice"},
			Difficulty:  constants.DifficultyHard,
			Category:    "Indian",
			Description: "Spicy and aromatic chicken curry",
		},
		{
			ID:          "6",
			Name:        "Pancakes",
			Icon:        "🥞",
			Ingredients: []string{"flour", "milk", "eggs", "butter", "sugar", "baking powder"},
			Difficulty:  constants.DifficultyEasy,
			Category:    "Breakfast",
			Description: "Fluffy and delicious pancakes",
		},
		{
			ID:          "7",
			Name:        "Sushi Roll",
			Icon:        "🍣",
			Ingredients: []string{"rice", "nori", "salmon", "cucumber", "avocado", "wasabi"},
			Difficulty:  constants.DifficultyHard,
			Category:    "Japanese",
			Description: "Fresh and healthy sushi roll",
		},
		{
			ID:          "8",
			Name:        "Spaghetti Carbonara",
			Icon:        "🍝",
			Ingredients: []string{"pasta", "eggs", "bacon", "parmesan", "black pepper", "garlic"},
			Difficulty:  constants.DifficultyMedium,
			Category:    "Italian",
			Description: "Creamy and delicious carbonara",
		},
		{
			ID:          "9",
			Name:        "Chocolate Cake",
			Icon:        "🍰",
			Ingredients: []string{"flour", "cocoa", "sugar", "eggs", "milk", "butter", "vanilla", "baking powder"},
			Difficulty:  constants.DifficultyMedium,
			Category:    "Dessert",
			Description: "Rich and moist chocolate cake",
		},
		{
			ID:          "10",
			Name:        "Greek Salad",
			Icon:        "🥙",
			Ingredients: []string{"cucumber", "tomato", "olives", "feta", "onion", "olive oil"},
			Difficulty:  constants.DifficultyEasy,
			Category:    "Mediterranean",
			Description: "Fresh and healthy Greek salad",
		},
	}
}
