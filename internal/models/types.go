package models

import (
	"maps"
	"slices"
	"time"
)

type Recipe struct {
	ID              string   `json:"id" yaml:"id" validate:"required"`
	Name            string   `json:"name" yaml:"name" validate:"required"`
	Icon            string   `json:"icon" yaml:"icon"`
	Ingredients     []string `json:"ingredients" yaml:"ingredients" validate:"required,min=1,dive,required"`
	Difficulty      string   `json:"difficulty" yaml:"difficulty" validate:"required,oneof=easy medium hard"`
	Category        string   `json:"category" yaml:"category" validate:"required"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	Instructions    string   `json:"instructions,omitempty" yaml:"instructions"`
	ImageURL        string   `json:"imageUrl,omitempty" yaml:"image_url" validate:"omitempty,url"`
	CookTimeMinutes int      `json:"cookTimeMinutes,omitempty" yaml:"cook_time" validate:"gte=0"`
	Servings        int      `json:"servings,omitempty" yaml:"servings" validate:"gte=0"`
	Consumed        bool     `json:"-" yaml:"-"`
}

type RecipeCatalog struct {
	Recipes []Recipe `yaml:"recipes" validate:"dive"`
}

type PuzzleDay struct {
	Key      string `json:"key"`
	RecipeID string `json:"recipeId"`
}

type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

type Session struct {
	PuzzleKey         string            `json:"puzzleKey"`
	OwnerID           string            `json:"ownerId"`
	Practice          bool              `json:"practice"`
	Recipe            *Recipe           `json:"recipe"`
	Guessed           []string          `json:"guessed"`
	Correct           []string          `json:"correct"`
	IncorrectAttempts int               `json:"incorrectAttempts"`
	MaxAttempts       int               `json:"maxAttempts"`
	HintsUsed         int               `json:"hintsUsed"`
	MaxHints          int               `json:"maxHints"`
	HintProgress      map[string]int    `json:"hintProgress"`
	Credits           map[string]string `json:"credits"`
	Status            Status            `json:"status"`
	StartedAt         time.Time         `json:"startedAt"`
	EndedAt           *time.Time        `json:"endedAt,omitempty"`
	LastAccessTime    time.Time         `json:"lastAccessTime"`
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Recipe != nil {
		r := *s.Recipe
		r.Ingredients = slices.Clone(s.Recipe.Ingredients)
		c.Recipe = &r
	}
	c.Guessed = slices.Clone(s.Guessed)
	c.Correct = slices.Clone(s.Correct)
	c.HintProgress = maps.Clone(s.HintProgress)
	c.Credits = maps.Clone(s.Credits)
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return &c
}

type PlayerStats struct {
	GamesPlayed   int    `json:"gamesPlayed"`
	GamesWon      int    `json:"gamesWon"`
	CurrentStreak int    `json:"currentStreak"`
	BestStreak    int    `json:"bestStreak"`
	LastPlayedDay string `json:"lastPlayedDay"`
}

// WinRate is the rounded percentage of games won.
func (p PlayerStats) WinRate() int {
	if p.GamesPlayed == 0 {
		return 0
	}
	return (p.GamesWon*100 + p.GamesPlayed/2) / p.GamesPlayed
}

type GameResult struct {
	ID         string        `json:"id"`
	PlayerID   string        `json:"playerId"`
	RecipeID   string        `json:"recipeId"`
	RecipeName string        `json:"recipeName"`
	PuzzleKey  string        `json:"puzzleKey"`
	Attempts   int           `json:"attempts"`
	HintsUsed  int           `json:"hintsUsed"`
	TimeSpent  time.Duration `json:"timeSpent"`
	Won        bool          `json:"won"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type SlotView struct {
	Index        int    `json:"index"`
	Found        bool   `json:"found"`
	Name         string `json:"name,omitempty"`
	HintPrefix   string `json:"hintPrefix,omitempty"`
	HintRevealed int    `json:"hintRevealed"`
}

type GuessView struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type RecipeView struct {
	Name            string `json:"name"`
	Icon            string `json:"icon"`
	Category        string `json:"category"`
	Difficulty      string `json:"difficulty"`
	Description     string `json:"description,omitempty"`
	Instructions    string `json:"instructions,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	CookTimeMinutes int    `json:"cookTimeMinutes,omitempty"`
	Servings        int    `json:"servings,omitempty"`
}

// SessionView is the read-only projection handed to presentation layers.
// Ingredient names appear only once found, or once the session is over.
type SessionView struct {
	PuzzleKey         string      `json:"puzzleKey"`
	Practice          bool        `json:"practice"`
	Status            Status      `json:"status"`
	Recipe            RecipeView  `json:"recipe"`
	IngredientCount   int         `json:"ingredientCount"`
	FoundCount        int         `json:"foundCount"`
	Slots             []SlotView  `json:"slots"`
	Guesses           []GuessView `json:"guesses"`
	IncorrectAttempts int         `json:"incorrectAttempts"`
	MaxAttempts       int         `json:"maxAttempts"`
	HintsUsed         int         `json:"hintsUsed"`
	MaxHints          int         `json:"maxHints"`
	TimeSpentSeconds  int         `json:"timeSpentSeconds,omitempty"`
	ShareText         string      `json:"shareText,omitempty"`
}
