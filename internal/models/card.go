package models

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Category classifies why a card exists.
type Category string

const (
	CategoryRedText      Category = "red-text"
	CategoryImportant    Category = "important"
	CategoryGeneral      Category = "general"
	CategoryExamQuestion Category = "exam-question"
)

// Categories lists every recognized category in display order.
var Categories = []Category{CategoryRedText, CategoryImportant, CategoryGeneral, CategoryExamQuestion}

// ParseCategory returns the category for a label, or false when the label is not recognized.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Label is the human-readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryRedText:
		return "Red text"
	case CategoryImportant:
		return "Important"
	case CategoryExamQuestion:
		return "Exam question"
	default:
		return "General"
	}
}

// QuestionType is the answer format of a card.
type QuestionType string

const (
	QuestionFreeForm       QuestionType = "free-form"
	QuestionMultipleChoice QuestionType = "multiple-choice"
)

// HandoutMode describes how many slides were printed per physical page.
type HandoutMode string

const (
	HandoutNormal HandoutMode = "normal"
	Handout4Up    HandoutMode = "4-per-page"
	Handout6Up    HandoutMode = "6-per-page"
)

// ParseHandoutMode maps a label to a mode, defaulting to normal.
func ParseHandoutMode(s string) HandoutMode {
	switch HandoutMode(strings.ToLower(strings.TrimSpace(s))) {
	case Handout4Up, "4":
		return Handout4Up
	case Handout6Up, "6":
		return Handout6Up
	default:
		return HandoutNormal
	}
}

// CardCandidate is a validated card produced by the generation step, not yet scheduled.
type CardCandidate struct {
	Question           string       `json:"question"`
	Answer             string       `json:"answer"`
	Explanation        string       `json:"explanation"`
	Category           Category     `json:"category"`
	QuestionType       QuestionType `json:"questionType"`
	Choices            []string     `json:"choices,omitempty"`
	CorrectChoiceIndex *int         `json:"correctChoiceIndex,omitempty"`
	SourcePage         int          `json:"sourcePage"`
	FigureDescription  string       `json:"figureDescription,omitempty"`
	ExamInfo           string       `json:"examInfo,omitempty"`
}

// IssuedCard pairs a candidate with the fresh identifier the scheduler expects.
type IssuedCard struct {
	ID string `json:"id"`
	CardCandidate
}

// Issue assigns a new random identifier to every candidate, preserving order.
func Issue(cards []CardCandidate) []IssuedCard {
	issued := make([]IssuedCard, 0, len(cards))
	for _, c := range cards {
		issued = append(issued, IssuedCard{ID: uuid.NewString(), CardCandidate: c})
	}
	return issued
}

// Tally counts cards per category.
type Tally map[Category]int

// CountCategories tallies the cards by category.
func CountCategories(cards []CardCandidate) Tally {
	t := Tally{}
	for _, c := range cards {
		t[c.Category]++
	}
	return t
}

// DeckName derives a deck title from an uploaded file name.
func DeckName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	switch strings.ToLower(ext) {
	case ".pdf", ".pptx", ".ppt", ".goodnotes":
		return strings.TrimSuffix(base, ext)
	}
	return base
}
