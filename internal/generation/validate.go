package generation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// cardSchema is the minimum shape an element must have to become a card. A field
// is present when it is a non-blank string, a nonzero number, true, an array or
// an object.
const cardSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["question", "answer"],
  "properties": {
    "question": {"$ref": "#/$defs/present"},
    "answer": {"$ref": "#/$defs/present"}
  },
  "$defs": {
    "present": {
      "anyOf": [
        {"type": "string", "pattern": "\\S"},
        {"type": "number", "not": {"const": 0}},
        {"const": true},
        {"type": "array"},
        {"type": "object"}
      ]
    }
  }
}`

var (
	compiledCardSchema = jsonschema.MustCompileString("card.schema.json", cardSchema)
	codeFence          = regexp.MustCompile("```(?:json)?\\s*")
)

// ParseCandidates decodes a raw model response into cards. Only the question and
// answer are required; every other field is coerced to a default. Elements that
// lack a usable question or answer are dropped without error.
func ParseCandidates(raw string) ([]models.CardCandidate, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	var tree any
	if err := json.Unmarshal([]byte(cleaned), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	items, ok := tree.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMalformedResponse, tree)
	}

	cards := make([]models.CardCandidate, 0, len(items))
	for _, item := range items {
		if err := compiledCardSchema.Validate(item); err != nil {
			continue
		}
		cards = append(cards, coerce(item.(map[string]any)))
	}
	return cards, nil
}

// coerce maps one schema-valid element onto a card, applying field defaults.
func coerce(obj map[string]any) models.CardCandidate {
	card := models.CardCandidate{
		Question:     stringify(obj["question"]),
		Answer:       stringify(obj["answer"]),
		Category:     models.CategoryGeneral,
		QuestionType: models.QuestionFreeForm,
		SourcePage:   1,
	}

	if s, ok := obj["explanation"].(string); ok {
		card.Explanation = s
	}
	if s, ok := obj["category"].(string); ok {
		if c, ok := models.ParseCategory(s); ok {
			card.Category = c
		}
	}
	if s, ok := obj["questionType"].(string); ok && models.QuestionType(s) == models.QuestionMultipleChoice {
		card.QuestionType = models.QuestionMultipleChoice
	}
	if arr, ok := obj["choices"].([]any); ok {
		card.Choices = make([]string, 0, len(arr))
		for _, v := range arr {
			card.Choices = append(card.Choices, stringify(v))
		}
	}
	if f, ok := obj["correctChoiceIndex"].(float64); ok {
		idx := int(f)
		card.CorrectChoiceIndex = &idx
	}
	if n, ok := pageNumber(obj["sourcePage"]); ok {
		card.SourcePage = n
	}
	if truthy(obj["figureDescription"]) {
		card.FigureDescription = stringify(obj["figureDescription"])
	}
	if truthy(obj["examInfo"]) {
		card.ExamInfo = stringify(obj["examInfo"])
	}
	return card
}

// pageNumber accepts finite numbers and numeric strings in [1, MaxInt32].
func pageNumber(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	case []any, map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
