// Package prompt assembles generation requests for one chunk of pages.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// SystemPrompt is sent as the system instruction with every request.
const SystemPrompt = "You are a study assistant that turns lecture slides into question-and-answer flashcards. You must output your response as a valid JSON array."

const cardInstructions = `Create question-and-answer study cards from the lecture material below.

Follow these rules precisely:
1.  **Red text first**: Text the lecturer marked in red is the most important material. Turn every red-text item into at least one card with "category": "red-text".
2.  **Important concepts**: Also write cards for definitions, key terms and concepts you judge to be important even when they are not red. Use "category": "important".
3.  **Full coverage**: Cover the content of every page. Do not skip any page. Use "category": "general" for these cards.
4.  **Existing exam questions**: If the material already contains exam, quiz or practice questions, reproduce each one as a card with "category": "exam-question" and say where it came from in "examInfo". Never use this category for questions you write yourself.
5.  **Question mix**: Make 30-50% of the cards multiple-choice. A multiple-choice card has "questionType": "multiple-choice", four entries in "choices" and the zero-based index of the right entry in "correctChoiceIndex". Every other card has "questionType": "free-form"; vary these between definitions, fill-in-the-blank, true/false, short answer and comparison questions.
6.  **Explanation**: Every card MUST have a non-empty "explanation" that says why the answer is correct.
7.  **Answers**: Keep answers short and accurate.
8.  **Source page**: Set "sourcePage" to the number of the page the card is based on.
9.  **Figures**: When a card depends on a diagram, table or figure, describe it in "figureDescription".

Return ONLY a JSON array. Do not include any text before or after the JSON array.

Output format:
[
  {
    "question": "Question text",
    "answer": "Answer text",
    "explanation": "Why the answer is correct",
    "category": "red-text" | "important" | "general" | "exam-question",
    "questionType": "free-form" | "multiple-choice",
    "choices": ["Only for multiple-choice"],
    "correctChoiceIndex": 0,
    "sourcePage": 1,
    "figureDescription": "Optional",
    "examInfo": "Optional, exam-question only"
  }
]`

const (
	emphasisHeading = "## Red text (highest priority)"
	pagesHeading    = "## Slide text"
	noEmphasis      = "(No red text was detected in this section.)"
	noPageText      = "(No text could be extracted from this page.)"
)

var layoutNotes = map[models.HandoutMode]string{
	models.HandoutNormal: "Each image shows a single slide.",
	models.Handout4Up:    "Each image is a printed handout page with 4 slides in a 2 x 2 grid. Read the slides left to right, then top to bottom, and treat each slide on its own.",
	models.Handout6Up:    "Each image is a printed handout page with 6 slides in a 2 column x 3 row grid. Read the slides left to right, then top to bottom, and treat each slide on its own.",
}

// BuildText returns a single text part holding the instructions, the chunk's
// emphasis list and the text of every non-blank page.
func BuildText(c models.Chunk) []models.Part {
	var sb strings.Builder
	sb.WriteString(cardInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(emphasisHeading)
	sb.WriteString("\n")
	if len(c.Emphasis) == 0 {
		sb.WriteString(noEmphasis)
	} else {
		sb.WriteString(emphasisList(c.Emphasis))
	}

	sb.WriteString("\n\n")
	sb.WriteString(pagesHeading)
	sb.WriteString("\n")
	var sections []string
	for _, p := range c.Pages {
		if p.Blank() {
			continue
		}
		sections = append(sections, pageHeading(p.Number)+"\n"+p.FullText)
	}
	sb.WriteString(strings.Join(sections, "\n\n"))

	return []models.Part{models.TextPart(sb.String())}
}

// BuildMultimodal returns the instruction part, an emphasis part when the chunk has
// red text, then for every page its image (when rendered) followed by its text.
// Pages with neither text nor image are left out.
func BuildMultimodal(c models.Chunk, images map[int][]byte, mode models.HandoutMode) []models.Part {
	note, ok := layoutNotes[mode]
	if !ok {
		note = layoutNotes[models.HandoutNormal]
	}
	parts := []models.Part{models.TextPart(cardInstructions + "\n\n## Page images\n" + note +
		" Each page image is followed by the text extracted from that page. Use the images to read diagrams, tables and text that was not extracted.")}

	if len(c.Emphasis) > 0 {
		parts = append(parts, models.TextPart(emphasisHeading+"\n"+emphasisList(c.Emphasis)))
	}

	for _, p := range c.Pages {
		img, hasImage := images[p.Number]
		hasImage = hasImage && len(img) > 0
		if !hasImage && p.Blank() {
			continue
		}
		if hasImage {
			parts = append(parts, models.ImagePart(img, models.PageImageMIMEType))
		}
		text := p.FullText
		if p.Blank() {
			text = noPageText
		}
		parts = append(parts, models.TextPart(pageHeading(p.Number)+"\n"+text))
	}
	return parts
}

func emphasisList(spans []models.EmphasisSpan) string {
	lines := make([]string, 0, len(spans))
	for _, s := range spans {
		lines = append(lines, fmt.Sprintf("- [p.%d] %s", s.Page, s.Text))
	}
	return strings.Join(lines, "\n")
}

func pageHeading(n int) string {
	return fmt.Sprintf("--- Page %d ---", n)
}
