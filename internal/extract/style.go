package extract

import (
	"fmt"
	"math"

	"rsc.io/pdf"
)

// Text-showing operators whose operands carry strings.
const (
	opShowText        = "Tj"
	opShowSpacedText  = "TJ"
	opNextLineShow    = "'"
	opNextLineSpacing = `"`
)

// A TJ displacement at or below this value (thousandths of text space) is treated
// as a word gap.
const wordGapThreshold = -250

type operandKind int

const (
	operandOther operandKind = iota
	operandNumber
	operandString
	operandName
	operandArray
)

// operand is a content-stream operand detached from the PDF reader.
type operand struct {
	kind  operandKind
	num   float64
	str   string
	items []operand
}

func toOperand(v pdf.Value) operand {
	switch v.Kind() {
	case pdf.Integer:
		return operand{kind: operandNumber, num: float64(v.Int64())}
	case pdf.Real:
		return operand{kind: operandNumber, num: v.Float64()}
	case pdf.String:
		return operand{kind: operandString, str: v.RawString()}
	case pdf.Name:
		return operand{kind: operandName, str: v.Name()}
	case pdf.Array:
		items := make([]operand, v.Len())
		for i := range items {
			items[i] = toOperand(v.Index(i))
		}
		return operand{kind: operandArray, items: items}
	default:
		return operand{kind: operandOther}
	}
}

// textPiece is an undecoded string operand. spaceBefore marks a TJ word gap.
type textPiece struct {
	raw         string
	spaceBefore bool
}

// textStyle is the drawing state captured when text is shown.
type textStyle struct {
	Font     string
	FontSize float64
	Fill     [3]float64 // unit RGB
}

// styledText pairs shown text with the style active at the moment it was drawn.
type styledText struct {
	Pieces []textPiece
	Style  textStyle
}

var identityMatrix = [6]float64{1, 0, 0, 1, 0, 0}

// styleTracker replays drawing-state operators in stream order. Every show-text
// operator is returned together with a snapshot of the current fill color, so the
// text and its color can never drift apart.
type styleTracker struct {
	graphicsState
	saved []graphicsState
	floor int // Q never pops below this depth
	tm    [6]float64
}

// graphicsState is the part of the drawing state saved by q and restored by Q.
type graphicsState struct {
	fill [3]float64
	font string
	size float64
	ctm  [6]float64
}

func newStyleTracker() *styleTracker {
	t := &styleTracker{tm: identityMatrix}
	t.ctm = identityMatrix
	return t
}

// formMark is the tracker state to return to when a form XObject ends.
type formMark struct {
	depth, floor int
}

// enterForm saves the drawing state, as an implicit q, and concatenates the form
// matrix. Unbalanced Q operators inside the form cannot reach the caller's states.
func (t *styleTracker) enterForm(matrix []operand) formMark {
	m := formMark{depth: len(t.saved), floor: t.floor}
	t.apply("q", nil)
	t.floor = len(t.saved)
	if len(matrix) == 6 {
		t.apply("cm", matrix)
	}
	return m
}

// leaveForm restores the state saved by enterForm, as an implicit Q.
func (t *styleTracker) leaveForm(m formMark) {
	if len(t.saved) > m.depth {
		t.graphicsState = t.saved[m.depth]
		t.saved = t.saved[:m.depth]
	}
	t.floor = m.floor
}

// apply consumes one operator with its operands and reports the text it shows, if any.
func (t *styleTracker) apply(op string, args []operand) (styledText, bool) {
	switch op {
	case "q":
		t.saved = append(t.saved, t.graphicsState)
	case "Q":
		if n := len(t.saved); n > t.floor {
			t.graphicsState = t.saved[n-1]
			t.saved = t.saved[:n-1]
		}
	case "rg", "g", "k", "sc", "scn":
		if c, ok := fillFromOperands(op, args); ok {
			t.fill = c
		}
	case "cm":
		if nums, ok := trailingNumbers(args); ok && len(nums) == 6 {
			var m [6]float64
			copy(m[:], nums)
			t.ctm = multiply(m, t.ctm)
		}
	case "BT":
		t.tm = identityMatrix
	case "Tf":
		if len(args) >= 2 && args[0].kind == operandName && args[1].kind == operandNumber {
			t.font = args[0].str
			t.size = args[1].num
		}
	case "Tm":
		if nums, ok := trailingNumbers(args); ok && len(nums) == 6 {
			copy(t.tm[:], nums)
		}
	case opShowText, opNextLineShow, opNextLineSpacing:
		if n := len(args); n > 0 && args[n-1].kind == operandString {
			return t.snapshot([]textPiece{{raw: args[n-1].str}}), true
		}
	case opShowSpacedText:
		if n := len(args); n > 0 && args[n-1].kind == operandArray {
			return t.snapshot(spacedPieces(args[n-1].items)), true
		}
	}
	return styledText{}, false
}

func (t *styleTracker) snapshot(pieces []textPiece) styledText {
	// vertical extent of the text rendering matrix Tm x CTM
	trm := multiply(t.tm, t.ctm)
	scale := math.Hypot(trm[0], trm[1])
	return styledText{
		Pieces: pieces,
		Style: textStyle{
			Font:     t.font,
			FontSize: math.Abs(t.size * scale),
			Fill:     t.fill,
		},
	}
}

// multiply returns a x b for PDF matrices [a b c d e f].
func multiply(a, b [6]float64) [6]float64 {
	return [6]float64{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

func spacedPieces(items []operand) []textPiece {
	var pieces []textPiece
	gap := false
	for _, it := range items {
		switch it.kind {
		case operandString:
			pieces = append(pieces, textPiece{raw: it.str, spaceBefore: gap && len(pieces) > 0})
			gap = false
		case operandNumber:
			if it.num <= wordGapThreshold {
				gap = true
			}
		}
	}
	return pieces
}

// fillFromOperands converts a fill-color operator to unit RGB. Pattern names trailing
// scn operands are ignored; a bare pattern leaves the color unchanged.
func fillFromOperands(op string, args []operand) ([3]float64, bool) {
	nums, ok := trailingNumbers(args)
	if !ok {
		return [3]float64{}, false
	}
	switch {
	case op == "g" && len(nums) == 1, (op == "sc" || op == "scn") && len(nums) == 1:
		return [3]float64{nums[0], nums[0], nums[0]}, true
	case op == "rg" && len(nums) == 3, (op == "sc" || op == "scn") && len(nums) == 3:
		return [3]float64{nums[0], nums[1], nums[2]}, true
	case op == "k" && len(nums) == 4, (op == "sc" || op == "scn") && len(nums) == 4:
		c, m, y, k := nums[0], nums[1], nums[2], nums[3]
		return [3]float64{(1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)}, true
	}
	return [3]float64{}, false
}

// trailingNumbers returns the numeric operands, ignoring a final name operand.
func trailingNumbers(args []operand) ([]float64, bool) {
	if n := len(args); n > 0 && args[n-1].kind == operandName {
		args = args[:n-1]
	}
	if len(args) == 0 {
		return nil, false
	}
	nums := make([]float64, 0, len(args))
	for _, a := range args {
		if a.kind != operandNumber {
			return nil, false
		}
		nums = append(nums, a.num)
	}
	return nums, true
}

// maxFormDepth bounds nested form XObjects, which may also reference each other.
const maxFormDepth = 8

// resourceScope identifies the resources active while text is shown. key is empty
// on the page itself and names the enclosing forms otherwise, e.g. "X1/X2".
type resourceScope struct {
	key   string
	fonts pdf.Value
}

type contentWalker struct {
	tracker *styleTracker
	fn      func(styledText, resourceScope)
}

// walkContent interprets the page's content streams once, calling fn for every shown
// string together with the style it was drawn with and the resources it was drawn
// from. Form XObjects painted with Do are interpreted in place. Interpreter panics
// on malformed streams are returned as errors.
func walkContent(page pdf.Page, fn func(styledText, resourceScope)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	w := &contentWalker{tracker: newStyleTracker(), fn: fn}
	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Null:
		return nil
	case pdf.Stream, pdf.Array:
		w.walk(contents, page.Resources(), "", 0)
		return nil
	default:
		return fmt.Errorf("unexpected /Contents of kind %v", contents.Kind())
	}
}

func (w *contentWalker) walk(contents, resources pdf.Value, key string, depth int) {
	scope := resourceScope{key: key, fonts: resources.Key("Font")}
	visit := func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]operand, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = toOperand(stk.Pop())
		}
		if op == "Do" {
			if len(args) == 1 && args[0].kind == operandName {
				w.form(resources, args[0].str, key, depth)
			}
			return
		}
		if text, ok := w.tracker.apply(op, args); ok {
			w.fn(text, scope)
		}
	}

	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), visit)
		}
		return
	}
	pdf.Interpret(contents, visit)
}

// form interprets a form XObject with its own resources. Image XObjects are skipped.
func (w *contentWalker) form(resources pdf.Value, name, parentKey string, depth int) {
	xobj := resources.Key("XObject").Key(name)
	if depth >= maxFormDepth || xobj.Kind() != pdf.Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}
	formResources := xobj.Key("Resources")
	if formResources.Kind() != pdf.Dict {
		formResources = resources
	}
	key := name
	if parentKey != "" {
		key = parentKey + "/" + name
	}

	var matrix []operand
	if m := xobj.Key("Matrix"); m.Kind() == pdf.Array {
		matrix = toOperand(m).items
	}
	mark := w.tracker.enterForm(matrix)
	defer w.tracker.leaveForm(mark)
	w.walk(xobj, formResources, key, depth+1)
}
