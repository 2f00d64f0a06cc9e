package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) operand { return operand{kind: operandNumber, num: v} }

func str(s string) operand { return operand{kind: operandString, str: s} }

func nameOp(s string) operand { return operand{kind: operandName, str: s} }

func arr(items ...operand) operand { return operand{kind: operandArray, items: items} }

func TestStyleTrackerFillColors(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []operand
		want [3]float64
	}{
		{"rgb", "rg", []operand{num(1), num(0), num(0)}, [3]float64{1, 0, 0}},
		{"gray", "g", []operand{num(0.5)}, [3]float64{0.5, 0.5, 0.5}},
		{"cmyk", "k", []operand{num(0), num(1), num(1), num(0)}, [3]float64{1, 0, 0}},
		{"sc rgb", "sc", []operand{num(0.2), num(0.4), num(0.6)}, [3]float64{0.2, 0.4, 0.6}},
		{"scn with pattern name", "scn", []operand{num(0.9), num(0), num(0), nameOp("P0")}, [3]float64{0.9, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newStyleTracker()
			tr.apply(tt.op, tt.args)
			got, ok := tr.apply("Tj", []operand{str("x")})
			require.True(t, ok)
			assert.InDeltaSlice(t, tt.want[:], got.Style.Fill[:], 1e-9)
		})
	}
}

func TestStyleTrackerBarePatternKeepsColor(t *testing.T) {
	tr := newStyleTracker()
	tr.apply("rg", []operand{num(1), num(0), num(0)})
	tr.apply("scn", []operand{nameOp("P1")})
	got, ok := tr.apply("Tj", []operand{str("x")})
	require.True(t, ok)
	assert.Equal(t, [3]float64{1, 0, 0}, got.Style.Fill)
}

func TestStyleTrackerSaveRestore(t *testing.T) {
	tr := newStyleTracker()
	tr.apply("Tf", []operand{nameOp("F1"), num(12)})
	tr.apply("q", nil)
	tr.apply("rg", []operand{num(1), num(0), num(0)})
	tr.apply("Tf", []operand{nameOp("F2"), num(30)})

	inner, _ := tr.apply("Tj", []operand{str("inner")})
	assert.Equal(t, [3]float64{1, 0, 0}, inner.Style.Fill)
	assert.Equal(t, "F2", inner.Style.Font)

	tr.apply("Q", nil)
	outer, _ := tr.apply("Tj", []operand{str("outer")})
	assert.Equal(t, [3]float64{0, 0, 0}, outer.Style.Fill)
	assert.Equal(t, "F1", outer.Style.Font)
	assert.Equal(t, 12.0, outer.Style.FontSize)

	// unbalanced Q is ignored
	tr.apply("Q", nil)
	again, _ := tr.apply("Tj", []operand{str("again")})
	assert.Equal(t, "F1", again.Style.Font)
}

func TestStyleTrackerFontSizeUsesTextMatrix(t *testing.T) {
	tr := newStyleTracker()
	tr.apply("BT", nil)
	tr.apply("Tf", []operand{nameOp("F1"), num(1)})
	tr.apply("Tm", []operand{num(18), num(0), num(0), num(18), num(72), num(700)})
	got, _ := tr.apply("Tj", []operand{str("big")})
	assert.InDelta(t, 18.0, got.Style.FontSize, 1e-9)

	tr.apply("BT", nil)
	got, _ = tr.apply("Tj", []operand{str("reset")})
	assert.InDelta(t, 1.0, got.Style.FontSize, 1e-9)
}

func TestStyleTrackerShowOperators(t *testing.T) {
	tr := newStyleTracker()

	got, ok := tr.apply("'", []operand{str("quote")})
	require.True(t, ok)
	assert.Equal(t, "quote", got.Pieces[0].raw)

	got, ok = tr.apply(`"`, []operand{num(1), num(2), str("dquote")})
	require.True(t, ok)
	assert.Equal(t, "dquote", got.Pieces[0].raw)

	got, ok = tr.apply("TJ", []operand{arr(str("Hello"), num(-300), str("world"), num(-50), str("!"))})
	require.True(t, ok)
	require.Len(t, got.Pieces, 3)
	assert.False(t, got.Pieces[0].spaceBefore)
	assert.True(t, got.Pieces[1].spaceBefore)
	assert.False(t, got.Pieces[2].spaceBefore)

	_, ok = tr.apply("Td", []operand{num(0), num(-14)})
	assert.False(t, ok)
	_, ok = tr.apply("Tj", nil)
	assert.False(t, ok)
}

func TestStyleTrackerFontSizeUsesCTM(t *testing.T) {
	tr := newStyleTracker()
	tr.apply("q", nil)
	tr.apply("cm", []operand{num(2), num(0), num(0), num(2), num(0), num(0)})
	tr.apply("cm", []operand{num(1.5), num(0), num(0), num(1.5), num(10), num(10)})
	tr.apply("BT", nil)
	tr.apply("Tf", []operand{nameOp("F1"), num(10)})
	got, _ := tr.apply("Tj", []operand{str("scaled")})
	assert.InDelta(t, 30.0, got.Style.FontSize, 1e-9)

	tr.apply("Q", nil)
	got, _ = tr.apply("Tj", []operand{str("restored")})
	assert.InDelta(t, 0.0, got.Style.FontSize, 1e-9, "Tf was set inside q")

	tr.apply("Tf", []operand{nameOp("F1"), num(10)})
	tr.apply("cm", []operand{num(0), num(3), num(-3), num(0), num(0), num(0)})
	got, _ = tr.apply("Tj", []operand{str("rotated")})
	assert.InDelta(t, 30.0, got.Style.FontSize, 1e-9)
}

func TestStyleTrackerFormKeepsCallerState(t *testing.T) {
	tr := newStyleTracker()
	tr.apply("Tf", []operand{nameOp("F1"), num(12)})
	tr.apply("q", nil)

	mark := tr.enterForm([]operand{num(2), num(0), num(0), num(2), num(0), num(0)})
	tr.apply("rg", []operand{num(1), num(0), num(0)})
	got, _ := tr.apply("Tj", []operand{str("inside")})
	assert.Equal(t, [3]float64{1, 0, 0}, got.Style.Fill)
	assert.InDelta(t, 24.0, got.Style.FontSize, 1e-9)

	// unbalanced Q inside the form must not pop the caller's q
	tr.apply("Q", nil)
	tr.apply("Q", nil)
	tr.leaveForm(mark)

	require.Len(t, tr.saved, 1)
	got, _ = tr.apply("Tj", []operand{str("outside")})
	assert.Equal(t, [3]float64{0, 0, 0}, got.Style.Fill)
	assert.InDelta(t, 12.0, got.Style.FontSize, 1e-9)

	tr.apply("Q", nil)
	assert.Empty(t, tr.saved)
}
