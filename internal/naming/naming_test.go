package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/naming"
)

func cls(kind classifications.Kind, desc string) classifications.Classification {
	return classifications.Classification{Kind: kind, Description: desc}
}

func TestName(t *testing.T) {
	e := naming.NewEngine()
	const addr = "221B BAKER ST"

	tests := []struct {
		name string
		c    classifications.Classification
		n    int
		want string
	}{
		{"checklist", cls(classifications.KindChecklist, ""), 0, "221B BAKER ST - VOID INSPECTION CHECKLIST.pdf"},
		{"mtw", cls(classifications.KindMTW, ""), 3, "221B BAKER ST - VOID AC GOLD MTW (3).pdf"},
		{"recharge", cls(classifications.KindRecharge, ""), 0, "221B BAKER ST - VOID RECHARGEABLE WORKS.pdf"},
		{"bmd", cls(classifications.KindBMD, ""), 1, "221B BAKER ST - VOID BMD WORKS (1).pdf"},
		{"work order", cls(classifications.KindWorkOrder, "boiler repair"), 0, "221B BAKER ST - VOID BOILER REPAIR REQUEST.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Name(addr, tt.c, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNameNoTemplate(t *testing.T) {
	e := naming.NewEngine()

	_, err := e.Name("X", cls(classifications.KindSkip, ""), 0)
	require.ErrorIs(t, err, naming.ErrNoTemplate)
}

func TestCustomTemplates(t *testing.T) {
	e := naming.NewEngine(naming.Template{
		Kind:     classifications.KindChecklist,
		Format:   "{ADDR} CHECK {N}.pdf",
		Numbered: true,
	})

	names := e.Assign("A", []classifications.Classification{
		cls(classifications.KindChecklist, ""),
		cls(classifications.KindMTW, ""),
		cls(classifications.KindChecklist, ""),
	})
	assert.Equal(t, []string{"A CHECK 1.pdf", "", "A CHECK 2.pdf"}, names)
}

func TestAssignBakerStreet(t *testing.T) {
	addr := classifications.Normalize("221B Baker St.!")
	require.Equal(t, "221B BAKER ST", addr)

	names := naming.NewEngine().Assign(addr, []classifications.Classification{
		cls(classifications.KindChecklist, ""),
		cls(classifications.KindMTW, ""),
		cls(classifications.KindMTW, ""),
		cls(classifications.KindWorkOrder, "Boiler repair"),
		cls(classifications.KindSkip, ""),
	})

	assert.Equal(t, []string{
		"221B BAKER ST - VOID INSPECTION CHECKLIST.pdf",
		"221B BAKER ST - VOID AC GOLD MTW (1).pdf",
		"221B BAKER ST - VOID AC GOLD MTW (2).pdf",
		"221B BAKER ST - VOID BOILER REPAIR REQUEST.pdf",
		"",
	}, names)
}

func TestAssignNumberingAfterReclassification(t *testing.T) {
	e := naming.NewEngine()
	cs := []classifications.Classification{
		cls(classifications.KindMTW, ""),
		cls(classifications.KindMTW, ""),
		cls(classifications.KindBMD, ""),
		cls(classifications.KindMTW, ""),
	}

	first := e.Assign("A", cs)
	assert.Equal(t, "A - VOID AC GOLD MTW (3).pdf", first[3])

	// the operator goes back and changes the second MTW to a BMD
	cs[1] = cls(classifications.KindBMD, "")
	got := e.Assign("A", cs)

	assert.Equal(t, []string{
		"A - VOID AC GOLD MTW (1).pdf",
		"A - VOID BMD WORKS (1).pdf",
		"A - VOID BMD WORKS (2).pdf",
		"A - VOID AC GOLD MTW (2).pdf",
	}, got)
}

func TestAssignUnclassifiedAndInvalid(t *testing.T) {
	names := naming.NewEngine().Assign("A", []classifications.Classification{
		{},
		cls(classifications.KindWorkOrder, "  !! "),
		cls(classifications.KindMTW, ""),
	})

	assert.Equal(t, []string{"", "", "A - VOID AC GOLD MTW (1).pdf"}, names)
}

func TestUniquifier(t *testing.T) {
	u := naming.NewUniquifier()

	assert.Equal(t, "a.pdf", u.Resolve("", "a.pdf"))
	assert.Equal(t, "a (2).pdf", u.Resolve("", "a.pdf"))
	assert.Equal(t, "a (3).pdf", u.Resolve("", "a.pdf"))

	assert.Equal(t, "a.pdf", u.Resolve("MTW", "a.pdf"), "folders are independent scopes")
	assert.Equal(t, "a (2).pdf", u.Resolve("MTW", "a.pdf"))
	assert.Equal(t, "a.pdf", u.Resolve("EPC", "a.pdf"))
}

func TestUniquifierStemAndExtension(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"last dot splits", "ST. JOHNS - WORKS.pdf", "ST. JOHNS - WORKS (2).pdf"},
		{"no extension", "README", "README (2)"},
		{"explicit suffix already taken", "b (2).pdf", "b (2) (2).pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := naming.NewUniquifier()
			u.Resolve("", tt.input)
			assert.Equal(t, tt.want, u.Resolve("", tt.input))
		})
	}
}

func TestUniquifierSkipsReservedProbe(t *testing.T) {
	u := naming.NewUniquifier()

	u.Resolve("", "x (2).pdf")
	u.Resolve("", "x.pdf")

	assert.Equal(t, "x (3).pdf", u.Resolve("", "x.pdf"))
}
