package archive_test

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/routing"
)

func doc(name string, kind classifications.Kind, desc string) documents.Document {
	return documents.Document{
		ID:             uuid.New(),
		Name:           name,
		Content:        []byte("%PDF " + name),
		Classification: classifications.Classification{Kind: kind, Description: desc},
	}
}

func bakerStreet() []documents.Document {
	return []documents.Document{
		doc("scan1.pdf", classifications.KindChecklist, ""),
		doc("scan2.pdf", classifications.KindMTW, ""),
		doc("scan3.pdf", classifications.KindMTW, ""),
		doc("scan4.pdf", classifications.KindWorkOrder, "BOILER REPAIR"),
		doc("scan5.pdf", classifications.KindSkip, ""),
	}
}

func TestBuildBakerStreet(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{})
	docs := bakerStreet()

	plan, err := b.Build("221B Baker St.!", docs)
	require.NoError(t, err)

	assert.Equal(t, "221B BAKER ST", plan.Address)
	assert.Equal(t, "221B BAKER ST - VOID RENAMED.zip", plan.Filename)
	assert.Equal(t, 1, plan.Skipped)
	require.Len(t, plan.Entries, 4)

	want := []struct{ folder, name string }{
		{routing.FolderInspectionChecklist, "221B BAKER ST - VOID INSPECTION CHECKLIST.pdf"},
		{routing.FolderMTW, "221B BAKER ST - VOID AC GOLD MTW (1).pdf"},
		{routing.FolderMTW, "221B BAKER ST - VOID AC GOLD MTW (2).pdf"},
		{routing.FolderRoot, "221B BAKER ST - VOID BOILER REPAIR REQUEST.pdf"},
	}
	for i, w := range want {
		assert.Equal(t, w.folder, plan.Entries[i].Folder, "entry %d", i)
		assert.Equal(t, w.name, plan.Entries[i].Name, "entry %d", i)
		assert.Equal(t, docs[i].ID, plan.Entries[i].DocumentID)
		assert.Equal(t, docs[i].Name, plan.Entries[i].Source)
	}

	assert.Equal(t, &docs[1].Content[0], &plan.Entries[1].Content[0], "content is shared by reference")
}

func TestBuildChecklistMTWAndBMD(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{})
	docs := []documents.Document{
		doc("scan1.pdf", classifications.KindChecklist, ""),
		doc("scan2.pdf", classifications.KindMTW, ""),
		doc("scan3.pdf", classifications.KindMTW, ""),
		doc("scan4.pdf", classifications.KindBMD, ""),
	}

	plan, err := b.Build("221B Baker St.!", docs)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 4)
	assert.Equal(t, 0, plan.Skipped)

	paths := make([]string, len(plan.Entries))
	for i, e := range plan.Entries {
		paths[i] = e.Path()
	}

	assert.Equal(t, []string{
		"Inspection Checklist/221B BAKER ST - VOID INSPECTION CHECKLIST.pdf",
		"MTW/221B BAKER ST - VOID AC GOLD MTW (1).pdf",
		"MTW/221B BAKER ST - VOID AC GOLD MTW (2).pdf",
		"NEC Lines/221B BAKER ST - VOID BMD WORKS (1).pdf",
	}, paths)
}

func TestBuildSingleKind(t *testing.T) {
	const n = 4
	addr := regexp.QuoteMeta("221B BAKER ST")

	tests := []struct {
		kind    classifications.Kind
		desc    string
		pattern string
	}{
		{classifications.KindChecklist, "", addr + ` - VOID INSPECTION CHECKLIST( \(\d+\))?\.pdf`},
		{classifications.KindMTW, "", addr + ` - VOID AC GOLD MTW \(\d+\)\.pdf`},
		{classifications.KindRecharge, "", addr + ` - VOID RECHARGEABLE WORKS( \(\d+\))?\.pdf`},
		{classifications.KindBMD, "", addr + ` - VOID BMD WORKS \(\d+\)\.pdf`},
		{classifications.KindWorkOrder, "gas safety", addr + ` - VOID GAS SAFETY REQUEST( \(\d+\))?\.pdf`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			docs := make([]documents.Document, n)
			for i := range docs {
				docs[i] = doc(fmt.Sprintf("scan%d.pdf", i), tt.kind, tt.desc)
			}

			plan, err := archive.NewBuilder(nil, nil, archive.Options{}).Build("221B Baker St", docs)
			require.NoError(t, err)
			require.Len(t, plan.Entries, n)

			re := regexp.MustCompile(`^` + tt.pattern + `$`)
			seen := make(map[string]bool, n)
			for _, e := range plan.Entries {
				assert.Regexp(t, re, e.Name)
				assert.False(t, seen[e.Path()], "duplicate path %s", e.Path())
				seen[e.Path()] = true
			}
		})
	}
}

func TestBuildDuplicateWorkOrders(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{})
	docs := []documents.Document{
		doc("a.pdf", classifications.KindWorkOrder, "ASBESTOS REMOVAL"),
		doc("b.pdf", classifications.KindWorkOrder, "asbestos removal!"),
		doc("c.pdf", classifications.KindWorkOrder, "Deep Clean"),
		doc("d.pdf", classifications.KindWorkOrder, "BOILER"),
		doc("e.pdf", classifications.KindWorkOrder, "BOILER"),
	}

	plan, err := b.Build("1 High St", docs)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 5)

	assert.Equal(t, "1 HIGH ST - VOID ASBESTOS REMOVAL REQUEST.pdf", plan.Entries[0].Name)
	assert.Equal(t, "1 HIGH ST - VOID ASBESTOS REMOVAL REQUEST (2).pdf", plan.Entries[1].Name)
	assert.Equal(t, routing.FolderAsbestos, plan.Entries[1].Folder)
	assert.Equal(t, routing.FolderCleans, plan.Entries[2].Folder)
	assert.Equal(t, "1 HIGH ST - VOID BOILER REQUEST.pdf", plan.Entries[3].Name)
	assert.Equal(t, "1 HIGH ST - VOID BOILER REQUEST (2).pdf", plan.Entries[4].Name)

	seen := map[string]bool{}
	for _, e := range plan.Entries {
		assert.False(t, seen[e.Path()], "duplicate path %s", e.Path())
		seen[e.Path()] = true
	}
}

func TestBuildPlaceholderPolicy(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{SkipPolicy: archive.SkipPlaceholder})
	docs := []documents.Document{
		doc("a.pdf", classifications.KindSkip, ""),
		{ID: uuid.New(), Name: "b.pdf"},
		doc("c.pdf", classifications.KindRecharge, ""),
	}

	plan, err := b.Build("1 High St", docs)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Skipped)
	require.Len(t, plan.Entries, 3)
	assert.Equal(t, "1 HIGH ST - VOID UNCLASSIFIED.pdf", plan.Entries[0].Name)
	assert.Equal(t, "1 HIGH ST - VOID UNCLASSIFIED (2).pdf", plan.Entries[1].Name)
	assert.Equal(t, routing.FolderRoot, plan.Entries[1].Folder)
	assert.Equal(t, routing.FolderRechargeable, plan.Entries[2].Folder)
}

func TestBuildCustomPlaceholder(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{
		SkipPolicy:  archive.SkipPlaceholder,
		Placeholder: "to review",
	})

	plan, err := b.Build("1 High St", []documents.Document{doc("a.pdf", classifications.KindSkip, "")})
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "1 HIGH ST - VOID TO REVIEW.pdf", plan.Entries[0].Name)
}

func TestBuildOmitsUnclassified(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{})
	assert.Equal(t, archive.SkipOmit, b.SkipPolicy())

	plan, err := b.Build("1 High St", []documents.Document{
		{ID: uuid.New(), Name: "a.pdf"},
		doc("b.pdf", classifications.KindSkip, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Entries)
	assert.Equal(t, 2, plan.Skipped)
}

func TestBuildAddressRequired(t *testing.T) {
	b := archive.NewBuilder(nil, nil, archive.Options{})

	_, err := b.Build(" ?! ", bakerStreet())
	require.ErrorIs(t, err, archive.ErrAddressRequired)
}

func TestBuildUsesRouterTable(t *testing.T) {
	table := routing.Table{{Name: "all", Folder: "Everything", Match: routing.Contains("VOID")}}
	b := archive.NewBuilder(nil, routing.New(table), archive.Options{})

	plan, err := b.Build("1 High St", bakerStreet())
	require.NoError(t, err)
	for _, e := range plan.Entries {
		assert.Equal(t, "Everything", e.Folder)
	}
}

func TestParseSkipPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    archive.SkipPolicy
		wantErr bool
	}{
		{"", archive.SkipOmit, false},
		{"omit", archive.SkipOmit, false},
		{" Placeholder ", archive.SkipPlaceholder, false},
		{"drop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := archive.ParseSkipPolicy(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, archive.ErrInvalidSkipPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTree(t *testing.T) {
	plan, err := archive.NewBuilder(nil, nil, archive.Options{}).Build("221B Baker St", bakerStreet())
	require.NoError(t, err)

	tree := plan.Tree()
	require.Len(t, tree, 3)

	assert.Equal(t, routing.FolderRoot, tree[0].Name)
	assert.Equal(t, []string{"221B BAKER ST - VOID BOILER REPAIR REQUEST.pdf"}, tree[0].Files)
	assert.Equal(t, routing.FolderInspectionChecklist, tree[1].Name)
	assert.Equal(t, routing.FolderMTW, tree[2].Name)
	assert.Len(t, tree[2].Files, 2)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "12 ELM RD - VOID RENAMED.zip", archive.Filename("12 elm rd."))
}

func TestWrite(t *testing.T) {
	plan, err := archive.NewBuilder(nil, nil, archive.Options{}).Build("221B Baker St", bakerStreet())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf, plan))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	contents := map[string]string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}

	assert.Equal(t, []string{
		"Inspection Checklist/",
		"Inspection Checklist/221B BAKER ST - VOID INSPECTION CHECKLIST.pdf",
		"MTW/",
		"MTW/221B BAKER ST - VOID AC GOLD MTW (1).pdf",
		"MTW/221B BAKER ST - VOID AC GOLD MTW (2).pdf",
		"221B BAKER ST - VOID BOILER REPAIR REQUEST.pdf",
	}, names)

	assert.Equal(t, "%PDF scan3.pdf", contents["MTW/221B BAKER ST - VOID AC GOLD MTW (2).pdf"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteFailure(t *testing.T) {
	plan, err := archive.NewBuilder(nil, nil, archive.Options{}).Build("221B Baker St", bakerStreet())
	require.NoError(t, err)

	err = archive.Write(failingWriter{}, plan)
	require.ErrorIs(t, err, archive.ErrBuildFailed)
}
