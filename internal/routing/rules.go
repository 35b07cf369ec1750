package routing

import (
	"fmt"
	"strings"
)

// Destination folders of the default table. Root is the archive root.
const (
	FolderRoot                = ""
	FolderAsbestos            = "ASBESTOS"
	FolderInspectionChecklist = "Inspection Checklist"
	FolderCleans              = "Cleans + Clearouts"
	FolderRewires             = "Periodic - Rewires"
	FolderEPC                 = "EPC"
	FolderRotWorks            = "Rot Works"
	FolderRechargeable        = "Rechargeable Repairs"
	FolderMTW                 = "MTW"
	FolderNECLines            = "NEC Lines"
)

// Rule routes names matching Match into Folder.
type Rule struct {
	Name   string
	Folder string
	Match  Predicate
}

// Table is an ordered rule list. The first matching rule wins.
type Table []Rule

// DefaultTable returns the standard routing table. markers are additional
// asbestos contractor names; any of them routes a document to ASBESTOS, as does
// a REMOVAL or SURVEY document naming either signal.
func DefaultTable(markers ...string) Table {
	asbestos := AnyOf(Contains("ASBESTOS"), Contains(markers...))

	return Table{
		{
			Name:   "asbestos",
			Folder: FolderAsbestos,
			Match:  AnyOf(asbestos, AllOf(Contains("REMOVAL", "SURVEY"), asbestos)),
		},
		{Name: "inspection-checklist", Folder: FolderInspectionChecklist, Match: Contains("INSPECTION CHECKLIST")},
		{Name: "cleans", Folder: FolderCleans, Match: Contains("CLEAN")},
		{Name: "rewires", Folder: FolderRewires, Match: Contains("EICR")},
		{Name: "epc", Folder: FolderEPC, Match: Contains("EPC")},
		{Name: "rot-works", Folder: FolderRotWorks, Match: Contains("ROT WORKS")},
		{Name: "rechargeable", Folder: FolderRechargeable, Match: Contains("RECHARGE")},
		{Name: "mtw", Folder: FolderMTW, Match: Contains("AC GOLD MTW", "AC GOLD")},
		{Name: "nec-lines", Folder: FolderNECLines, Match: Contains("BMD WORKS")},
	}
}

// Folders returns the distinct non-root folders of t in table order.
func (t Table) Folders() []string {
	seen := make(map[string]struct{}, len(t))
	out := make([]string, 0, len(t))
	for _, r := range t {
		if r.Folder == FolderRoot {
			continue
		}
		if _, ok := seen[r.Folder]; ok {
			continue
		}
		seen[r.Folder] = struct{}{}
		out = append(out, r.Folder)
	}
	return out
}

// Validate reports the first rule whose folder is not a single archive
// directory name. Folders may not contain path separators or be "." or "..".
func (t Table) Validate() error {
	for i, r := range t {
		if r.Folder == FolderRoot {
			continue
		}
		if r.Folder == "." || r.Folder == ".." || strings.ContainsAny(r.Folder, `/\`) {
			return fmt.Errorf("%w: rule %d (%s): folder %q must be a single directory name", ErrInvalidRules, i, r.Name, r.Folder)
		}
	}
	return nil
}
