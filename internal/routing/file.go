package routing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRules indicates a rules file that cannot be compiled into a table.
var ErrInvalidRules = errors.New("invalid routing rules")

// rootFolder is the rules-file spelling of FolderRoot.
const rootFolder = "root"

// File is the YAML representation of a routing table.
//
//	rules:
//	  - name: asbestos
//	    folder: ASBESTOS
//	    match:
//	      any:
//	        - contains: [ASBESTOS, ACME REMOVALS]
//	        - all:
//	            - contains: [REMOVAL, SURVEY]
//	            - contains: [ASBESTOS]
//	  - name: cleans
//	    folder: Cleans + Clearouts
//	    match:
//	      contains: [CLEAN]
type File struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec is one rule of a rules file.
type RuleSpec struct {
	Name   string    `yaml:"name"`
	Folder string    `yaml:"folder"`
	Match  MatchSpec `yaml:"match"`
}

// MatchSpec is a predicate expression. Every populated field must hold for the
// expression to match.
type MatchSpec struct {
	Contains []string    `yaml:"contains,omitempty"`
	Any      []MatchSpec `yaml:"any,omitempty"`
	All      []MatchSpec `yaml:"all,omitempty"`
}

// LoadFile reads and compiles a YAML rules file.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads and compiles YAML rules from r.
func Parse(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	return file.Compile()
}

// Compile converts the file into a Table.
func (f File) Compile() (Table, error) {
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules defined", ErrInvalidRules)
	}

	table := make(Table, 0, len(f.Rules))
	for i, spec := range f.Rules {
		p, err := spec.Match.compile()
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %w", ErrInvalidRules, i, spec.Name, err)
		}

		folder := strings.TrimSpace(spec.Folder)
		if strings.EqualFold(folder, rootFolder) {
			folder = FolderRoot
		}

		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i)
		}

		table = append(table, Rule{Name: name, Folder: folder, Match: p})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

func (m MatchSpec) compile() (Predicate, error) {
	var parts []Predicate

	if len(m.Contains) > 0 {
		parts = append(parts, Contains(m.Contains...))
	}

	if len(m.Any) > 0 {
		ps, err := compileAll(m.Any)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		parts = append(parts, AnyOf(ps...))
	}

	if len(m.All) > 0 {
		ps, err := compileAll(m.All)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		parts = append(parts, AllOf(ps...))
	}

	switch len(parts) {
	case 0:
		return nil, errors.New("empty match expression")
	case 1:
		return parts[0], nil
	default:
		return AllOf(parts...), nil
	}
}

func compileAll(specs []MatchSpec) ([]Predicate, error) {
	ps := make([]Predicate, 0, len(specs))
	for _, s := range specs {
		p, err := s.compile()
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}
