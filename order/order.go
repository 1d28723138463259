// Package order sorts struct declarations so that every struct is declared
// after the structs it embeds.
package order

import (
	"fmt"
	"strings"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/decl"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/versions"
)

// Stuck identifies a struct that could not be declared.
type Stuck struct {
	Name    string
	Version int
}

// CycleError reports structs whose dependencies never became declarable.
type CycleError struct {
	Stuck []Stuck  // in input order
	Cycle []string // e.g. [A B A]; empty if no cycle was found among Stuck
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Stuck))
	for i, s := range e.Stuck {
		names[i] = fmt.Sprintf("%s (version %d)", s.Name, s.Version)
	}
	msg := "unresolvable struct dependencies: " + strings.Join(names, ", ")
	if len(e.Cycle) > 0 {
		msg += "; cycle " + strings.Join(e.Cycle, " -> ")
	}
	return msg
}

// DuplicateError reports two distinct struct entries that declare the same
// canonical name, such as VkFoo and VkFoo_.
type DuplicateError struct {
	Name   string // canonical
	First  Stuck
	Second Stuck
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("struct %s declared twice: %s (version %d) and %s (version %d)",
		e.Name, e.First.Name, e.First.Version, e.Second.Name, e.Second.Version)
}

type node struct {
	s    metadata.Struct
	name string
	deps []string
}

// ByDependency returns the newest version of every struct, ordered so that
// each struct follows the structs its fields name by value or by pointer.
// A pointer back to the struct itself does not count. Structs that are
// ready in the same pass keep their input order.
func ByDependency(structs []metadata.Struct) ([]metadata.Struct, error) {
	newest := versions.Newest(structs)

	known := make(map[string]bool, len(newest))
	first := make(map[string]metadata.Struct, len(newest))
	for _, s := range newest {
		name := catalog.CanonicalStructName(s.Name)
		if prev, dup := first[name]; dup {
			return nil, &DuplicateError{
				Name:   name,
				First:  Stuck{Name: prev.Name, Version: prev.Version},
				Second: Stuck{Name: s.Name, Version: s.Version},
			}
		}
		first[name] = s
		known[name] = true
	}

	nodes := make([]node, 0, len(newest))
	for _, s := range newest {
		deps, err := dependencies(s, known)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node{s: s, name: catalog.CanonicalStructName(s.Name), deps: deps})
	}

	declared := make(map[string]bool, len(nodes))
	out := make([]metadata.Struct, 0, len(nodes))
	for pass := 0; len(out) < len(nodes); pass++ {
		if pass >= len(nodes) {
			return nil, cycleError(nodes, declared)
		}
		progress := false
		for _, n := range nodes {
			if declared[n.name] || !ready(n, declared) {
				continue
			}
			declared[n.name] = true
			out = append(out, n.s)
			progress = true
		}
		if !progress {
			return nil, cycleError(nodes, declared)
		}
	}
	return out, nil
}

func dependencies(s metadata.Struct, known map[string]bool) ([]string, error) {
	self := catalog.CanonicalStructName(s.Name)
	seen := make(map[string]bool)
	var deps []string
	for _, f := range s.Fields {
		d, err := decl.Decompose(f.Name, f.Type)
		if err != nil {
			return nil, fmt.Errorf("struct %s (version %d) field %s: %w", s.Name, s.Version, f.Name, err)
		}
		bare := decl.Undecorate(d.Type)
		if !known[bare] || seen[bare] {
			continue
		}
		if bare == self && decl.PointerDepth(d.Type) > 0 {
			continue
		}
		seen[bare] = true
		deps = append(deps, bare)
	}
	return deps, nil
}

func ready(n node, declared map[string]bool) bool {
	for _, d := range n.deps {
		if !declared[d] {
			return false
		}
	}
	return true
}

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

func cycleError(nodes []node, declared map[string]bool) *CycleError {
	err := &CycleError{}
	edges := make(map[string][]string)
	var starts []string
	for _, n := range nodes {
		if declared[n.name] {
			continue
		}
		err.Stuck = append(err.Stuck, Stuck{Name: n.s.Name, Version: n.s.Version})
		edges[n.name] = n.deps
		starts = append(starts, n.name)
	}
	err.Cycle = findCycle(starts, edges)
	return err
}

// findCycle walks the undeclared subgraph depth first and returns the first
// cycle it closes, starting and ending at the same name.
func findCycle(starts []string, edges map[string][]string) []string {
	states := make(map[string]visitState, len(starts))
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		switch states[name] {
		case stateVisiting:
			for i, p := range path {
				if p == name {
					return append(append([]string(nil), path[i:]...), name)
				}
			}
			return nil
		case stateDone:
			return nil
		}
		if _, stuck := edges[name]; !stuck {
			return nil
		}

		states[name] = stateVisiting
		path = append(path, name)
		for _, next := range edges[name] {
			if cycle := visit(next); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		states[name] = stateDone
		return nil
	}

	for _, start := range starts {
		if cycle := visit(start); cycle != nil {
			return cycle
		}
	}
	return nil
}
