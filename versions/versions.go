// Package versions provides views over entities recorded in several
// versions under one name. None of the views modify their input.
package versions

import "sort"

// Entity is anything identified by a name and a version number.
type Entity interface {
	Identity() (name string, version int)
}

// Toggleable is an entity that can be excluded from enabled-only passes.
type Toggleable interface {
	Entity
	IsEnabled() bool
}

// Newest keeps one entity per name: the one with the highest version. When
// two entries share a name and version the later one wins; Conflicts
// reports such pairs. Names appear in the order they are first seen.
func Newest[E Entity](items []E) []E {
	index := make(map[string]int)
	var out []E
	for _, item := range items {
		name, version := item.Identity()
		i, ok := index[name]
		if !ok {
			index[name] = len(out)
			out = append(out, item)
			continue
		}
		if _, kept := out[i].Identity(); kept <= version {
			out[i] = item
		}
	}
	return out
}

// Conflict is a (name, version) pair recorded more than once.
type Conflict struct {
	Name    string
	Version int
	Count   int
}

// Conflicts lists every duplicated (name, version) pair in first-seen order.
func Conflicts[E Entity](items []E) []Conflict {
	type key struct {
		name    string
		version int
	}
	counts := make(map[key]int)
	var order []key
	for _, item := range items {
		name, version := item.Identity()
		k := key{name, version}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var out []Conflict
	for _, k := range order {
		if n := counts[k]; n > 1 {
			out = append(out, Conflict{Name: k.name, Version: k.version, Count: n})
		}
	}
	return out
}

// Group holds every recorded version of one name, oldest first.
type Group[E Entity] struct {
	Name  string
	Items []E
}

// Newest returns the last item of the group.
func (g Group[E]) Newest() E { return g.Items[len(g.Items)-1] }

// Grouped returns all versions of every name, groups sorted by name and
// items by ascending version. Entries with equal versions keep input order.
func Grouped[E Entity](items []E) []Group[E] {
	byName := make(map[string][]E)
	for _, item := range items {
		name, _ := item.Identity()
		byName[name] = append(byName[name], item)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Group[E], 0, len(names))
	for _, name := range names {
		group := byName[name]
		sort.SliceStable(group, func(i, j int) bool {
			_, vi := group[i].Identity()
			_, vj := group[j].Identity()
			return vi < vj
		})
		out = append(out, Group[E]{Name: name, Items: group})
	}
	return out
}

// Enabled returns the enabled entities in input order.
func Enabled[E Toggleable](items []E) []E {
	var out []E
	for _, item := range items {
		if item.IsEnabled() {
			out = append(out, item)
		}
	}
	return out
}
