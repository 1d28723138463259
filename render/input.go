package render

import (
	"sort"

	"github.com/chazu/vkgen/classify"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/order"
	"github.com/chazu/vkgen/versions"
)

// Layer holds the settings written to the Vulkan layer manifest.
type Layer struct {
	Name                  string
	LibraryPath           string
	LayerLibrary          string // file name listed in the layer .def file
	PluginLibrary         string // file name listed in the interceptor .def file
	APIVersion            string
	ImplementationVersion string
	Description           string
}

// LevelGroup is the functions of one dispatch level.
type LevelGroup struct {
	Level     metadata.Level
	Macro     string
	Functions []*FuncView
}

// Input is everything the templates can see. It is built once per run.
type Input struct {
	EnabledFunctions []*FuncView // enabled versions, input order
	NewestFunctions  []*FuncView // newest version per name
	Dispatched       []*FuncView // newest, without prototypes
	Exports          []string    // names of Dispatched, sorted
	FunctionsByLevel []LevelGroup

	OrderedStructs []*StructView // newest, dependency ordered

	// EnabledStructVersions holds every enabled version of each struct,
	// oldest first. Names follow the dependency order of their newest
	// enabled version.
	EnabledStructVersions []*StructView

	Enums []EnumView

	DispatchableHandles    []string
	NonDispatchableHandles []string

	Layer Layer
}

// NewInput derives the template input from the metadata. Malformed
// declarations and struct dependency cycles are returned as errors.
func NewInput(md metadata.Provider, cls *classify.Classifier, layer Layer) (*Input, error) {
	in := &Input{Layer: layer}
	cat := cls.Catalog()

	allFuncs := md.AllFunctions()
	var err error
	if in.EnabledFunctions, err = funcViews(versions.Enabled(allFuncs), cls); err != nil {
		return nil, err
	}
	if in.NewestFunctions, err = funcViews(versions.Newest(allFuncs), cls); err != nil {
		return nil, err
	}
	for _, level := range metadata.Levels {
		group := LevelGroup{Level: level, Macro: level.Macro()}
		for _, f := range in.NewestFunctions {
			if f.Level == level {
				group.Functions = append(group.Functions, f)
			}
		}
		in.FunctionsByLevel = append(in.FunctionsByLevel, group)
	}
	for _, f := range in.NewestFunctions {
		if f.Level != metadata.PrototypeLevel {
			in.Dispatched = append(in.Dispatched, f)
			in.Exports = append(in.Exports, f.Name)
		}
	}
	sort.Strings(in.Exports)

	allStructs := md.AllStructs()
	ordered, err := order.ByDependency(allStructs)
	if err != nil {
		return nil, err
	}
	if in.OrderedStructs, err = structViews(ordered, cls); err != nil {
		return nil, err
	}
	if in.EnabledStructVersions, err = enabledStructVersions(allStructs, cls); err != nil {
		return nil, err
	}

	for _, e := range md.AllEnums() {
		in.Enums = append(in.Enums, newEnumView(e))
	}

	in.DispatchableHandles = cat.DispatchableHandles()
	in.NonDispatchableHandles = cat.NonDispatchableHandles()
	return in, nil
}

func enabledStructVersions(structs []metadata.Struct, cls *classify.Classifier) ([]*StructView, error) {
	enabled := versions.Enabled(structs)
	ordered, err := order.ByDependency(enabled)
	if err != nil {
		return nil, err
	}
	byName := make(map[string][]metadata.Struct)
	for _, g := range versions.Grouped(enabled) {
		byName[g.Name] = g.Items
	}
	var all []metadata.Struct
	for _, s := range ordered {
		all = append(all, byName[s.Name]...)
	}
	return structViews(all, cls)
}

func funcViews(funcs []metadata.Function, cls *classify.Classifier) ([]*FuncView, error) {
	out := make([]*FuncView, 0, len(funcs))
	for _, f := range funcs {
		v, err := newFuncView(f, cls)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func structViews(structs []metadata.Struct, cls *classify.Classifier) ([]*StructView, error) {
	out := make([]*StructView, 0, len(structs))
	for _, s := range structs {
		v, err := newStructView(s, cls)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
