package render

import (
	"fmt"
	"strings"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/classify"
	"github.com/chazu/vkgen/decl"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/naming"
)

// ArgView is a function argument with its annotations split off and its
// wrapper type resolved.
type ArgView struct {
	Name           string
	Type           string
	Array          string
	WrapType       string
	WrapParams     string // defaults to Name
	CType          string
	NumPtr         int
	NeedsAmpersand bool
	Count          string
	LogCondition   string
	RemoveMapping  bool

	cls *classify.Classifier
}

// Category classifies the argument type. It is computed on demand so that
// artifacts which never print categories do not report unknown types.
func (a *ArgView) Category() string {
	return a.cls.Classify(a.Type).String()
}

// Decl returns the C declaration, e.g. "const float blendConstants[4]".
func (a *ArgView) Decl() string {
	return a.Type + " " + a.Name + a.Array
}

func newArgView(f metadata.Field, cls *classify.Classifier) (*ArgView, error) {
	d, err := decl.Decompose(f.Name, f.Type)
	if err != nil {
		return nil, err
	}
	if d.Bitfield != "" {
		return nil, fmt.Errorf("argument %s has a bit-field width %q", d.Name, d.Bitfield)
	}
	wrapParams := f.WrapParams
	if wrapParams == "" {
		wrapParams = d.Name
	}
	return &ArgView{
		Name:           d.Name,
		Type:           d.Type,
		Array:          d.Array,
		WrapType:       f.WrapType,
		WrapParams:     wrapParams,
		CType:          cls.CType(d.Type, f.WrapType),
		NumPtr:         decl.PointerDepth(d.Type),
		NeedsAmpersand: cls.NeedsAddressOf(d.Type, f.WrapType),
		Count:          f.Count,
		LogCondition:   f.LogCondition,
		RemoveMapping:  f.RemoveMapping,
		cls:            cls,
	}, nil
}

// ReturnView is a function's return value.
type ReturnView struct {
	Type       string
	WrapType   string
	WrapParams string
	CType      string
}

// IsVoid reports whether nothing is returned.
func (r ReturnView) IsVoid() bool { return r.Type == "" || r.Type == "void" }

// FuncView is one version of a function prepared for the templates.
type FuncView struct {
	Name         string
	Version      int
	Enabled      bool
	Level        metadata.Level
	Types        []string
	ID           string
	CName        string
	TypeFlags    string
	Return       ReturnView
	Args         []*ArgView
	CustomDriver bool
	ExecOverride bool
	RecWrap      bool
	RecCond      string
	PreToken     bool
	PostToken    bool
	StateTrack   bool
	EndFrameTag  bool
	Custom       bool
	LogCode      string
}

func newFuncView(f metadata.Function, cls *classify.Classifier) (*FuncView, error) {
	v := &FuncView{
		Name:         f.Name,
		Version:      f.Version,
		Enabled:      f.Enabled,
		Level:        f.Level,
		Types:        f.Types,
		ID:           naming.ID(f.Name, f.Version),
		CName:        naming.CName(f.Name, f.Version),
		TypeFlags:    naming.FuncTypeFlags(f.Types),
		CustomDriver: f.CustomDriver,
		ExecOverride: f.ExecOverride,
		RecWrap:      f.RecWrap,
		RecCond:      f.RecCond,
		PreToken:     f.PreToken,
		PostToken:    f.PostToken,
		StateTrack:   f.StateTrack,
		EndFrameTag:  f.EndFrameTag,
		Custom:       f.Custom,
	}
	v.Return = ReturnView{
		Type:       f.Return.Type,
		WrapType:   f.Return.WrapType,
		WrapParams: f.Return.WrapParams,
	}
	if !v.Return.IsVoid() {
		v.Return.CType = cls.CType(f.Return.Type, f.Return.WrapType)
	}
	for i, a := range f.Args {
		av, err := newArgView(a, cls)
		if err != nil {
			return nil, fmt.Errorf("function %s (version %d) argument %d: %w", f.Name, f.Version, i+1, err)
		}
		v.Args = append(v.Args, av)
	}
	v.LogCode = tokenLogCode(v.Args, cls)
	return v, nil
}

// HasReturn reports whether the function returns a value.
func (f *FuncView) HasReturn() bool { return !f.Return.IsVoid() }

// ReturnType returns the C return type, "void" when nothing is returned.
func (f *FuncView) ReturnType() string {
	if f.Return.IsVoid() {
		return "void"
	}
	return f.Return.Type
}

// Params returns the parameter list, e.g. "VkDevice device, const float c[4]".
func (f *FuncView) Params() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.Decl()
	}
	return strings.Join(parts, ", ")
}

// RecorderParams is Params with the return value as a leading parameter.
func (f *FuncView) RecorderParams() string {
	params := f.Params()
	if !f.HasReturn() {
		return params
	}
	if params == "" {
		return f.Return.Type + " return_value"
	}
	return f.Return.Type + " return_value, " + params
}

// Initializers returns the constructor member initializers of the recorder
// class, e.g. "_return_value(return_value), _device(device)".
func (f *FuncView) Initializers() string {
	var parts []string
	if f.HasReturn() {
		wrap := f.Return.WrapParams
		if wrap == "" {
			wrap = "return_value"
		}
		parts = append(parts, "_return_value("+wrap+")")
	}
	for _, a := range f.Args {
		parts = append(parts, "_"+a.Name+"("+a.WrapParams+")")
	}
	return strings.Join(parts, ", ")
}

// ArgNames returns the argument names separated by commas.
func (f *FuncView) ArgNames() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.Name
	}
	return strings.Join(parts, ", ")
}

// Call returns the arguments formatted for a call, e.g. "(device, pInfo)".
func (f *FuncView) Call() string { return f.call(false, "") }

// CallWithReturn is Call with "return_value" prepended for non-void
// functions.
func (f *FuncView) CallWithReturn() string { return f.call(true, "") }

// RecorderCall is CallWithReturn with the recorder appended.
func (f *FuncView) RecorderCall() string { return f.call(true, "_recorder") }

func (f *FuncView) call(withReturn bool, extra string) string {
	var parts []string
	if withReturn && f.HasReturn() {
		parts = append(parts, "return_value")
	}
	for _, a := range f.Args {
		parts = append(parts, a.Name)
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// DriverDefinition returns the driver table entry, e.g.
// VK_DEVICE_LEVEL_FUNCTION(void_t, vkCmdDraw, (VkCommandBuffer cb), (cb), cb).
// Instance and device level entries pass their dispatchable first argument.
func (f *FuncView) DriverDefinition() (string, error) {
	ret := f.Return.Type
	if f.Return.IsVoid() {
		ret = "void_t"
	}
	custom := ""
	if f.CustomDriver {
		custom = "CUSTOM_"
	}
	first := ""
	if f.Level == metadata.InstanceLevel || f.Level == metadata.DeviceLevel {
		if len(f.Args) == 0 {
			return "", fmt.Errorf("%s level function %s has no dispatchable argument", f.Level, f.Name)
		}
		first = ", " + f.Args[0].Name
	}
	return fmt.Sprintf("VK_%s%s_LEVEL_FUNCTION(%s, %s, (%s), %s%s)",
		custom, f.Level.Macro(), ret, f.Name, f.Params(), f.Call(), first), nil
}

// DriverCall returns the statement that forwards a call to the driver.
func (f *FuncView) DriverCall() string {
	prefix := "drvVk."
	if f.ExecOverride {
		prefix = "execWrap_"
	}
	assign := ""
	if f.HasReturn() {
		assign = "auto return_value = "
	}
	return assign + prefix + f.Name + f.Call() + ";"
}

// Inherit returns the recorder base class of the function.
func (f *FuncView) Inherit() (string, error) {
	base, err := naming.InheritType(f.Types)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.Name, err)
	}
	return base, nil
}

// FieldView is a struct member prepared for the templates.
type FieldView struct {
	Name         string
	Type         string
	Array        string
	Bitfield     string
	WrapType     string
	WrapParams   string
	CType        string
	Count        string
	LogCondition string
}

// Decl returns the member declaration, e.g. "uint32_t mask:8".
func (fv FieldView) Decl() string {
	return fv.Type + " " + fv.Name + fv.Array + fv.Bitfield
}

// StructView is one version of a struct prepared for the templates.
type StructView struct {
	Name         string // without trailing underscores
	RawName      string
	Version      int
	Enabled      bool
	Union        bool
	Custom       bool
	DeclareArray bool
	CName        string
	Fields       []FieldView
	LogCode      string
}

// Keyword returns "union" or "struct".
func (s *StructView) Keyword() string {
	if s.Union {
		return "union"
	}
	return "struct"
}

func newStructView(s metadata.Struct, cls *classify.Classifier) (*StructView, error) {
	name := catalog.CanonicalStructName(s.Name)
	v := &StructView{
		Name:         name,
		RawName:      s.Name,
		Version:      s.Version,
		Enabled:      s.Enabled,
		Union:        s.IsUnion(),
		Custom:       s.Custom,
		DeclareArray: s.DeclareArray,
		CName:        naming.CName(name, s.Version),
	}
	for _, f := range s.Fields {
		d, err := decl.Decompose(f.Name, f.Type)
		if err != nil {
			return nil, fmt.Errorf("struct %s (version %d) field %s: %w", s.Name, s.Version, f.Name, err)
		}
		wrapParams := f.WrapParams
		if wrapParams == "" {
			wrapParams = d.Name
		}
		v.Fields = append(v.Fields, FieldView{
			Name:         d.Name,
			Type:         d.Type,
			Array:        d.Array,
			Bitfield:     d.Bitfield,
			WrapType:     f.WrapType,
			WrapParams:   wrapParams,
			CType:        cls.CType(d.Type, f.WrapType),
			Count:        f.Count,
			LogCondition: f.LogCondition,
		})
	}
	v.LogCode = structLogCode(v.Fields, cls)
	return v, nil
}

// EnumeratorView is an enumerator with its value in C hex notation.
type EnumeratorView struct {
	Name  string
	Value int64
	Hex   string
}

// EnumView is an enum prepared for the templates.
type EnumView struct {
	Name        string
	Size        int
	Enumerators []EnumeratorView
}

// Is64 reports whether the enum is 64 bits wide.
func (e EnumView) Is64() bool { return e.Size == 64 }

func newEnumView(e metadata.Enum) EnumView {
	v := EnumView{Name: e.Name, Size: e.Size}
	for _, en := range e.Enumerators {
		v.Enumerators = append(v.Enumerators, EnumeratorView{
			Name:  en.Name,
			Value: en.Value,
			Hex:   naming.Hex(en.Value),
		})
	}
	return v
}
