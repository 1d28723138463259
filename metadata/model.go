// Package metadata holds the declarative description of the Vulkan API that
// drives code generation, and loads it from CUE or JSON files.
package metadata

// Metadata is the in-memory representation of the Vulkan API description.
type Metadata struct {
	Functions []Function `json:"functions"`
	Structs   []Struct   `json:"structs"`
	Enums     []Enum     `json:"enums"`
}

// Provider exposes the three queries the generator consumes. Entries may
// share a name at different versions.
type Provider interface {
	AllFunctions() []Function
	AllStructs() []Struct
	AllEnums() []Enum
}

// Level is the dispatch level of a Vulkan function.
type Level string

const (
	PrototypeLevel Level = "prototype"
	GlobalLevel    Level = "global"
	InstanceLevel  Level = "instance"
	DeviceLevel    Level = "device"
)

// Levels lists every dispatch level in emission order.
var Levels = []Level{PrototypeLevel, GlobalLevel, InstanceLevel, DeviceLevel}

// Macro returns the upper-case spelling used in generated macro names
// (e.g., "DEVICE").
func (l Level) Macro() string {
	switch l {
	case PrototypeLevel:
		return "PROTOTYPE"
	case GlobalLevel:
		return "GLOBAL"
	case InstanceLevel:
		return "INSTANCE"
	default:
		return "DEVICE"
	}
}

// Function type flags understood by the recorder.
const (
	TypeParam           = "PARAM"
	TypeQueueSubmit     = "QUEUE_SUBMIT"
	TypeCreateImage     = "CREATE_IMAGE"
	TypeCreateBuffer    = "CREATE_BUFFER"
	TypeCmdBufferSet    = "CMDBUFFER_SET"
	TypeCmdBufferBind   = "CMDBUFFER_BIND"
	TypeCmdBufferPush   = "CMDBUFFER_PUSH"
	TypeBeginRenderPass = "BEGIN_RENDERPASS"
	TypeEndRenderPass   = "END_RENDERPASS"
)

// FunctionTypes lists every known function type flag.
var FunctionTypes = []string{
	TypeParam,
	TypeQueueSubmit,
	TypeCreateImage,
	TypeCreateBuffer,
	TypeCmdBufferSet,
	TypeCmdBufferBind,
	TypeCmdBufferPush,
	TypeBeginRenderPass,
	TypeEndRenderPass,
}

// Function is one version of a Vulkan function (a "token" in the recorder).
type Function struct {
	Name         string      `json:"name"`
	Version      int         `json:"version"`
	Enabled      bool        `json:"enabled"`
	Level        Level       `json:"level"`
	Types        []string    `json:"type,omitempty"`
	Args         []Field     `json:"args,omitempty"`
	Return       ReturnValue `json:"retV"`
	CustomDriver bool        `json:"customDriver,omitempty"`
	ExecOverride bool        `json:"execOverride,omitempty"` // interceptor calls execWrap_<name>
	InheritFrom  string      `json:"inheritFrom,omitempty"`
	RecWrap      bool        `json:"recWrap,omitempty"`
	RecCond      string      `json:"recCond,omitempty"`
	PreToken     bool        `json:"preToken,omitempty"`
	PostToken    bool        `json:"postToken,omitempty"`
	StateTrack   bool        `json:"stateTrack,omitempty"`
	EndFrameTag  bool        `json:"endFrameTag,omitempty"`
	Custom       bool        `json:"custom,omitempty"`
}

// Identity returns the function's name and version.
func (f Function) Identity() (string, int) { return f.Name, f.Version }

func (f Function) IsEnabled() bool { return f.Enabled }

// HasReturn reports whether the function returns a value.
func (f Function) HasReturn() bool {
	return f.Return.Type != "" && f.Return.Type != "void"
}

// ReturnValue describes a function's return type.
type ReturnValue struct {
	Type       string `json:"type"`
	WrapType   string `json:"wrapType,omitempty"`
	WrapParams string `json:"wrapParams,omitempty"`
}

// Field is a struct member or a function argument. Name or Type may carry
// an array-size ("[4]") or bit-field width (":8") annotation, never both
// sides for the same kind.
type Field struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Count         string `json:"count,omitempty"`
	WrapType      string `json:"wrapType,omitempty"`
	WrapParams    string `json:"wrapParams,omitempty"`
	LogCondition  string `json:"logCondition,omitempty"`
	RemoveMapping bool   `json:"removeMapping,omitempty"`
}

// Struct kinds.
const (
	KindStruct = "struct"
	KindUnion  = "union"
)

// Struct is one version of a Vulkan struct or union.
type Struct struct {
	Name         string  `json:"name"`
	Version      int     `json:"version"`
	Enabled      bool    `json:"enabled"`
	Type         string  `json:"type"`
	Custom       bool    `json:"custom,omitempty"`
	DeclareArray bool    `json:"declareArray,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
}

// Identity returns the struct's name and version.
func (s Struct) Identity() (string, int) { return s.Name, s.Version }

func (s Struct) IsEnabled() bool { return s.Enabled }

// IsUnion reports whether the struct is a union.
func (s Struct) IsUnion() bool { return s.Type == KindUnion }

// Enum is a Vulkan enumeration. Enums are not versioned.
type Enum struct {
	Name        string       `json:"name"`
	Size        int          `json:"size"` // 32 or 64 bits
	Enumerators []Enumerator `json:"enumerators,omitempty"`
}

// Enumerator is a single named enum value.
type Enumerator struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// AllFunctions implements Provider.
func (m *Metadata) AllFunctions() []Function { return m.Functions }

// AllStructs implements Provider.
func (m *Metadata) AllStructs() []Struct { return m.Structs }

// AllEnums implements Provider.
func (m *Metadata) AllEnums() []Enum { return m.Enums }
