package metadata

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Load reads a metadata file (.cue or .json), validates it against the
// embedded schema and returns the resolved model.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes metadata source. filename is used for error positions and
// to pick the format; JSON is accepted as a subset of CUE.
func Parse(filename string, data []byte) (*Metadata, error) {
	switch ext := filepath.Ext(filename); ext {
	case ".cue", ".json":
	default:
		return nil, fmt.Errorf("unsupported metadata format %q (want .cue or .json)", ext)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("metadata schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parse error in %s:\n%s", filename, cueerrors.Details(err, nil))
	}

	unified := schema.LookupPath(cue.ParsePath("#Metadata")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid metadata in %s:\n%s", filename, cueerrors.Details(err, nil))
	}

	var m Metadata
	if err := unified.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	if err := m.resolveInheritance(); err != nil {
		return nil, err
	}
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &m, nil
}

// applyDefaults fills the values the schema leaves optional for the sake of
// inheritance.
func (m *Metadata) applyDefaults() {
	for i := range m.Functions {
		f := &m.Functions[i]
		if f.Level == "" {
			f.Level = DeviceLevel
		}
		if f.Return.Type == "" {
			f.Return.Type = "void"
		}
		if len(f.Types) == 0 {
			f.Types = []string{TypeParam}
		}
	}
	for i := range m.Structs {
		if m.Structs[i].Type == "" {
			m.Structs[i].Type = KindStruct
		}
	}
	for i := range m.Enums {
		if m.Enums[i].Size == 0 {
			m.Enums[i].Size = 32
		}
	}
}

// Validate checks the invariants the schema cannot express. It is also
// useful for metadata built in code rather than loaded from a file.
func (m *Metadata) Validate() error {
	for _, f := range m.Functions {
		if f.Name == "" {
			return fmt.Errorf("function with empty name")
		}
		if f.Version < 0 {
			return fmt.Errorf("function %s: negative version %d", f.Name, f.Version)
		}
		if !validLevel(f.Level) {
			return fmt.Errorf("function %s (version %d): unknown level %q", f.Name, f.Version, f.Level)
		}
		for i, a := range f.Args {
			if a.Type == "" {
				return fmt.Errorf("function %s (version %d): argument %d has no type", f.Name, f.Version, i+1)
			}
		}
	}
	for _, s := range m.Structs {
		if s.Name == "" {
			return fmt.Errorf("struct with empty name")
		}
		if s.Version < 0 {
			return fmt.Errorf("struct %s: negative version %d", s.Name, s.Version)
		}
		if s.Type != KindStruct && s.Type != KindUnion {
			return fmt.Errorf("struct %s (version %d): unknown type tag %q", s.Name, s.Version, s.Type)
		}
	}
	for _, e := range m.Enums {
		if e.Size != 32 && e.Size != 64 {
			return fmt.Errorf("enum %s: size %d is neither 32 nor 64", e.Name, e.Size)
		}
	}
	return nil
}

func validLevel(l Level) bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}
