package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/txtar"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/classify"
	"github.com/chazu/vkgen/decl"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/order"
)

var testLayer = Layer{
	Name:                  "VK_LAYER_INTEL_vulkan_GITS_recorder",
	LibraryPath:           "./libVkLayer_vulkan_GITS_recorder.so",
	LayerLibrary:          "VkLayer_vulkan_GITS_recorder.dll",
	PluginLibrary:         "vulkan-1.dll",
	APIVersion:            "1.3.248",
	ImplementationVersion: "1",
	Description:           "Vulkan layer used to record GITS Vulkan streams",
}

func newInput(t *testing.T, md *metadata.Metadata) *Input {
	t.Helper()
	cat := catalog.Build(md.Enums, md.Structs, catalog.DefaultConfig())
	cls := classify.New(cat, commonlog.GetLogger("vkgen.render.test"))
	in, err := NewInput(md, cls, testLayer)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	return in
}

// loadFixture parses a txtar archive holding metadata.cue plus want/ and
// absent/ sections keyed by artifact name.
func loadFixture(t *testing.T, path string) (*Input, *txtar.Archive) {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	for _, f := range ar.Files {
		if f.Name == "metadata.cue" {
			md, err := metadata.Parse(f.Name, f.Data)
			if err != nil {
				t.Fatalf("parsing fixture metadata: %v", err)
			}
			return newInput(t, md), ar
		}
	}
	t.Fatalf("%s has no metadata.cue section", path)
	return nil, nil
}

func renderAll(t *testing.T, in *Input) map[string]string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make(map[string]string)
	for _, a := range Artifacts {
		data, err := r.Render(a, in)
		if err != nil {
			t.Fatalf("Render(%s): %v", a.Name, err)
		}
		out[a.Name] = string(data)
	}
	return out
}

func TestRenderFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			in, ar := loadFixture(t, path)
			rendered := renderAll(t, in)

			for _, f := range ar.Files {
				kind, artifact, ok := strings.Cut(f.Name, "/")
				if !ok {
					continue
				}
				got, found := rendered[artifact]
				if !found {
					t.Errorf("section %s names unknown artifact %q", f.Name, artifact)
					continue
				}
				for _, line := range strings.Split(string(f.Data), "\n") {
					if strings.TrimSpace(line) == "" {
						continue
					}
					switch kind {
					case "want":
						if !strings.Contains(got, line) {
							t.Errorf("%s: missing line\n  %s\n--- got ---\n%s", artifact, line, got)
						}
					case "absent":
						if strings.Contains(got, line) {
							t.Errorf("%s: unexpected %q", artifact, line)
						}
					default:
						t.Fatalf("unknown section kind %q", kind)
					}
				}
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	in1, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))
	in2, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))
	first := renderAll(t, in1)
	second := renderAll(t, in2)
	for name, content := range first {
		if second[name] != content {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestDefExact(t *testing.T) {
	in, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))
	rendered := renderAll(t, in)
	want := "LIBRARY VkLayer_vulkan_GITS_recorder.dll\nEXPORTS\n    vkCmdDraw\n    vkCmdSetBlendConstants\n    vkCreateInstance\n"
	if got := rendered["layer-def"]; got != want {
		t.Errorf("layer-def =\n%q\nwant\n%q", got, want)
	}
}

func TestHeaderStructOrder(t *testing.T) {
	in, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))
	header := renderAll(t, in)["header"]

	extent := strings.Index(header, "typedef struct VkExtent2D {")
	outer := strings.Index(header, "typedef struct VkOuter {")
	if extent < 0 || outer < 0 {
		t.Fatalf("struct declarations missing:\n%s", header)
	}
	if extent > outer {
		t.Error("VkExtent2D must be declared before VkOuter, which embeds it")
	}
}

func TestEnabledStructVersions(t *testing.T) {
	in, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))

	var got []string
	for _, s := range in.EnabledStructVersions {
		got = append(got, s.CName)
	}
	// VkBar version 1 and VkOuter embed VkExtent2D; VkBar becomes ready in
	// the first pass, VkOuter only in the second.
	want := []string{"CVkExtent2D", "CVkPacked", "CVkClearColorValue", "CVkBar", "CVkBar_V1", "CVkOuter"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("EnabledStructVersions = %v, want %v", got, want)
	}

	arguments := renderAll(t, in)["arguments"]
	extent := strings.Index(arguments, "class CVkExtent2D :")
	v0 := strings.Index(arguments, "class CVkBar :")
	v1 := strings.Index(arguments, "class CVkBar_V1 :")
	if extent < 0 || v0 < 0 || v1 < 0 {
		t.Fatalf("argument classes missing:\n%s", arguments)
	}
	if !(extent < v0 && v0 < v1) {
		t.Errorf("argument classes out of order: CVkExtent2D@%d CVkBar@%d CVkBar_V1@%d", extent, v0, v1)
	}
}

func TestLayerManifest(t *testing.T) {
	in, _ := loadFixture(t, filepath.Join("testdata", "basic.txtar"))
	a, _ := Lookup("layer-json")
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Render(a, in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var m struct {
		FileFormatVersion string `json:"file_format_version"`
		Layer             struct {
			Name        string `json:"name"`
			Type        string `json:"type"`
			LibraryPath string `json:"library_path"`
		} `json:"layer"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not JSON: %v\n%s", err, data)
	}
	if m.FileFormatVersion != "1.1.0" || m.Layer.Type != "GLOBAL" {
		t.Errorf("manifest header = %+v", m)
	}
	if m.Layer.LibraryPath != testLayer.LibraryPath {
		t.Errorf("library_path = %q", m.Layer.LibraryPath)
	}

	// Windows paths keep their backslash, escaped once by JSON.
	in.Layer.LibraryPath = `.\VkLayer_vulkan_GITS_recorder.dll`
	data, err = r.Render(a, in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`".\\VkLayer_vulkan_GITS_recorder.dll"`)) {
		t.Errorf("windows path not escaped as expected:\n%s", data)
	}

	in.Layer.LibraryPath = ""
	_, err = r.Render(a, in)
	var ae *ArtifactError
	if !errors.As(err, &ae) || ae.Artifact != "layer-json" {
		t.Errorf("empty library path: err = %v, want ArtifactError for layer-json", err)
	}
}

func TestRenderMultipleTypesFails(t *testing.T) {
	md := &metadata.Metadata{
		Functions: []metadata.Function{{
			Name:    "vkQueueSubmit",
			Enabled: true,
			Level:   metadata.DeviceLevel,
			Types:   []string{"PARAM", "QUEUE_SUBMIT"},
			Return:  metadata.ReturnValue{Type: "VkResult"},
			Args:    []metadata.Field{{Name: "queue", Type: "VkQueue"}},
		}},
	}
	in := newInput(t, md)
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}

	a, _ := Lookup("functions-h")
	_, err = r.Render(a, in)
	var ae *ArtifactError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *ArtifactError", err)
	}
	if ae.Template != "vulkanFunctions.h.tmpl" {
		t.Errorf("Template = %q", ae.Template)
	}
	if !strings.Contains(err.Error(), "vkQueueSubmit") {
		t.Errorf("error %q does not name the function", err)
	}

	// Artifacts that never ask for the base class still render.
	a, _ = Lookup("drivers")
	if _, err := r.Render(a, in); err != nil {
		t.Errorf("drivers: %v", err)
	}
}

func TestNewInputErrors(t *testing.T) {
	t.Run("bit-field argument", func(t *testing.T) {
		md := &metadata.Metadata{
			Functions: []metadata.Function{{
				Name: "vkBroken", Enabled: true, Level: metadata.DeviceLevel,
				Return: metadata.ReturnValue{Type: "void"},
				Args:   []metadata.Field{{Name: "device", Type: "VkDevice"}, {Name: "mask:8", Type: "uint32_t"}},
			}},
		}
		cls := classify.New(catalog.Build(nil, nil, catalog.DefaultConfig()), nil)
		_, err := NewInput(md, cls, testLayer)
		if err == nil || !strings.Contains(err.Error(), "vkBroken") {
			t.Errorf("err = %v, want error naming vkBroken", err)
		}
	})

	t.Run("annotation on both sides", func(t *testing.T) {
		md := &metadata.Metadata{
			Structs: []metadata.Struct{{
				Name: "VkBad", Enabled: true, Type: metadata.KindStruct,
				Fields: []metadata.Field{{Name: "values[2]", Type: "float[2]"}},
			}},
		}
		cls := classify.New(catalog.Build(nil, md.Structs, catalog.DefaultConfig()), nil)
		_, err := NewInput(md, cls, testLayer)
		var ae *decl.AnnotationError
		if !errors.As(err, &ae) {
			t.Errorf("err = %v, want *decl.AnnotationError", err)
		}
	})

	t.Run("struct cycle", func(t *testing.T) {
		md := &metadata.Metadata{
			Structs: []metadata.Struct{
				{Name: "VkA", Enabled: true, Type: metadata.KindStruct, Fields: []metadata.Field{{Name: "b", Type: "VkB"}}},
				{Name: "VkB", Enabled: true, Type: metadata.KindStruct, Fields: []metadata.Field{{Name: "a", Type: "VkA"}}},
			},
		}
		cls := classify.New(catalog.Build(nil, md.Structs, catalog.DefaultConfig()), nil)
		_, err := NewInput(md, cls, testLayer)
		var ce *order.CycleError
		if !errors.As(err, &ce) {
			t.Fatalf("err = %v, want *order.CycleError", err)
		}
		if len(ce.Stuck) != 2 {
			t.Errorf("Stuck = %v, want both structs", ce.Stuck)
		}
	})
}

func TestStructLogCode(t *testing.T) {
	cls := classify.New(catalog.Build(
		[]metadata.Enum{{Name: "VkFooFlagBits", Size: 32}}, nil, catalog.DefaultConfig()), nil)

	tests := []struct {
		name   string
		fields []FieldView
		want   string
	}{
		{
			"plain",
			[]FieldView{{Name: "width", Type: "uint32_t"}, {Name: "height", Type: "uint32_t"}},
			`*this << "{ width: " << c.width << ", height: " << c.height << " }";`,
		},
		{
			"flags cast",
			[]FieldView{{Name: "flags", Type: "VkFooFlags"}},
			`*this << "{ flags: " << (VkFooFlagBits)c.flags << " }";`,
		},
		{
			"pNext",
			[]FieldView{{Name: "pNext", Type: "const void*"}},
			`*this << "{ pNext: " << (PNextPointerTypeTag)c.pNext << " }";`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := structLogCode(tt.fields, cls); got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestStructLogCodeCountedPointer(t *testing.T) {
	cls := classify.New(catalog.Build(nil, nil, catalog.DefaultConfig()), nil)
	fields := []FieldView{
		{Name: "count", Type: "uint32_t"},
		{Name: "pItems", Type: "const uint32_t*", Count: "count", LogCondition: "c.count > 0"},
	}
	got := structLogCode(fields, cls)
	for _, want := range []string{
		"  if ((isTraceDataOptPresent(TraceData::VK_STRUCTS)) && (c.pItems != nullptr) && (c.count > 0)) {\n",
		"    for (uint32_t i = 0; i < (uint32_t)c.count; ++i) {\n",
		"      *this << \" [\" << i << \"]:\" << c.pItems[i];\n",
		"    *this << (void*)c.pItems;\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, `  *this << " }";`) {
		t.Errorf("unexpected ending:\n%s", got)
	}
}

func TestTokenLogCode(t *testing.T) {
	cls := classify.New(catalog.Build(nil, nil, catalog.DefaultConfig()), nil)
	args := func(fields ...metadata.Field) []*ArgView {
		var out []*ArgView
		for _, f := range fields {
			a, err := newArgView(f, cls)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, a)
		}
		return out
	}

	if got := tokenLogCode(nil, cls); got != `"( )"` {
		t.Errorf("no args = %s", got)
	}
	if got := tokenLogCode(args(metadata.Field{Name: "unused", Type: "void"}), cls); got != `"( )"` {
		t.Errorf("void only = %s", got)
	}

	got := tokenLogCode(args(metadata.Field{Name: "device", Type: "VkDevice"}), cls)
	if want := `"( VkDevice device=" << device << " )"`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	got = tokenLogCode(args(
		metadata.Field{Name: "pCount", Type: "uint32_t*"},
		metadata.Field{Name: "pProps", Type: "VkLayerProperties*", Count: "pCount"},
	), cls)
	for _, want := range []string{
		"(pProps != nullptr) && (pCount != nullptr)",
		"i < (uint32_t)*pCount;",
		"VkLog(TRACE, RAW) << \" [\" << i << \"]:\" << pProps[i];",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}

func TestNamesMatchArtifacts(t *testing.T) {
	names := Names()
	if len(names) != len(Artifacts) {
		t.Fatalf("Names() = %d entries, want %d", len(names), len(Artifacts))
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate artifact name %q", n)
		}
		seen[n] = true
		if _, ok := Lookup(n); !ok {
			t.Errorf("Lookup(%q) failed", n)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup of unknown name succeeded")
	}
}
