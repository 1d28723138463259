// Package render turns classified, ordered metadata into the generated C++
// sources, export lists and the layer manifest.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Artifact is one generated file.
type Artifact struct {
	Name     string
	Path     string // relative to the output root, slash separated
	Template string // empty for artifacts encoded in Go

	Library string // .def files: the exported library
	Iface   bool   // recorder wrapper: emit the abstract interface

	encode func(*Input) ([]byte, error)
}

// Artifacts lists every artifact in generation order.
var Artifacts = []Artifact{
	{Name: "layer-json", Path: "layer/VkLayer_vulkan_GITS_recorder.json", encode: encodeLayerManifest},
	{Name: "layer-def", Path: "layer/vkLayer.def", Template: "vkX.def.tmpl", Library: "layer"},
	{Name: "plugin-def", Path: "interceptor/vkPlugin.def", Template: "vkX.def.tmpl", Library: "plugin"},
	{Name: "drivers", Path: "common/include/vulkanDriversAuto.inl", Template: "vulkanDriversAuto.inl.tmpl"},
	{Name: "id-switch", Path: "common/include/vulkanIDswitch.h", Template: "vulkanIDswitch.h.tmpl"},
	{Name: "log-inl", Path: "common/include/vulkanLogAuto.inl", Template: "vulkanLogAuto.inl.tmpl"},
	{Name: "log-cpp", Path: "common/vulkanLogAuto.cpp", Template: "vulkanLogAuto.cpp.tmpl"},
	{Name: "recorder-iface", Path: "recorder/include/vulkanRecorderWrapperIfaceAuto.h", Template: "vulkanRecorderWrapperXAuto.h.tmpl", Iface: true},
	{Name: "recorder-h", Path: "recorder/include/vulkanRecorderWrapperAuto.h", Template: "vulkanRecorderWrapperXAuto.h.tmpl"},
	{Name: "recorder-cpp", Path: "recorder/vulkanRecorderWrapperAuto.cpp", Template: "vulkanRecorderWrapperAuto.cpp.tmpl"},
	{Name: "functions-h", Path: "common/include/vulkanFunctions.h", Template: "vulkanFunctions.h.tmpl"},
	{Name: "functions-cpp", Path: "common/vulkanFunctions.cpp", Template: "vulkanFunctions.cpp.tmpl"},
	{Name: "prepost", Path: "interceptor/vulkanPrePostAuto.cpp", Template: "vulkanPrePostAuto.cpp.tmpl"},
	{Name: "header", Path: "common/include/vulkanHeader.h", Template: "vulkanHeader.h.tmpl"},
	{Name: "tracer-h", Path: "common/include/vulkanTracerAuto.h", Template: "vulkanTracerAuto.h.tmpl"},
	{Name: "tracer-cpp", Path: "common/vulkanTracerAuto.cpp", Template: "vulkanTracerAuto.cpp.tmpl"},
	{Name: "lua-enums", Path: "common/include/vulkanLuaEnums.h", Template: "vulkanLuaEnums.h.tmpl"},
	{Name: "struct-storage", Path: "common/include/vulkanStructStorageAuto.h", Template: "vulkanStructStorageAuto.h.tmpl"},
	{Name: "arguments", Path: "common/include/vulkanArgumentsAuto.h", Template: "vulkanArgumentsAuto.h.tmpl"},
	{Name: "ccode-arguments", Path: "CCodeFiles/src/include/vulkanCCodeArgumentsAuto.h", Template: "vulkanCCodeArgumentsAuto.h.tmpl"},
}

// Lookup finds an artifact by name.
func Lookup(name string) (Artifact, bool) {
	for _, a := range Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Names returns the artifact names in generation order.
func Names() []string {
	names := make([]string, len(Artifacts))
	for i, a := range Artifacts {
		names[i] = a.Name
	}
	return names
}

// ArtifactError reports a failure to render one artifact.
type ArtifactError struct {
	Artifact string
	Template string
	Err      error
}

func (e *ArtifactError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("render %s: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("render %s (template %s): %v", e.Artifact, e.Template, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// page is the data handed to a template.
type page struct {
	*Input
	Artifact Artifact
}

// Library returns the library name for .def artifacts.
func (p page) Library() string {
	if p.Artifact.Library == "plugin" {
		return p.Layer.PluginLibrary
	}
	return p.Layer.LayerLibrary
}

// Render produces the content of one artifact.
func (r *Renderer) Render(a Artifact, in *Input) ([]byte, error) {
	if a.encode != nil {
		data, err := a.encode(in)
		if err != nil {
			return nil, &ArtifactError{Artifact: a.Name, Err: err}
		}
		return data, nil
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, a.Template, page{Input: in, Artifact: a}); err != nil {
		return nil, &ArtifactError{Artifact: a.Name, Template: a.Template, Err: err}
	}
	return normalizeNewlines(buf.Bytes()), nil
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

type layerManifest struct {
	FileFormatVersion string      `json:"file_format_version"`
	Layer             layerRecord `json:"layer"`
}

type layerRecord struct {
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	LibraryPath           string `json:"library_path"`
	APIVersion            string `json:"api_version"`
	ImplementationVersion string `json:"implementation_version"`
	Description           string `json:"description"`
}

func encodeLayerManifest(in *Input) ([]byte, error) {
	if in.Layer.LibraryPath == "" {
		return nil, fmt.Errorf("layer library path is not set")
	}
	m := layerManifest{
		FileFormatVersion: "1.1.0",
		Layer: layerRecord{
			Name:                  in.Layer.Name,
			Type:                  "GLOBAL",
			LibraryPath:           in.Layer.LibraryPath,
			APIVersion:            in.Layer.APIVersion,
			ImplementationVersion: in.Layer.ImplementationVersion,
			Description:           in.Layer.Description,
		},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
