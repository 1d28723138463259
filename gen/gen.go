// Package gen wires the metadata, catalog, classifier, renderer and writers
// into a generation run.
package gen

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/classify"
	"github.com/chazu/vkgen/idreg"
	"github.com/chazu/vkgen/manifest"
	"github.com/chazu/vkgen/metadata"
	"github.com/chazu/vkgen/output"
	"github.com/chazu/vkgen/render"
	"github.com/chazu/vkgen/versions"
)

// Generator holds everything derived from one metadata snapshot.
type Generator struct {
	m        *manifest.Manifest
	md       metadata.Provider
	log      commonlog.Logger
	cls      *classify.Classifier
	input    *render.Input
	renderer *render.Renderer
	digest   []byte
}

// New builds the catalog, classifier and render input. Struct dependency
// cycles and malformed declarations are returned as errors; version
// conflicts and catalog overlaps are logged.
func New(m *manifest.Manifest, md metadata.Provider, log commonlog.Logger) (*Generator, error) {
	if log == nil {
		log = commonlog.GetLogger("vkgen.gen")
	}

	cat := catalog.Build(md.AllEnums(), md.AllStructs(), m.CatalogConfig())
	for _, o := range cat.Overlaps() {
		log.Warningf("%s is registered as %s", o.Name, strings.Join(o.Categories, " and "))
	}
	for _, c := range versions.Conflicts(md.AllFunctions()) {
		log.Warningf("function %s version %d is defined %d times; the last one wins", c.Name, c.Version, c.Count)
	}
	for _, c := range versions.Conflicts(md.AllStructs()) {
		log.Warningf("struct %s version %d is defined %d times; the last one wins", c.Name, c.Version, c.Count)
	}

	layer, err := m.RenderLayer()
	if err != nil {
		return nil, err
	}
	cls := classify.New(cat, commonlog.GetLogger("vkgen.classify"))
	in, err := render.NewInput(md, cls, layer)
	if err != nil {
		return nil, err
	}
	r, err := render.New()
	if err != nil {
		return nil, err
	}
	return &Generator{m: m, md: md, log: log, cls: cls, input: in, renderer: r}, nil
}

// Load reads the metadata named by the manifest and calls New. The digest
// of the metadata file is recorded in the generation stamp.
func Load(m *manifest.Manifest, log commonlog.Logger) (*Generator, error) {
	path := m.MetadataPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	md, err := metadata.Parse(path, data)
	if err != nil {
		return nil, err
	}
	g, err := New(m, md, log)
	if err != nil {
		return nil, err
	}
	g.digest = output.Digest(data)
	return g, nil
}

// Classifier returns the classifier used for rendering.
func (g *Generator) Classifier() *classify.Classifier { return g.cls }

// Input returns the render input.
func (g *Generator) Input() *render.Input { return g.input }

// Selected returns the artifacts chosen by the manifest's only and skip
// lists, in generation order.
func (g *Generator) Selected() ([]render.Artifact, error) {
	for _, name := range append(append([]string(nil), g.m.Output.Only...), g.m.Output.Skip...) {
		if _, ok := render.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown artifact %q (known: %s)", name, strings.Join(render.Names(), ", "))
		}
	}
	only := toSet(g.m.Output.Only)
	skip := toSet(g.m.Output.Skip)

	var out []render.Artifact
	for _, a := range render.Artifacts {
		if len(only) > 0 && !only[a.Name] {
			continue
		}
		if skip[a.Name] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Render renders every selected artifact. A failing artifact does not stop
// the others: the successful outputs are returned together with the joined
// errors.
func (g *Generator) Render() ([]output.Artifact, error) {
	selected, err := g.Selected()
	if err != nil {
		return nil, err
	}
	var (
		outs []output.Artifact
		errs []error
	)
	for _, a := range selected {
		data, err := g.renderer.Render(a, g.input)
		if err != nil {
			g.log.Errorf("%v", err)
			errs = append(errs, err)
			continue
		}
		outs = append(outs, output.Artifact{Name: a.Name, Path: a.Path, Data: data})
	}
	if unknown := g.cls.Unknown(); len(unknown) > 0 {
		g.log.Warningf("%d types were classified as OTHER: %s", len(unknown), strings.Join(unknown, ", "))
	}
	return outs, errors.Join(errs...)
}

// Write stores the outputs below the output root and updates the stamp.
func (g *Generator) Write(outs []output.Artifact) (output.Result, error) {
	w := output.NewWriter(g.m.OutputDir(), commonlog.GetLogger("vkgen.output"))
	return w.Write(outs, g.digest)
}

// Check returns the paths of outputs that differ from the files on disk.
func (g *Generator) Check(outs []output.Artifact) ([]string, error) {
	return output.Stale(g.m.OutputDir(), outs)
}

// UpdateIDs appends missing function IDs to the registry and copies it
// into the output tree when configured.
func (g *Generator) UpdateIDs() ([]string, error) {
	return UpdateIDs(g.m, g.md.AllFunctions())
}

// UpdateIDs is the registry step on its own, for runs that do not render.
func UpdateIDs(m *manifest.Manifest, funcs []metadata.Function) ([]string, error) {
	reg := idreg.New(m.RegistryPath(), commonlog.GetLogger("vkgen.idreg"))
	added, err := reg.Update(funcs)
	if err != nil {
		return nil, err
	}
	if dir := m.RegistryCopyDir(); dir != "" {
		if err := reg.CopyTo(dir); err != nil {
			return added, err
		}
	}
	return added, nil
}
