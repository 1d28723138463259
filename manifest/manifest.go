// Package manifest handles vkgen.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/render"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "vkgen.toml"

// Manifest represents a vkgen.toml project configuration.
type Manifest struct {
	Project  Project       `toml:"project"`
	Metadata MetadataInput `toml:"metadata"`
	Output   Output        `toml:"output"`
	IDs      IDs           `toml:"ids"`
	Layer    LayerConfig   `toml:"layer"`
	Catalog  CatalogConfig `toml:"catalog"`
	Log      LogConfig     `toml:"log"`

	// Dir is the directory containing the vkgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// MetadataInput locates the API description.
type MetadataInput struct {
	Path string `toml:"path"`
}

// Output configures where artifacts go and which are produced.
type Output struct {
	Dir  string   `toml:"dir"`
	Only []string `toml:"only"`
	Skip []string `toml:"skip"`
}

// IDs configures the ID registry.
type IDs struct {
	Registry string `toml:"registry"`
	CopyTo   string `toml:"copy-to"`
}

// LayerConfig configures the layer manifest and .def files.
type LayerConfig struct {
	Name                  string `toml:"name"`
	Platform              string `toml:"platform"`
	LibraryWindows        string `toml:"library-windows"`
	LibraryLinux          string `toml:"library-linux"`
	LayerLibrary          string `toml:"layer-library"`
	PluginLibrary         string `toml:"plugin-library"`
	APIVersion            string `toml:"api-version"`
	ImplementationVersion string `toml:"implementation-version"`
	Description           string `toml:"description"`
}

// CatalogConfig extends the built-in name lists.
type CatalogConfig struct {
	ExtraFlags           []string `toml:"extra-flags"`
	ExtraDispatchable    []string `toml:"extra-dispatchable"`
	ExtraNonDispatchable []string `toml:"extra-non-dispatchable"`
	ExtraPlatformHandles []string `toml:"extra-platform-handles"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no vkgen.toml exists, rooted
// at dir.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	return m, nil
}

// Load parses a vkgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults()

	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Metadata.Path == "" {
		m.Metadata.Path = "vulkan.cue"
	}
	if m.Output.Dir == "" {
		m.Output.Dir = "generated"
	}
	if m.IDs.Registry == "" {
		m.IDs.Registry = "vulkanIDs.h"
	}
	l := &m.Layer
	if l.Name == "" {
		l.Name = "VK_LAYER_INTEL_vulkan_GITS_recorder"
	}
	if l.Platform == "" {
		l.Platform = runtime.GOOS
	}
	if l.LibraryWindows == "" {
		l.LibraryWindows = `.\VkLayer_vulkan_GITS_recorder.dll`
	}
	if l.LibraryLinux == "" {
		l.LibraryLinux = "./libVkLayer_vulkan_GITS_recorder.so"
	}
	if l.LayerLibrary == "" {
		l.LayerLibrary = "VkLayer_vulkan_GITS_recorder.dll"
	}
	if l.PluginLibrary == "" {
		l.PluginLibrary = "vulkan-1.dll"
	}
	if l.APIVersion == "" {
		l.APIVersion = "1.3.248"
	}
	if l.ImplementationVersion == "" {
		l.ImplementationVersion = "1"
	}
	if l.Description == "" {
		l.Description = "Vulkan layer used to record GITS Vulkan streams"
	}
}

// FindAndLoad walks up from startDir to find a vkgen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns p relative to the manifest directory unless it is
// already absolute.
func (m *Manifest) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// MetadataPath returns the absolute path of the metadata file.
func (m *Manifest) MetadataPath() string { return m.Resolve(m.Metadata.Path) }

// OutputDir returns the absolute output root.
func (m *Manifest) OutputDir() string { return m.Resolve(m.Output.Dir) }

// RegistryPath returns the absolute path of the ID registry.
func (m *Manifest) RegistryPath() string { return m.Resolve(m.IDs.Registry) }

// RegistryCopyDir returns the directory the registry is copied into, or ""
// when no copy is configured. Relative values resolve against the output
// root.
func (m *Manifest) RegistryCopyDir() string {
	if m.IDs.CopyTo == "" || filepath.IsAbs(m.IDs.CopyTo) {
		return m.IDs.CopyTo
	}
	return filepath.Join(m.OutputDir(), m.IDs.CopyTo)
}

// LogFile returns the absolute log file path, or nil to log to stderr.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	p := m.Resolve(m.Log.File)
	return &p
}

// CatalogConfig returns the built-in catalog lists extended with the
// manifest's extras.
func (m *Manifest) CatalogConfig() catalog.Config {
	c := m.Catalog
	return catalog.DefaultConfig().Extend(c.ExtraFlags, c.ExtraDispatchable, c.ExtraNonDispatchable, c.ExtraPlatformHandles)
}

// RenderLayer returns the layer settings for the configured platform.
func (m *Manifest) RenderLayer() (render.Layer, error) {
	l := m.Layer
	var path string
	switch l.Platform {
	case "windows":
		path = l.LibraryWindows
	case "linux":
		path = l.LibraryLinux
	default:
		return render.Layer{}, fmt.Errorf("unsupported layer platform %q", l.Platform)
	}
	return render.Layer{
		Name:                  l.Name,
		LibraryPath:           path,
		LayerLibrary:          l.LayerLibrary,
		PluginLibrary:         l.PluginLibrary,
		APIVersion:            l.APIVersion,
		ImplementationVersion: l.ImplementationVersion,
		Description:           l.Description,
	}, nil
}
