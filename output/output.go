// Package output writes generated artifacts atomically and records what was
// written in a generation stamp, so that later runs can tell hand-edited
// files and stale outputs apart.
package output

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
)

// StampName is the stamp file written to the output root.
const StampName = ".vkgen-stamp.cbor"

// Artifact is a rendered file ready to be written.
type Artifact struct {
	Name string
	Path string // slash separated, relative to the output root
	Data []byte
}

// Stamp records the inputs and outputs of the last generation.
type Stamp struct {
	MetadataDigest []byte            `cbor:"1,keyasint"`
	Files          map[string][]byte `cbor:"2,keyasint"`
}

var stampEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("output: failed to create CBOR enc mode: %v", err))
	}
	stampEncMode = em
}

// Digest returns the SHA-256 of data.
func Digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ReadStamp loads the stamp from root. A missing stamp yields an empty one.
func ReadStamp(root string) (*Stamp, error) {
	data, err := os.ReadFile(filepath.Join(root, StampName))
	if os.IsNotExist(err) {
		return &Stamp{Files: map[string][]byte{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var s Stamp
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("output: unmarshal stamp: %w", err)
	}
	if s.Files == nil {
		s.Files = map[string][]byte{}
	}
	return &s, nil
}

// MarshalStamp serializes a stamp to canonical CBOR.
func MarshalStamp(s *Stamp) ([]byte, error) {
	return stampEncMode.Marshal(s)
}

// Result lists what Write did, by artifact path.
type Result struct {
	Written    []string
	Unchanged  []string
	HandEdited []string // overwritten although they differed from the stamp
}

// Writer writes artifacts below Root.
type Writer struct {
	Root string
	log  commonlog.Logger
}

// NewWriter returns a writer for root. A nil log selects the package logger.
func NewWriter(root string, log commonlog.Logger) *Writer {
	if log == nil {
		log = commonlog.GetLogger("vkgen.output")
	}
	return &Writer{Root: root, log: log}
}

// Write writes every artifact and then the stamp. A failing artifact does
// not stop the others; the failures are returned joined.
func (w *Writer) Write(arts []Artifact, metadataDigest []byte) (Result, error) {
	var res Result
	stamp, err := ReadStamp(w.Root)
	if err != nil {
		w.log.Warningf("ignoring unreadable stamp: %v", err)
		stamp = &Stamp{Files: map[string][]byte{}}
	}

	var errs []error
	for _, a := range arts {
		target := filepath.Join(w.Root, filepath.FromSlash(a.Path))
		existing, err := os.ReadFile(target)
		switch {
		case err == nil && bytes.Equal(existing, a.Data):
			res.Unchanged = append(res.Unchanged, a.Path)
			stamp.Files[a.Path] = Digest(a.Data)
			continue
		case err == nil:
			if want, ok := stamp.Files[a.Path]; ok && !bytes.Equal(want, Digest(existing)) {
				w.log.Warningf("%s was edited by hand; overwriting", a.Path)
				res.HandEdited = append(res.HandEdited, a.Path)
			}
		case !os.IsNotExist(err):
			errs = append(errs, fmt.Errorf("%s: %w", a.Path, err))
			continue
		}

		w.log.Infof("Generating %s", a.Path)
		if err := WriteFile(target, a.Data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Path, err))
			continue
		}
		res.Written = append(res.Written, a.Path)
		stamp.Files[a.Path] = Digest(a.Data)
	}

	stamp.MetadataDigest = metadataDigest
	data, err := MarshalStamp(stamp)
	if err == nil {
		err = WriteFile(filepath.Join(w.Root, StampName), data)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("writing stamp: %w", err))
	}
	return res, errors.Join(errs...)
}

// WriteFile replaces path with data through a temporary file in the same
// directory. On failure the previous content is left in place.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// Stale returns the paths of artifacts whose file under root is missing or
// differs from the rendered bytes, sorted.
func Stale(root string, arts []Artifact) ([]string, error) {
	var stale []string
	for _, a := range arts {
		existing, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(a.Path)))
		if os.IsNotExist(err) {
			stale = append(stale, a.Path)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(existing, a.Data) {
			stale = append(stale, a.Path)
		}
	}
	sort.Strings(stale)
	return stale, nil
}
