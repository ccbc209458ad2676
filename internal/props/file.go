package props

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/magiconair/properties"
)

// HeaderComment is written above the first key of every saved file.
const HeaderComment = "Generated by tabledef"

// Extensions recognised by LoadDir.
var Extensions = []string{".properties", ".props"}

// utf8BOM is prepended by some Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses .properties text into a flat mapping. Values are taken
// literally; ${...} expressions are not expanded. A leading UTF-8 BOM
// is ignored.
func Read(r io.Reader) (map[string]string, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}
	buf = bytes.TrimPrefix(buf, utf8BOM)
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}

// Write writes m as .properties text with keys sorted.
func Write(w io.Writer, m map[string]string) error {
	p := properties.NewProperties()
	p.DisableExpansion = true
	p.WriteSeparator = "="

	for k, v := range m {
		if _, _, err := p.Set(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	p.Sort()
	if keys := p.Keys(); len(keys) > 0 {
		p.SetComment(keys[0], HeaderComment)
	}

	bw := bufio.NewWriter(w)
	if _, err := p.WriteComment(bw, "# ", properties.UTF8); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}
	return bw.Flush()
}

// LoadFile reads and decodes a definition file with default settings.
func LoadFile(path string) (*core.TableDefinition, error) {
	var d Decoder
	return d.LoadFile(path)
}

// LoadFile reads and decodes a definition file.
func (d *Decoder) LoadFile(path string) (*core.TableDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def, err := d.Decode(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// SaveFile encodes def and replaces path atomically: the text goes to a
// temp file in the same directory which is synced and renamed over path.
// Key fields the format cannot hold are rejected before anything is written.
func SaveFile(path string, def *core.TableDefinition) error {
	if err := def.ValidateKeyFields(); err != nil {
		return err
	}
	return WriteFile(path, Encode(def))
}

// WriteFile atomically writes m to path as .properties text.
func WriteFile(path string, m map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tabledef-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadDir decodes every definition file in dir with default settings.
func LoadDir(dir string) (map[string]*core.TableDefinition, error) {
	var d Decoder
	return d.LoadDir(dir)
}

// LoadDir decodes every definition file in dir, keyed by service name
// (the file name without its extension). Subdirectories are not read.
// The first file that fails to decode fails the load.
func (d *Decoder) LoadDir(dir string) (map[string]*core.TableDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tables dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsDefinitionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make(map[string]*core.TableDefinition, len(names))
	for _, name := range names {
		service := ServiceName(name)
		if _, exists := defs[service]; exists {
			return nil, fmt.Errorf("%s: service %q defined twice", filepath.Join(dir, name), service)
		}
		def, err := d.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs[service] = def
	}
	return defs, nil
}

// IsDefinitionFile reports whether name has a definition file extension.
func IsDefinitionFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ServiceName derives a service name from a definition file path.
func ServiceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
