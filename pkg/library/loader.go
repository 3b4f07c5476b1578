package library

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/teslashibe/go-motion/pkg/motionjson"
)

// File suffixes recognised by the loader.
const (
	MotionSuffix     = ".motion3.json"
	ExpressionSuffix = ".exp3.json"
)

//go:embed data/*.json
var builtIn embed.FS

// LoadBuiltIn registers the motions and expressions shipped with the package.
func (r *Registry) LoadBuiltIn() error {
	entries, err := builtIn.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to list built-in motions: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(builtIn, path.Join("data", entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read built-in %q: %w", entry.Name(), err)
		}
		if err := r.load(entry.Name(), data); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir registers every motion and expression file in dir.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list motion directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || kindOf(entry.Name()) == "" {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile registers a single motion or expression file.
func (r *Registry) LoadFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	return r.load(filepath.Base(file), data)
}

func (r *Registry) load(filename string, data []byte) error {
	switch kindOf(filename) {
	case MotionSuffix:
		var opts []motionjson.Option
		if r.strict {
			opts = append(opts, motionjson.WithConsistencyCheck())
		}
		doc, err := motionjson.ParseMotion(data, opts...)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", filename, err)
		}
		r.RegisterMotion(strings.TrimSuffix(filename, MotionSuffix), doc)
	case ExpressionSuffix:
		doc, err := motionjson.ParseExpression(data)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", filename, err)
		}
		r.RegisterExpression(strings.TrimSuffix(filename, ExpressionSuffix), doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFileType, filename)
	}
	return nil
}

func kindOf(name string) string {
	switch {
	case strings.HasSuffix(name, MotionSuffix):
		return MotionSuffix
	case strings.HasSuffix(name, ExpressionSuffix):
		return ExpressionSuffix
	default:
		return ""
	}
}
