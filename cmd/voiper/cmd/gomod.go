package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// FrameworkModule is the module path generated code imports
const FrameworkModule = "github.com/GoCodeAlone/voiper"

// ErrNoGoMod is returned when no go.mod exists above a directory
var ErrNoGoMod = errors.New("no go.mod found")

// GoModule describes the Go module enclosing a directory
type GoModule struct {
	Path              string
	Dir               string
	RequiresFramework bool
}

// FindGoModule walks up from dir to the nearest go.mod and parses it.
func FindGoModule(dir string) (*GoModule, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	for current := abs; ; {
		gomod := filepath.Join(current, "go.mod")
		data, err := os.ReadFile(gomod)
		switch {
		case err == nil:
			return parseGoMod(gomod, current, data)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", gomod, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, fmt.Errorf("%w above %s", ErrNoGoMod, abs)
		}
		current = parent
	}
}

func parseGoMod(path, dir string, data []byte) (*GoModule, error) {
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", path)
	}

	m := &GoModule{Path: f.Module.Mod.Path, Dir: dir}
	if m.Path == FrameworkModule {
		m.RequiresFramework = true
	}
	for _, req := range f.Require {
		if req.Mod.Path == FrameworkModule {
			m.RequiresFramework = true
		}
	}
	return m, nil
}

// ImportPath returns the import path of the package in dir, which must lie inside the module.
func (m *GoModule) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	rel, err := filepath.Rel(m.Dir, abs)
	if err != nil {
		return "", fmt.Errorf("%s is outside module %s: %w", dir, m.Path, err)
	}
	if rel == "." {
		return m.Path, nil
	}
	return m.Path + "/" + filepath.ToSlash(rel), nil
}
