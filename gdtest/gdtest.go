// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gdtest defines utilities for testing the analyzer and
// compiler: locating test data files, and serving the files of a
// txtar archive as a multi-file project.
package gdtest // import "go.gdlang.net/gdtest"

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/txtar"
)

// DataFile returns the effective filename of the specified
// test data resource.  The function abstracts differences between
// 'go test', under which a test runs in its package directory,
// and other runners, under which a test runs in the root of the tree.
var DataFile = func(pkgdir, filename string) string {
	return filepath.Join(moduleRoot(), pkgdir, filename)
}

// moduleRoot returns the nearest enclosing directory containing go.mod,
// or the working directory if there is none.
func moduleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}
		dir = parent
	}
}

// A Project is a set of script files held in memory, keyed by
// resource path ("res://a.gd").
type Project struct {
	files map[string][]byte
	loads map[string]int
}

// ParseProject returns the project described by a txtar archive.
// File names without a scheme are given the "res://" prefix.
func ParseProject(data []byte) *Project {
	return newProject(txtar.Parse(data))
}

// ReadProject reads a txtar archive from the named file.
func ReadProject(filename string) (*Project, error) {
	a, err := txtar.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return newProject(a), nil
}

func newProject(a *txtar.Archive) *Project {
	p := &Project{files: make(map[string][]byte), loads: make(map[string]int)}
	for _, f := range a.Files {
		p.files[ResPath(f.Name)] = f.Data
	}
	return p
}

// ResPath returns name as a resource path.
func ResPath(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	return "res://" + strings.TrimPrefix(filepath.ToSlash(name), "/")
}

// Load returns the source of the file at path and counts the load.
func (p *Project) Load(path string) ([]byte, error) {
	data, ok := p.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	p.loads[path]++
	return data, nil
}

// Loads reports how many times the file at path has been loaded.
func (p *Project) Loads(path string) int { return p.loads[path] }

// Paths returns the project's file paths in sorted order.
func (p *Project) Paths() []string {
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
