// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"go.gdlang.net/syntax"
)

// A Loader returns the source text of the script at path.
type Loader func(path string) ([]byte, error)

// A Status is the progress of the analysis of a cached file.
type Status uint8

const (
	Parsed            Status = iota // parsed, not analyzed
	InheritanceSolved               // base types of all classes known
	InterfaceSolved                 // member types known
	FullySolved                     // function bodies analyzed
)

var statusNames = [...]string{
	Parsed:            "parsed",
	InheritanceSolved: "inheritance solved",
	InterfaceSolved:   "interface solved",
	FullySolved:       "fully solved",
}

func (s Status) String() string { return statusNames[s] }

// A Cache holds the parsed files of a project, by path. Each file is
// parsed at most once, and its analysis progresses on demand.
//
// A Cache is safe for concurrent lookups. Analysis passes themselves
// are not concurrent: the passes of mutually dependent files must run
// in a single goroutine.
type Cache struct {
	env  *Env
	load Loader

	mu   sync.Mutex
	refs map[string]*Ref

	// classes whose inheritance is being resolved, across files
	inheriting []*syntax.ClassDecl
	cyclic     map[*syntax.ClassDecl]bool
}

func newCache(env *Env, load Loader) *Cache {
	return &Cache{
		env:    env,
		load:   load,
		refs:   make(map[string]*Ref),
		cyclic: make(map[*syntax.ClassDecl]bool),
	}
}

// A Ref is the handle of a cached file.
type Ref struct {
	Path string

	file     *syntax.File
	status   Status
	err      error
	analyzer *Analyzer
}

// File returns the syntax tree of the file.
func (r *Ref) File() *syntax.File { return r.file }

// Status returns the progress of the file's analysis.
func (r *Ref) Status() Status { return r.status }

// Analyzer returns the analyzer of the file.
func (r *Ref) Analyzer() *Analyzer { return r.analyzer }

// RaiseStatus runs the analysis passes needed for the file to reach
// status s, and returns the errors of the file, if any.
//
// The status is raised before each pass runs, so a query made while
// the pass is in progress, directly or through another file, returns
// at once with the partial results.
func (r *Ref) RaiseStatus(s Status) error {
	for r.err == nil && r.status < s {
		r.status++
		a := r.analyzer
		switch r.status {
		case InheritanceSolved:
			a.run(a.resolveInheritance)
		case InterfaceSolved:
			a.run(a.resolveInterface)
		case FullySolved:
			a.run(a.resolveBody)
		}
		if err := a.err(); err != nil {
			r.err = err
		}
	}
	return r.err
}

// Get returns the handle of the file at path, loading and parsing it
// if this is the first request for it. A failure to load or parse is
// remembered and returned by subsequent calls.
func (c *Cache) Get(path string) (*Ref, error) {
	c.mu.Lock()
	ref, ok := c.refs[path]
	if !ok {
		ref = &Ref{Path: path}
		c.refs[path] = ref
		c.parse(ref)
	}
	c.mu.Unlock()
	if ref.file == nil {
		return nil, ref.err
	}
	return ref, nil
}

// parse loads and parses the file of ref. Called with c.mu held.
func (c *Cache) parse(ref *Ref) {
	if c.load == nil {
		ref.err = fmt.Errorf("loading %s: no loader", ref.Path)
		return
	}
	data, err := c.load(ref.Path)
	if err != nil {
		ref.err = errors.Wrapf(err, "loading %s", ref.Path)
		return
	}
	f, err := syntax.Parse(ref.Path, data)
	if err != nil {
		ref.err = err
		return
	}
	ref.file = f
	ref.analyzer = newAnalyzer(c.env, f, ref)
}

// add registers the already parsed file f, replacing any other file
// of the same path. Adding the same file again returns its handle.
func (c *Cache) add(f *syntax.File) *Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref, ok := c.refs[f.Path]; ok && ref.file == f {
		return ref
	}
	ref := &Ref{Path: f.Path, file: f}
	ref.analyzer = newAnalyzer(c.env, f, ref)
	c.refs[f.Path] = ref
	return ref
}

// lookup returns the handle of a file already in the cache, or nil.
func (c *Cache) lookup(path string) *Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs[path]
}

// Paths returns the paths of the cached files.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.refs))
	for p := range c.refs {
		paths = append(paths, p)
	}
	return paths
}

// ScanGlobalClasses parses the files at paths and registers the
// class_name of each in env.GlobalClasses.
func ScanGlobalClasses(env *Env, paths []string) error {
	for _, p := range paths {
		ref, err := env.Cache.Get(p)
		if err != nil {
			return err
		}
		c := ref.File().Class
		if c.Name == nil {
			continue
		}
		if prev, ok := env.GlobalClasses[c.Name.Name]; ok && prev != p {
			return fmt.Errorf("%s: class %q is already declared by %s", c.Name.NamePos, c.Name.Name, prev)
		}
		env.GlobalClasses[c.Name.Name] = p
	}
	return nil
}

// resolvePath returns the path p, which appears in the file at from,
// relative to the project.
func resolvePath(from, p string) string {
	const scheme = "res://"
	if strings.HasPrefix(p, scheme) {
		return scheme + strings.TrimPrefix(path.Clean("/"+p[len(scheme):]), "/")
	}
	if strings.Contains(p, "://") {
		return p
	}
	if strings.HasPrefix(p, "/") {
		return p
	}
	dir := path.Dir("/" + strings.TrimPrefix(from, scheme))
	joined := strings.TrimPrefix(path.Join(dir, p), "/")
	if strings.HasPrefix(from, scheme) {
		return scheme + joined
	}
	return joined
}
