// Package expand turns the ?expand= query parameter into the set of relations
// a response should embed and the preload paths needed to fetch them in bulk.
//
//	?expand=author                 embed the book's author
//	?expand=reviews.reviewer       embed reviews and each review's reviewer
//	?expand=*                      embed every permitted relation one level deep
//
// Names outside the resource's whitelist are ignored.
package expand

import (
	"sort"
	"strings"
)

const (
	MaxDepth = 2
	All      = "*"
)

// Relation is one expandable field of a resource.
type Relation struct {
	Name   string // name used in the query string and in JSON
	Field  string // ORM association name used for preloading
	Target string // resource the relation points at
	// RootOnly relations are not expandable through a parent resource.
	RootOnly bool
}

type Registry struct {
	rels map[string]map[string]Relation
}

func NewRegistry() *Registry {
	return &Registry{rels: make(map[string]map[string]Relation)}
}

// Permit whitelists relations for resource.
func (r *Registry) Permit(resource string, rels ...Relation) *Registry {
	m, ok := r.rels[resource]
	if !ok {
		m = make(map[string]Relation, len(rels))
		r.rels[resource] = m
	}
	for _, rel := range rels {
		m[rel.Name] = rel
	}
	return r
}

// Permitted lists the relation names whitelisted for resource, sorted.
func (r *Registry) Permitted(resource string) []string {
	names := make([]string, 0, len(r.rels[resource]))
	for name := range r.rels[resource] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse reads expand values (each may be a comma-separated list) for resource.
// The returned set is never nil.
func (r *Registry) Parse(resource string, values ...string) *Set {
	root := &Set{}
	for _, v := range values {
		for _, path := range strings.Split(v, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			r.add(root, resource, strings.Split(path, "."), 1)
		}
	}
	return root
}

func (r *Registry) add(s *Set, resource string, segs []string, depth int) {
	if depth > MaxDepth || len(segs) == 0 {
		return
	}
	name := strings.TrimSpace(segs[0])
	if name == All {
		for _, n := range r.Permitted(resource) {
			if r.rels[resource][n].RootOnly && depth > 1 {
				continue
			}
			s.child(n)
		}
		return
	}
	rel, ok := r.rels[resource][name]
	if !ok || (rel.RootOnly && depth > 1) {
		return
	}
	r.add(s.child(name), rel.Target, segs[1:], depth+1)
}

// Preloads returns ORM preload paths for s, parents before children.
func (r *Registry) Preloads(resource string, s *Set) []string {
	var out []string
	r.preloads(resource, s, "", &out)
	return out
}

func (r *Registry) preloads(resource string, s *Set, prefix string, out *[]string) {
	for _, name := range s.Names() {
		rel, ok := r.rels[resource][name]
		if !ok {
			continue
		}
		path := prefix + rel.Field
		*out = append(*out, path)
		r.preloads(rel.Target, s.Child(name), path+".", out)
	}
}

// Set is a tree of requested relations. A nil *Set expands nothing.
type Set struct {
	children map[string]*Set
	viewer   int64
}

// WithViewer records the requesting user's id on s and all nested sets.
func (s *Set) WithViewer(id int64) *Set {
	if s == nil {
		return nil
	}
	s.viewer = id
	for _, c := range s.children {
		c.WithViewer(id)
	}
	return s
}

// Viewer is the id passed to WithViewer, 0 for anonymous or unset.
func (s *Set) Viewer() int64 {
	if s == nil {
		return 0
	}
	return s.viewer
}

func (s *Set) child(name string) *Set {
	if s.children == nil {
		s.children = make(map[string]*Set)
	}
	c, ok := s.children[name]
	if !ok {
		c = &Set{}
		s.children[name] = c
	}
	return c
}

func (s *Set) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.children[name]
	return ok
}

// Child returns the nested set under name, or nil.
func (s *Set) Child(name string) *Set {
	if s == nil {
		return nil
	}
	return s.children[name]
}

func (s *Set) Empty() bool {
	return s == nil || len(s.children) == 0
}

func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.children))
	for name := range s.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the set back into query form, e.g. "author,reviews.reviewer".
func (s *Set) String() string {
	var parts []string
	for _, name := range s.Names() {
		c := s.Child(name)
		if c.Empty() {
			parts = append(parts, name)
			continue
		}
		for _, sub := range strings.Split(c.String(), ",") {
			parts = append(parts, name+"."+sub)
		}
	}
	return strings.Join(parts, ",")
}
