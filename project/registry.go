package project

import (
	"sort"
	"sync"
)

// Registry is the single process-wide map of canonical path to project
// record. All mutation goes through the registry lock; readers get deep
// copies so they never observe a partially-merged record.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

func NewRegistry() *Registry {
	return &Registry{projects: make(map[string]*Project)}
}

// Get returns a copy of the project at path, or nil.
func (r *Registry) Get(path string) *Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[path]
	if !ok {
		return nil
	}
	return p.Clone()
}

// Put inserts or replaces the project under its path.
func (r *Registry) Put(p *Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.Path] = p.Clone()
}

// Remove deletes the project at path and reports whether it existed.
func (r *Registry) Remove(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.projects[path]
	delete(r.projects, path)
	return ok
}

// Paths returns the watched paths in stable order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.projects))
	for path := range r.projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// List returns copies of all projects ordered by path.
func (r *Registry) List() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Project, 0, len(r.projects))
	for _, p := range r.projects {
		list = append(list, p.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
	return list
}

// Update applies fn to the live record at path under the registry lock and
// reports whether the record existed. fn must not retain the pointer.
func (r *Registry) Update(path string, fn func(*Project)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[path]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// Len returns the number of watched projects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects)
}
