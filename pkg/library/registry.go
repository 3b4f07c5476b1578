// Package library keeps named motions and expressions loaded from disk or
// from the built-in set.
package library

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/teslashibe/go-motion/pkg/motion"
)

var (
	// ErrNotFound is returned when a motion or expression is not registered.
	ErrNotFound = errors.New("not found in library")

	// ErrUnknownFileType is returned for files that are neither motions nor
	// expressions.
	ErrUnknownFileType = errors.New("unknown motion file type")
)

// MotionInfo summarises a registered motion.
type MotionInfo struct {
	Name        string  `json:"name"`
	Group       string  `json:"group"`
	Duration    float64 `json:"duration"`
	FPS         float64 `json:"fps"`
	Loop        bool    `json:"loop"`
	FadeInTime  float64 `json:"fadeInTime"`
	FadeOutTime float64 `json:"fadeOutTime"`
	Curves      int     `json:"curves"`
	Events      int     `json:"events"`
}

// ExpressionInfo summarises a registered expression.
type ExpressionInfo struct {
	Name        string  `json:"name"`
	FadeInTime  float64 `json:"fadeInTime"`
	FadeOutTime float64 `json:"fadeOutTime"`
	Parameters  int     `json:"parameters"`
}

// Registry is a concurrency-safe set of named documents.
type Registry struct {
	mu          sync.RWMutex
	motions     map[string]*motion.Document
	expressions map[string]*motion.ExpressionDocument
	strict      bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrict enables the motion file consistency check on load.
func WithStrict(strict bool) Option {
	return func(r *Registry) { r.strict = strict }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		motions:     make(map[string]*motion.Document),
		expressions: make(map[string]*motion.ExpressionDocument),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterMotion adds or replaces a motion.
func (r *Registry) RegisterMotion(name string, doc *motion.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motions[name] = doc
}

// RegisterExpression adds or replaces an expression.
func (r *Registry) RegisterExpression(name string, doc *motion.ExpressionDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expressions[name] = doc
}

// Unregister removes a motion and an expression with the given name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.motions, name)
	delete(r.expressions, name)
}

// Motion returns the motion document registered as name.
func (r *Registry) Motion(name string) (*motion.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.motions[name]
	if !ok {
		return nil, fmt.Errorf("%w: motion %s", ErrNotFound, name)
	}
	return doc, nil
}

// Expression returns the expression document registered as name.
func (r *Registry) Expression(name string) (*motion.ExpressionDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.expressions[name]
	if !ok {
		return nil, fmt.Errorf("%w: expression %s", ErrNotFound, name)
	}
	return doc, nil
}

// Info returns a summary of the motion registered as name.
func (r *Registry) Info(name string) (MotionInfo, error) {
	doc, err := r.Motion(name)
	if err != nil {
		return MotionInfo{}, err
	}
	return MotionInfo{
		Name:        name,
		Group:       groupOf(name),
		Duration:    doc.Duration,
		FPS:         doc.FPS,
		Loop:        doc.Loop,
		FadeInTime:  doc.FadeInTime,
		FadeOutTime: doc.FadeOutTime,
		Curves:      len(doc.Curves),
		Events:      len(doc.Events),
	}, nil
}

// ExpressionInfo returns a summary of the expression registered as name.
func (r *Registry) ExpressionInfo(name string) (ExpressionInfo, error) {
	doc, err := r.Expression(name)
	if err != nil {
		return ExpressionInfo{}, err
	}
	return ExpressionInfo{
		Name:        name,
		FadeInTime:  doc.FadeInTime,
		FadeOutTime: doc.FadeOutTime,
		Parameters:  len(doc.Parameters),
	}, nil
}

// List returns all motion names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.motions)
}

// Expressions returns all expression names, sorted.
func (r *Registry) Expressions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.expressions)
}

// Count returns the number of motions and expressions.
func (r *Registry) Count() (motions, expressions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.motions), len(r.expressions)
}

// Groups buckets motion names by group, e.g. "tap_body_01" and "tap_body_02"
// both land in "tap_body".
func (r *Registry) Groups() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make(map[string][]string)
	for name := range r.motions {
		g := groupOf(name)
		groups[g] = append(groups[g], name)
	}
	for g := range groups {
		sort.Strings(groups[g])
	}
	return groups
}

// Search returns motion names containing query, ignoring case.
func (r *Registry) Search(query string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var matches []string
	for name := range r.motions {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

// groupOf strips trailing digits and separators from name.
func groupOf(name string) string {
	g := strings.TrimRight(name, "0123456789")
	g = strings.TrimRight(g, "_-")
	if g == "" {
		return name
	}
	return g
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
