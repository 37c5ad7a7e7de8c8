// Package analyzer extracts function call graphs from source trees.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ziadkadry99/callscope/internal/graph"
	"github.com/ziadkadry99/callscope/internal/progress"
)

// ErrNoSources is returned when a tree holds nothing an analyzer can read.
var ErrNoSources = errors.New("no analysable source files found")

// Access levels reported for each function.
const (
	AccessPublic         = "PUBLIC"
	AccessProtected      = "PROTECTED"
	AccessPrivate        = "PRIVATE"
	AccessPackagePrivate = "PACKAGE_PRIVATE"
)

// Analyzer builds a call graph for the tree at root.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, root string, opts Options) (*Result, error)
}

// Options tune a single analysis run.
type Options struct {
	Blacklist   Blacklist
	Include     []string
	Exclude     []string
	MaxFileSize int64
	// ActionsOnly restricts Java call sources to classes named *Action.
	ActionsOnly bool
	// IncludeExternal keeps Go edges whose callee lives outside the module.
	IncludeExternal bool
	Reporter        progress.Reporter
}

func (o Options) reporter() progress.Reporter {
	if o.Reporter == nil {
		return progress.Discard{}
	}
	return o.Reporter
}

// Blacklist is a set of bare method names excluded from analysis.
type Blacklist map[string]struct{}

// NewBlacklist builds a set from names.
func NewBlacklist(names ...string) Blacklist {
	b := make(Blacklist, len(names))
	for _, n := range names {
		b[n] = struct{}{}
	}
	return b
}

// Contains reports whether name is blacklisted. A nil set contains nothing.
func (b Blacklist) Contains(name string) bool {
	_, ok := b[name]
	return ok
}

// Names returns the sorted members.
func (b Blacklist) Names() []string {
	out := make([]string, 0, len(b))
	for n := range b {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Select picks the analyzer for root: Go when it holds a go.mod, Java otherwise.
func Select(root string) Analyzer {
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
		return &GoAnalyzer{}
	}
	return &JavaAnalyzer{}
}

// Analyze runs the analyzer Select picks.
func Analyze(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analyzing %s: not a directory", root)
	}
	a := Select(root)
	res, err := a.Analyze(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("%s analyzer: %w", a.Name(), err)
	}
	return res, nil
}

// Result is the analysis document. Its nodes and links form the graph every
// view consumes; packages and classes carry extra metadata.
type Result struct {
	Language  string        `json:"language"`
	Delimiter string        `json:"delimiter"`
	Packages  []PackageInfo `json:"packages"`
	Classes   []ClassInfo   `json:"classes"`
	Nodes     []Function    `json:"nodes"`
	Links     []graph.Edge  `json:"links"`
}

// PackageInfo summarises one package.
type PackageInfo struct {
	Name         string   `json:"name"`
	TotalMethods int      `json:"totalMethods"`
	TotalClasses int      `json:"totalClasses"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// ClassInfo describes a class or named type.
type ClassInfo struct {
	Name        string   `json:"name"`
	PackageName string   `json:"packageName"`
	IsAction    bool     `json:"isAction"`
	SuperClass  *string  `json:"superClass"`
	Interfaces  []string `json:"interfaces"`
	Annotations []string `json:"annotations"`
}

// Function is one node of the analysed graph.
type Function struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	PackageName string     `json:"packageName"`
	ClassName   string     `json:"className"`
	MethodName  string     `json:"methodName"`
	IsAction    bool       `json:"isAction"`
	AccessLevel string     `json:"accessLevel"`
	IsStatic    bool       `json:"isStatic"`
	Statistics  Statistics `json:"statistics"`
	Annotations []string   `json:"annotations"`
}

// Statistics are per-function call counts. Counts include repeated call
// sites; the lists hold distinct ids.
type Statistics struct {
	IncomingCalls int      `json:"incomingCalls"`
	OutgoingCalls int      `json:"outgoingCalls"`
	CalledBy      []string `json:"calledBy"`
	Calls         []string `json:"calls"`
}

// Graph returns the call graph carried by the result.
func (r *Result) Graph() *graph.Graph {
	nodes := make([]graph.Node, len(r.Nodes))
	for i, fn := range r.Nodes {
		nodes[i] = graph.Node{ID: fn.ID, Label: fn.Label}
	}
	return graph.New(nodes, r.Links)
}

// builder accumulates functions and calls and produces a sorted Result.
type builder struct {
	language  string
	delimiter string
	funcs     map[string]*Function
	links     []graph.Edge
	classes   map[string]*ClassInfo
	pkgs      map[string]*PackageInfo
}

func newBuilder(language, delimiter string) *builder {
	return &builder{
		language:  language,
		delimiter: delimiter,
		funcs:     make(map[string]*Function),
		classes:   make(map[string]*ClassInfo),
		pkgs:      make(map[string]*PackageInfo),
	}
}

func (b *builder) pkg(name string) *PackageInfo {
	p, ok := b.pkgs[name]
	if !ok {
		p = &PackageInfo{Name: name}
		b.pkgs[name] = p
	}
	return p
}

// addClass registers a class once; later calls are ignored.
func (b *builder) addClass(key string, c ClassInfo) bool {
	if _, ok := b.classes[key]; ok {
		return false
	}
	b.classes[key] = &c
	b.pkg(c.PackageName).TotalClasses++
	return true
}

// addFunction registers fn unless its id is known. declared marks functions
// found at their definition, which count toward the package method total.
func (b *builder) addFunction(fn Function, declared bool) {
	if _, ok := b.funcs[fn.ID]; ok {
		return
	}
	b.funcs[fn.ID] = &fn
	if declared {
		b.pkg(fn.PackageName).TotalMethods++
	}
}

func (b *builder) addCall(source, target string) {
	b.links = append(b.links, graph.Edge{Source: source, Target: target})
}

func (b *builder) result() *Result {
	calledBy := make(map[string]map[string]struct{})
	calls := make(map[string]map[string]struct{})
	deps := make(map[string]map[string]struct{})
	dependents := make(map[string]map[string]struct{})
	add := func(m map[string]map[string]struct{}, k, v string) {
		if m[k] == nil {
			m[k] = make(map[string]struct{})
		}
		m[k][v] = struct{}{}
	}

	for _, l := range b.links {
		src, tgt := b.funcs[l.Source], b.funcs[l.Target]
		if src != nil {
			src.Statistics.OutgoingCalls++
		}
		if tgt != nil {
			tgt.Statistics.IncomingCalls++
		}
		add(calls, l.Source, l.Target)
		add(calledBy, l.Target, l.Source)
		if src != nil && tgt != nil && src.PackageName != tgt.PackageName {
			b.pkg(src.PackageName)
			b.pkg(tgt.PackageName)
			add(deps, src.PackageName, tgt.PackageName)
			add(dependents, tgt.PackageName, src.PackageName)
		}
	}

	res := &Result{
		Language:  b.language,
		Delimiter: b.delimiter,
		Packages:  make([]PackageInfo, 0, len(b.pkgs)),
		Classes:   make([]ClassInfo, 0, len(b.classes)),
		Nodes:     make([]Function, 0, len(b.funcs)),
		Links:     b.links,
	}
	if res.Links == nil {
		res.Links = []graph.Edge{}
	}

	for _, name := range sortedKeys(b.pkgs) {
		p := *b.pkgs[name]
		p.Dependencies = sortedSet(deps[name])
		p.Dependents = sortedSet(dependents[name])
		res.Packages = append(res.Packages, p)
	}
	for _, key := range sortedKeys(b.classes) {
		c := *b.classes[key]
		c.Interfaces = nonNil(c.Interfaces)
		c.Annotations = nonNil(c.Annotations)
		res.Classes = append(res.Classes, c)
	}
	for _, id := range sortedKeys(b.funcs) {
		fn := *b.funcs[id]
		fn.Statistics.Calls = sortedSet(calls[id])
		fn.Statistics.CalledBy = sortedSet(calledBy[id])
		fn.Annotations = nonNil(fn.Annotations)
		res.Nodes = append(res.Nodes, fn)
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(s map[string]struct{}) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
