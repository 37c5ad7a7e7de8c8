package analyzer

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/ziadkadry99/callscope/internal/walker"
)

// GoAnalyzer builds a type-accurate call graph for a Go module with SSA and
// variable type analysis. Node ids are importpath/Func or
// importpath/Type.Method, so the namespace tree follows package paths.
type GoAnalyzer struct{}

func (*GoAnalyzer) Name() string { return "go" }

// ModulePath reads the module path from root/go.mod.
func ModulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("module directive not found in go.mod")
	}
	return path, nil
}

func (a *GoAnalyzer) Analyze(ctx context.Context, root string, opts Options) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	module, err := ModulePath(absRoot)
	if err != nil {
		return nil, err
	}

	rep := opts.reporter()
	rep.Start(4)
	defer rep.Finish()

	rep.Update(1, "loading packages")
	cfg := &packages.Config{
		Context: ctx,
		Dir:     absRoot,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedTypesSizes,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if n := countPackageErrors(pkgs); n > 0 {
		slog.Warn("packages loaded with errors", "errors", n)
	}
	if len(pkgs) == 0 {
		return nil, ErrNoSources
	}

	c := &goCollector{
		root:   absRoot,
		module: module,
		opts:   opts,
		b:      newBuilder("go", "/"),
	}

	rep.Update(2, "collecting types")
	c.collectTypes(pkgs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Update(3, "building SSA")
	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	for _, p := range ssaPkgs {
		if p != nil {
			p.Build()
		}
	}

	rep.Update(4, "computing call graph")
	funcs := ssautil.AllFunctions(prog)
	c.collectFunctions(prog, funcs)
	cg := vta.CallGraph(funcs, nil)
	if err := c.collectCalls(cg); err != nil {
		return nil, err
	}
	return c.b.result(), nil
}

func countPackageErrors(pkgs []*packages.Package) int {
	n := 0
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			slog.Debug("package error", "package", p.PkgPath, "error", e.Msg)
			n++
		}
	})
	return n
}

type goCollector struct {
	root   string
	module string
	opts   Options
	b      *builder
}

func (c *goCollector) isProjectPackage(pkgPath string) bool {
	return pkgPath == c.module || strings.HasPrefix(pkgPath, c.module+"/")
}

// collectTypes records named types with their implemented project interfaces.
func (c *goCollector) collectTypes(pkgs []*packages.Package) {
	type iface struct {
		key string
		typ *types.Interface
	}
	var ifaces []iface
	var named []*types.TypeName

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		if !c.isProjectPackage(pkg.PkgPath) || pkg.Types == nil {
			return
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			if it, ok := tn.Type().Underlying().(*types.Interface); ok {
				if it.NumMethods() > 0 {
					ifaces = append(ifaces, iface{key: pkg.PkgPath + "/" + name, typ: it})
				}
				continue
			}
			named = append(named, tn)
		}
	})

	for _, tn := range named {
		info := ClassInfo{Name: tn.Name(), PackageName: tn.Pkg().Path()}
		for _, i := range ifaces {
			if types.Implements(tn.Type(), i.typ) || types.Implements(types.NewPointer(tn.Type()), i.typ) {
				info.Interfaces = append(info.Interfaces, i.key)
			}
		}
		sort.Strings(info.Interfaces)
		c.b.addClass(tn.Pkg().Path()+"/"+tn.Name(), info)
	}
}

// collectFunctions registers every top-level project function and method.
// Closures are folded into the function that declares them.
func (c *goCollector) collectFunctions(prog *ssa.Program, funcs map[*ssa.Function]bool) {
	for fn := range funcs {
		fn = canonical(fn)
		if fn.Synthetic != "" || fn.Pkg == nil || !c.isProjectPackage(fn.Pkg.Pkg.Path()) {
			continue
		}
		if c.opts.Blacklist.Contains(fn.Name()) {
			continue
		}
		if pos := prog.Fset.Position(fn.Pos()); pos.IsValid() && !c.fileIncluded(pos.Filename) {
			continue
		}
		c.b.addFunction(goFunction(fn), true)
	}
}

// fileIncluded applies the include and exclude globs to a source file.
// Test files never contribute functions.
func (c *goCollector) fileIncluded(filename string) bool {
	if strings.HasSuffix(filename, "_test.go") {
		return false
	}
	rel, err := filepath.Rel(c.root, filename)
	if err != nil {
		return true
	}
	return walker.MatchesInclude(rel, c.opts.Include) && !walker.MatchesExclude(rel, c.opts.Exclude)
}

// collectCalls keeps one edge per resolved call site. Edges need a project
// caller; the callee must be in the project too unless IncludeExternal is set.
func (c *goCollector) collectCalls(cg *callgraph.Graph) error {
	return callgraph.GraphVisitEdges(cg, func(edge *callgraph.Edge) error {
		caller, callee := edge.Caller.Func, edge.Callee.Func
		if caller == nil || callee == nil {
			return nil
		}
		from, to := canonical(caller), canonical(callee)
		if from == to && caller != callee {
			return nil
		}
		if from.Synthetic != "" || to.Synthetic != "" || from.Pkg == nil || to.Pkg == nil {
			return nil
		}
		if !c.isProjectPackage(from.Pkg.Pkg.Path()) {
			return nil
		}
		external := !c.isProjectPackage(to.Pkg.Pkg.Path())
		if external && !c.opts.IncludeExternal {
			return nil
		}
		if c.opts.Blacklist.Contains(from.Name()) || c.opts.Blacklist.Contains(to.Name()) {
			return nil
		}

		src, dst := goFunction(from), goFunction(to)
		if _, ok := c.b.funcs[src.ID]; !ok {
			return nil
		}
		if _, ok := c.b.funcs[dst.ID]; !ok && !external {
			return nil
		}
		c.b.addFunction(dst, false)
		c.b.addCall(src.ID, dst.ID)
		return nil
	})
}

// canonical maps closures to their enclosing function and generic
// instantiations to their origin.
func canonical(fn *ssa.Function) *ssa.Function {
	for fn.Parent() != nil {
		fn = fn.Parent()
	}
	if o := fn.Origin(); o != nil {
		fn = o
	}
	return fn
}

func goFunction(fn *ssa.Function) Function {
	pkg := fn.Pkg.Pkg
	f := Function{
		PackageName: pkg.Path(),
		MethodName:  fn.Name(),
		IsStatic:    true,
		AccessLevel: AccessPackagePrivate,
	}
	if obj := fn.Object(); obj != nil && obj.Exported() {
		f.AccessLevel = AccessPublic
	}
	local := fn.Name()
	if recv := fn.Signature.Recv(); recv != nil {
		t := recv.Type()
		if ptr, ok := t.(*types.Pointer); ok {
			t = ptr.Elem()
		}
		if n, ok := t.(*types.Named); ok {
			f.ClassName = n.Obj().Name()
			f.IsStatic = false
			local = f.ClassName + "." + fn.Name()
		}
	}
	f.ID = pkg.Path() + "/" + local
	f.Label = pkg.Name() + "." + local
	return f
}
