package analyzer

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/ziadkadry99/callscope/internal/walker"
)

var (
	javaPackageRe    = regexp.MustCompile(`\bpackage\s+([\w.]+)\s*;`)
	javaImportRe     = regexp.MustCompile(`\bimport\s+(static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	javaActionRe     = regexp.MustCompile(`public\s+(?:(?:abstract|final)\s+)*(?:class|interface)\s+(\w+Action)\b`)
	javaTypeRe       = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|protected|private|abstract|final|static)\s+)*(?:class|interface|enum)\s+(\w+)(?:<[^>{]*>)?(?:\s+extends\s+([\w.]+)(?:<[^>{]*>)?)?(?:\s+implements\s+([^{]+))?`)
	javaAnnotationRe = regexp.MustCompile(`@(\w+)(?:\([^)]*\))?`)
	javaMethodRe     = regexp.MustCompile(`(?m)^[ \t]*((?:(?:public|protected|private|static|final|synchronized|abstract|native)\s+)*)(?:<[^>]+>\s+)?(?:([\w.<>\[\],?]+)\s+)?(\w+)\s*\([^)]*\)\s*(?:throws\s+[\w.,\s]+?)?\s*\{`)
	javaCallRe       = regexp.MustCompile(`(\bnew\s+)?\b(\w+)\s*\(`)
)

// javaKeywords can precede '(' without being a method name.
var javaKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"synchronized": true, "return": true, "new": true, "else": true, "try": true,
	"do": true, "throw": true, "super": true, "this": true, "assert": true,
}

// javaBuiltIns are Object and String methods that never resolve to project code.
var javaBuiltIns = map[string]bool{
	"toString": true, "equals": true, "hashCode": true, "getClass": true,
	"wait": true, "notify": true, "notifyAll": true, "println": true,
	"print": true, "format": true, "append": true, "substring": true,
	"length": true, "indexOf": true,
}

// isAccessor matches bean getters, setters and predicates by prefix.
func isAccessor(name string) bool {
	return strings.HasPrefix(name, "get") || strings.HasPrefix(name, "set") || strings.HasPrefix(name, "is")
}

// JavaAnalyzer extracts calls from Java sources with regular expressions.
// Node ids are package.Class.method; calls are deduplicated per caller.
type JavaAnalyzer struct{}

func (*JavaAnalyzer) Name() string { return "java" }

type javaMethod struct {
	name        string
	modifiers   string
	annotations []string
	body        string
}

type javaImport struct {
	path     string
	static   bool
	wildcard bool
}

type javaFile struct {
	rel         string
	pkg         string
	class       string
	isAction    bool
	superClass  string
	interfaces  []string
	annotations []string
	imports     []javaImport
	methods     []javaMethod
}

func (f *javaFile) fullClass() string { return f.pkg + "." + f.class }

// Analyze parses every .java file under root, registers the declared
// methods, then resolves each method's calls against those declarations.
// Calls that resolve to no project method are dropped.
func (a *JavaAnalyzer) Analyze(ctx context.Context, root string, opts Options) (*Result, error) {
	files, err := walker.Walk(ctx, walker.Config{
		Root:        root,
		Languages:   []walker.Language{walker.Java},
		Include:     opts.Include,
		Exclude:     opts.Exclude,
		MaxFileSize: opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSources
	}

	rep := opts.reporter()
	rep.Start(len(files))
	defer rep.Finish()

	var parsed []*javaFile
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep.Update(i+1, f.RelPath)
		data, err := os.ReadFile(f.Path)
		if err != nil {
			slog.Warn("skipping unreadable file", "file", f.RelPath, "error", err)
			continue
		}
		if jf := parseJavaFile(f.RelPath, string(data)); jf != nil {
			parsed = append(parsed, jf)
		}
	}

	idx := newJavaIndex(parsed)
	b := newBuilder("java", ".")

	for _, jf := range parsed {
		if opts.ActionsOnly && !jf.isAction {
			continue
		}
		b.addClass(jf.fullClass(), jf.classInfo())
		for _, m := range jf.methods {
			if opts.Blacklist.Contains(m.name) {
				continue
			}
			b.addFunction(jf.function(m), true)
		}
	}

	// Overloads share a source id, so targets are deduplicated per id.
	calls := make(map[string]map[string]bool)
	for _, jf := range parsed {
		if opts.ActionsOnly && !jf.isAction {
			continue
		}
		for _, m := range jf.methods {
			if opts.Blacklist.Contains(m.name) {
				continue
			}
			source := jf.fullClass() + "." + m.name
			seen := calls[source]
			if seen == nil {
				seen = make(map[string]bool)
				calls[source] = seen
			}
			for _, name := range javaCalls(m.body) {
				if javaBuiltIns[name] || isAccessor(name) || opts.Blacklist.Contains(name) {
					continue
				}
				target, owner, ok := idx.resolve(jf, name)
				if !ok || seen[target] {
					continue
				}
				seen[target] = true
				if tm, found := owner.method(name); found {
					b.addFunction(owner.function(tm), false)
				}
				b.addCall(source, target)
			}
		}
	}

	return b.result(), nil
}

// parseJavaFile extracts the primary type of a file, or nil when the file
// declares no package or type.
func parseJavaFile(rel, src string) *javaFile {
	clean := stripJavaNoise(src)

	pm := javaPackageRe.FindStringSubmatch(clean)
	if pm == nil {
		return nil
	}
	jf := &javaFile{rel: rel, pkg: pm[1]}

	var typeStart int
	if am := javaActionRe.FindStringSubmatchIndex(clean); am != nil {
		jf.class = clean[am[2]:am[3]]
		jf.isAction = true
	}
	tm := javaTypeRe.FindStringSubmatchIndex(clean)
	if tm == nil && jf.class == "" {
		return nil
	}
	if tm != nil {
		typeStart = tm[0]
		name := clean[tm[2]:tm[3]]
		if jf.class == "" {
			jf.class = name
		}
		if name == jf.class {
			if tm[4] >= 0 {
				jf.superClass = clean[tm[4]:tm[5]]
			}
			if tm[6] >= 0 {
				for _, iface := range strings.Split(clean[tm[6]:tm[7]], ",") {
					if iface = strings.TrimSpace(iface); iface != "" {
						jf.interfaces = append(jf.interfaces, iface)
					}
				}
			}
		}
	}
	jf.annotations = annotationsIn(clean[:typeStart])

	for _, im := range javaImportRe.FindAllStringSubmatch(clean, -1) {
		jf.imports = append(jf.imports, javaImport{
			path:     strings.TrimSuffix(im[2], ".*"),
			static:   im[1] != "",
			wildcard: strings.HasSuffix(im[2], ".*"),
		})
	}

	for _, mm := range javaMethodRe.FindAllStringSubmatchIndex(clean, -1) {
		name := clean[mm[6]:mm[7]]
		var retType string
		if mm[4] >= 0 {
			retType = clean[mm[4]:mm[5]]
		}
		if javaKeywords[name] || javaKeywords[retType] {
			continue
		}
		open := mm[1] - 1
		jf.methods = append(jf.methods, javaMethod{
			name:        name,
			modifiers:   clean[mm[2]:mm[3]],
			annotations: annotationsIn(clean[declarationBoundary(clean, mm[0]):mm[0]]),
			body:        braceBody(clean, open),
		})
	}
	return jf
}

func (f *javaFile) method(name string) (javaMethod, bool) {
	for _, m := range f.methods {
		if m.name == name {
			return m, true
		}
	}
	return javaMethod{}, false
}

func (f *javaFile) classInfo() ClassInfo {
	c := ClassInfo{
		Name:        f.class,
		PackageName: f.pkg,
		IsAction:    f.isAction,
		Interfaces:  f.interfaces,
		Annotations: f.annotations,
	}
	if f.superClass != "" {
		sc := f.superClass
		c.SuperClass = &sc
	}
	return c
}

func (f *javaFile) function(m javaMethod) Function {
	return Function{
		ID:          f.fullClass() + "." + m.name,
		Label:       f.class + "." + m.name,
		PackageName: f.pkg,
		ClassName:   f.class,
		MethodName:  m.name,
		IsAction:    f.isAction,
		AccessLevel: javaAccess(m.modifiers),
		IsStatic:    strings.Contains(m.modifiers, "static"),
		Annotations: m.annotations,
	}
}

func javaAccess(modifiers string) string {
	switch {
	case strings.Contains(modifiers, "public"):
		return AccessPublic
	case strings.Contains(modifiers, "protected"):
		return AccessProtected
	case strings.Contains(modifiers, "private"):
		return AccessPrivate
	default:
		return AccessPackagePrivate
	}
}

// javaCalls lists method names invoked in body, in order. Constructor calls
// and keywords are skipped.
func javaCalls(body string) []string {
	var out []string
	for _, m := range javaCallRe.FindAllStringSubmatch(body, -1) {
		if m[1] != "" || javaKeywords[m[2]] {
			continue
		}
		out = append(out, m[2])
	}
	return out
}

func annotationsIn(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range javaAnnotationRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// declarationBoundary finds where the declaration starting at pos begins,
// after the previous statement or block.
func declarationBoundary(s string, pos int) int {
	i := strings.LastIndexAny(s[:pos], ";{}")
	return i + 1
}

// braceBody returns the text between the brace at open and its match.
func braceBody(s string, open int) string {
	if open < 0 || open >= len(s) || s[open] != '{' {
		return ""
	}
	depth := 1
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[open+1 : i]
			}
		}
	}
	return ""
}

// stripJavaNoise blanks comments and string and char literals, keeping
// offsets and newlines intact.
func stripJavaNoise(src string) string {
	out := []byte(src)
	blank := func(from, to int) {
		for i := from; i < to && i < len(out); i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	for i := 0; i < len(src); i++ {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			blank(i, i+end)
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				blank(i, len(src))
				return string(out)
			}
			blank(i, i+2+end+2)
			i += 2 + end + 1
		case src[i] == '"' || src[i] == '\'':
			quote := src[i]
			j := i + 1
			for j < len(src) && src[j] != quote && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			blank(i+1, j)
			i = j
		}
	}
	return string(out)
}

// javaIndex answers which project class declares a method.
type javaIndex struct {
	byClass   map[string]*javaFile   // package.Class -> file
	byPackage map[string][]*javaFile // package -> files, sorted by class
}

func newJavaIndex(files []*javaFile) *javaIndex {
	idx := &javaIndex{
		byClass:   make(map[string]*javaFile),
		byPackage: make(map[string][]*javaFile),
	}
	for _, f := range files {
		if _, dup := idx.byClass[f.fullClass()]; dup {
			slog.Debug("duplicate class declaration", "class", f.fullClass(), "file", f.rel)
			continue
		}
		idx.byClass[f.fullClass()] = f
		idx.byPackage[f.pkg] = append(idx.byPackage[f.pkg], f)
	}
	for _, fs := range idx.byPackage {
		sort.Slice(fs, func(i, j int) bool { return fs[i].class < fs[j].class })
	}
	return idx
}

// classFor resolves a simple or qualified class name seen from f.
func (idx *javaIndex) classFor(f *javaFile, name string) *javaFile {
	if c, ok := idx.byClass[name]; ok {
		return c
	}
	if c, ok := idx.byClass[f.pkg+"."+name]; ok {
		return c
	}
	for _, im := range f.imports {
		if im.static {
			continue
		}
		if im.wildcard {
			if c, ok := idx.byClass[im.path+"."+name]; ok {
				return c
			}
		} else if strings.HasSuffix(im.path, "."+name) {
			if c, ok := idx.byClass[im.path]; ok {
				return c
			}
		}
	}
	return nil
}

// resolve maps a bare method name called from f to the declaring class.
// Lookup order: the class itself and its superclasses, static imports,
// explicitly imported classes, wildcard-imported packages, then the rest
// of the caller's package.
func (idx *javaIndex) resolve(f *javaFile, name string) (string, *javaFile, bool) {
	hit := func(c *javaFile) (string, *javaFile, bool) {
		return c.fullClass() + "." + name, c, true
	}

	seen := make(map[*javaFile]bool)
	for c := f; c != nil && !seen[c]; {
		seen[c] = true
		if _, ok := c.method(name); ok {
			return hit(c)
		}
		if c.superClass == "" {
			break
		}
		c = idx.classFor(c, c.superClass)
	}

	for _, im := range f.imports {
		if !im.static {
			continue
		}
		if im.wildcard {
			if c := idx.byClass[im.path]; c != nil {
				if _, ok := c.method(name); ok {
					return hit(c)
				}
			}
			continue
		}
		if strings.HasSuffix(im.path, "."+name) {
			if c := idx.byClass[strings.TrimSuffix(im.path, "."+name)]; c != nil {
				return hit(c)
			}
		}
	}

	for _, im := range f.imports {
		if im.static || im.wildcard {
			continue
		}
		if c := idx.byClass[im.path]; c != nil {
			if _, ok := c.method(name); ok {
				return hit(c)
			}
		}
	}
	for _, im := range f.imports {
		if im.static || !im.wildcard {
			continue
		}
		for _, c := range idx.byPackage[im.path] {
			if _, ok := c.method(name); ok {
				return hit(c)
			}
		}
	}
	for _, c := range idx.byPackage[f.pkg] {
		if _, ok := c.method(name); ok {
			return hit(c)
		}
	}
	return "", nil, false
}
