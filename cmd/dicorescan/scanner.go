package main

import (
	"go/ast"
	"go/types"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/arborist-di/dicore/internal/gotypesuniverse"
)

// ServiceProvider is one discovered New* constructor, reduced to just what
// the registry needs: the qualified class name its dicore.TypeUniverse
// query will resolve, and the directives attached to it. Everything about
// its constructor's own parameters is re-derived later by the resolver via
// Universe.Constructor — the scanner's only job is deciding which types
// are services in the first place.
type ServiceProvider struct {
	ClassName   string
	Annotations []Annotation
}

// Scanner discovers service providers by walking the syntax trees of an
// already-loaded Universe, honoring the module's scan/exclude convention
// and .gitignore.
type Scanner struct {
	cfg       *Config
	universe  *gotypesuniverse.Universe
	gitignore []GitignorePattern
}

// NewScanner returns a Scanner over universe's already-loaded packages.
func NewScanner(cfg *Config, universe *gotypesuniverse.Universe, gitignore []GitignorePattern) *Scanner {
	return &Scanner{cfg: cfg, universe: universe, gitignore: gitignore}
}

// Scan extracts, for every package, the providers extractProviders picks
// (each //dicore:bind function plus one primary New* constructor), running one goroutine
// per package — scanning is the one place in this tool that runs
// concurrently, strictly before any dicore.Resolver call, which is not
// reentrant.
func (s *Scanner) Scan() ([]ServiceProvider, error) {
	pkgs := s.universe.Packages()
	results := make([][]ServiceProvider, len(pkgs))

	var g errgroup.Group
	var mu sync.Mutex
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		if s.shouldExclude(pkg.PkgPath) {
			continue
		}
		g.Go(func() error {
			found := s.extractProviders(pkg)
			mu.Lock()
			results[i] = found
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ServiceProvider
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (s *Scanner) shouldExclude(pkgPath string) bool {
	for _, exc := range s.cfg.Exclude {
		excPath := strings.TrimPrefix(exc, "./")
		excPath = strings.TrimSuffix(excPath, "/...")
		full := s.cfg.Module + "/" + excPath
		if strings.HasPrefix(pkgPath, full) {
			return true
		}
	}
	rel := strings.TrimPrefix(pkgPath, s.cfg.Module+"/")
	return IsGitignored(rel, s.gitignore)
}

// extractProviders finds the primary exported New* function(s) in pkg,
// following the "one New per package" convention: a directly annotated
// function is always included, and otherwise the best-matching name
// (New+PkgName, bare New, New+Service) wins, deduplicated by return type.
func (s *Scanner) extractProviders(pkg *packages.Package) []ServiceProvider {
	type candidate struct {
		className   string
		annotations []Annotation
		priority    int
	}

	var always []ServiceProvider
	var candidates []candidate
	provided := make(map[string]bool)

	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil {
				continue
			}
			if !fn.Name.IsExported() || !strings.HasPrefix(fn.Name.Name, "New") {
				continue
			}

			annotations := ParseAnnotations(fn)
			if HasAnnotation(annotations, AnnotIgnore) {
				continue
			}
			name := fn.Name.Name
			if strings.Contains(name, "With") || strings.Contains(name, "From") {
				continue
			}

			obj, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func)
			if !ok {
				continue
			}
			className := primaryReturnClass(obj.Type().(*types.Signature))
			if className == "" {
				continue
			}

			if HasAnnotation(annotations, AnnotBind) {
				always = append(always, ServiceProvider{ClassName: className, Annotations: annotations})
				provided[className] = true
				continue
			}

			candidates = append(candidates, candidate{
				className:   className,
				annotations: annotations,
				priority:    funcPriority(pkg.Name, name),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].priority < candidates[j].priority })

	out := append([]ServiceProvider{}, always...)
	for _, c := range candidates {
		if provided[c.className] {
			continue
		}
		out = append(out, ServiceProvider{ClassName: c.className, Annotations: c.annotations})
		provided[c.className] = true
		break
	}
	return out
}

// primaryReturnClass returns the qualified class name of sig's first
// non-error result, or "" if it has none (no result, or a result that
// isn't a named struct/interface type this universe can register).
func primaryReturnClass(sig *types.Signature) string {
	res := sig.Results()
	for i := 0; i < res.Len(); i++ {
		t := res.At(i).Type()
		if isErrorResult(t) {
			continue
		}
		if qn := gotypesuniverse.QualifiedName(t); qn != "" {
			return qn
		}
	}
	return ""
}

func isErrorResult(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// funcPriority ranks how well a function name matches the "primary New"
// convention: New+PkgName first, bare New second, New+Service third,
// everything else last.
func funcPriority(pkgName, funcName string) int {
	suffix := strings.TrimPrefix(funcName, "New")
	switch {
	case strings.EqualFold(suffix, pkgName):
		return 0
	case suffix == "":
		return 1
	case suffix == "Service":
		return 2
	default:
		return 3
	}
}
