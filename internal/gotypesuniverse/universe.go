// Package gotypesuniverse implements dicore.TypeUniverse over a module
// loaded with golang.org/x/tools/go/packages, the way a host with ambient
// runtime reflection never has to: every query the resolver makes against
// a "class" is answered here by walking go/types information instead.
package gotypesuniverse

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/arborist-di/dicore/dicore"
)

// Universe is a go/types-backed dicore.TypeUniverse over one loaded
// module. Class names are qualified as "<package path>.<type name>",
// matching the key the scanner in cmd/dicorescan uses when it registers
// the definitions this Universe's queries will be run against.
type Universe struct {
	pkgs []*packages.Package

	named     map[string]*types.Named
	functions map[string]*types.Func
	consts    map[string]map[string]types.TypeAndValue
}

// Load loads every package matched by patterns (resolved relative to dir,
// a module root) with full type information, and indexes their exported
// named types, free functions, and typed constants.
func Load(dir string, patterns []string) (*Universe, error) {
	cfg := &packages.Config{
		Mode: packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax | packages.NeedName |
			packages.NeedFiles | packages.NeedImports,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("gotypesuniverse: load packages: %w", err)
	}
	var loadErrs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
	}
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("gotypesuniverse: package errors:\n  %s", strings.Join(loadErrs, "\n  "))
	}

	u := &Universe{
		pkgs:      pkgs,
		named:     make(map[string]*types.Named),
		functions: make(map[string]*types.Func),
		consts:    make(map[string]map[string]types.TypeAndValue),
	}
	for _, pkg := range pkgs {
		u.index(pkg)
	}
	return u, nil
}

// Packages returns the loaded packages, for a caller (cmd/dicorescan's
// scanner) that needs to walk the same syntax trees to discover services.
func (u *Universe) Packages() []*packages.Package { return u.pkgs }

// QualifiedName renders the canonical class-name key this package uses for
// a go/types.Type: "<package path>.<type name>" after dereferencing a
// pointer, or "" if t does not name an exported named type.
func QualifiedName(t types.Type) string {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return ""
	}
	return named.Obj().Pkg().Path() + "." + named.Obj().Name()
}

func (u *Universe) index(pkg *packages.Package) {
	if pkg.Types == nil {
		return
	}
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		switch o := obj.(type) {
		case *types.TypeName:
			if named, ok := o.Type().(*types.Named); ok {
				u.named[pkg.PkgPath+"."+name] = named
			}
		case *types.Func:
			u.functions[pkg.PkgPath+"."+name] = o
		case *types.Const:
			typeStr := QualifiedName(o.Type())
			if typeStr == "" {
				continue
			}
			set, ok := u.consts[typeStr]
			if !ok {
				set = make(map[string]types.TypeAndValue)
				u.consts[typeStr] = set
			}
			set[name] = types.TypeAndValue{Type: o.Type(), Value: o.Val()}
		}
	}
}

func (u *Universe) ClassExists(name string) bool {
	n, ok := u.named[name]
	if !ok {
		return false
	}
	_, isIface := n.Underlying().(*types.Interface)
	return !isIface
}

func (u *Universe) InterfaceExists(name string) bool {
	n, ok := u.named[name]
	if !ok {
		return false
	}
	_, isIface := n.Underlying().(*types.Interface)
	return isIface
}

func (u *Universe) FunctionExists(name string) bool {
	_, ok := u.functions[name]
	return ok
}

// IsConcrete reports whether class names a known non-interface type.
// There is no abstract-class concept in Go, so any known struct/basic
// named type is concrete.
func (u *Universe) IsConcrete(class string) bool {
	return u.ClassExists(class)
}

// IsSubtype reports whether sub satisfies super. Go has no class
// inheritance, so this is exactly interface satisfaction (plus identity):
// sub implements the interface super names.
func (u *Universe) IsSubtype(sub, super string) bool {
	if sub == super {
		_, ok := u.named[sub]
		return ok
	}
	subType, ok := u.named[sub]
	if !ok {
		return false
	}
	superType, ok := u.named[super]
	if !ok {
		return false
	}
	superIface, ok := superType.Underlying().(*types.Interface)
	if !ok {
		return false
	}
	return types.Implements(subType, superIface) || types.Implements(types.NewPointer(subType), superIface)
}

func (u *Universe) Constructor(class string) (*dicore.FunctionInfo, bool) {
	named, ok := u.named[class]
	if !ok {
		return nil, false
	}
	pkgPath := named.Obj().Pkg().Path()
	typeName := named.Obj().Name()

	for _, candidate := range []string{"New" + typeName, "New"} {
		fn, ok := u.functions[pkgPath+"."+candidate]
		if !ok {
			continue
		}
		if !constructorReturns(fn, named) {
			continue
		}
		return buildFunctionInfo(fn, false), true
	}
	return nil, false
}

func constructorReturns(fn *types.Func, named *types.Named) bool {
	sig := fn.Type().(*types.Signature)
	res := sig.Results()
	for i := 0; i < res.Len(); i++ {
		if QualifiedName(res.At(i).Type()) == named.Obj().Pkg().Path()+"."+named.Obj().Name() {
			return true
		}
	}
	return false
}

func (u *Universe) Method(class, name string) (*dicore.FunctionInfo, bool) {
	named, ok := u.named[class]
	if !ok {
		return nil, false
	}
	obj, _, _ := types.LookupFieldOrMethod(named, true, named.Obj().Pkg(), name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, false
	}
	return buildFunctionInfo(fn, true), true
}

func (u *Universe) GlobalFunction(name string) (*dicore.FunctionInfo, bool) {
	fn, ok := u.functions[name]
	if !ok {
		return nil, false
	}
	return buildFunctionInfo(fn, false), true
}

func (u *Universe) ClassConst(class, name string) (any, bool) {
	return u.lookupConst(class, name)
}

func (u *Universe) EnumCase(class, name string) (any, bool) {
	return u.lookupConst(class, name)
}

func (u *Universe) lookupConst(class, name string) (any, bool) {
	set, ok := u.consts[class]
	if !ok {
		return nil, false
	}
	tv, ok := set[name]
	if !ok {
		return nil, false
	}
	return constantGoValue(tv.Value), true
}

func constantGoValue(v constant.Value) any {
	switch v.Kind() {
	case constant.Bool:
		return constant.BoolVal(v)
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i, exact := constant.Int64Val(v); exact {
			return i
		}
	case constant.Float:
		if f, exact := constant.Float64Val(v); exact {
			return f
		}
	}
	return v.ExactString()
}

func buildFunctionInfo(fn *types.Func, isMethod bool) *dicore.FunctionInfo {
	sig := fn.Type().(*types.Signature)
	info := &dicore.FunctionInfo{
		Name:   fn.Name(),
		Public: ast.IsExported(fn.Name()),
		Static: !isMethod,
	}
	info.ReturnClass = singleReturnClass(sig)
	info.Params = buildParams(sig)
	return info
}

func singleReturnClass(sig *types.Signature) string {
	res := sig.Results()
	var classes []string
	for i := 0; i < res.Len(); i++ {
		t := res.At(i).Type()
		if isErrorType(t) {
			continue
		}
		if qn := QualifiedName(t); qn != "" {
			classes = append(classes, qn)
		} else {
			return ""
		}
	}
	if len(classes) != 1 {
		return ""
	}
	return classes[0]
}

func buildParams(sig *types.Signature) []dicore.ParamInfo {
	params := sig.Params()
	out := make([]dicore.ParamInfo, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		t := p.Type()
		info := dicore.ParamInfo{Name: p.Name()}

		if sig.Variadic() && i == params.Len()-1 {
			info.Variadic = true
			if slice, ok := t.(*types.Slice); ok {
				t = slice.Elem()
			}
		}
		if ptr, ok := t.(*types.Pointer); ok {
			info.Nullable = true
			t = ptr.Elem()
		}
		if slice, ok := t.(*types.Slice); ok {
			if qn := QualifiedName(slice.Elem()); qn != "" {
				info.ArrayElemType = qn
			}
		} else if qn := QualifiedName(t); qn != "" {
			info.ClassName = qn
		}
		out = append(out, info)
	}
	return out
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}
