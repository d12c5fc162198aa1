package dicore

import "errors"

// AutowireArguments matches args against params the way the source
// container's constructor/method injector does: named arguments bind by
// parameter name first, remaining positional arguments fill remaining
// parameters left to right, and anything still unfilled is autowired by
// type, by array-of-type, or left for the declared default — in that
// order. It returns the completed, fully positional-or-named Arguments
// list CompleteStatement stores back onto the definition.
func (r *Resolver) AutowireArguments(params []ParamInfo, args Arguments) (Arguments, error) {
	positional := args.Positional()
	pos := 0
	namedUsed := make(map[string]bool, len(args))

	result := make(Arguments, 0, len(params))

	for _, param := range params {
		if v, ok := args.ByName(param.Name); ok {
			namedUsed[param.Name] = true
			result = append(result, Argument{Name: param.Name, Value: v})
			continue
		}

		if param.Variadic {
			for ; pos < len(positional); pos++ {
				result = append(result, Argument{Value: positional[pos].Value})
			}
			break
		}

		if pos < len(positional) {
			result = append(result, Argument{Value: positional[pos].Value})
			pos++
			continue
		}

		value, provided, err := r.autowireByType(param)
		if err != nil {
			return nil, err
		}
		if provided {
			result = append(result, Argument{Name: param.Name, Value: value})
		}
	}

	if pos < len(positional) {
		return nil, argumentMismatchError(
			"Too many arguments: %d positional arguments given, only %d parameters declared.",
			len(positional), len(params))
	}
	for _, arg := range args {
		if arg.Name != "" && !namedUsed[arg.Name] {
			return nil, argumentMismatchError("Unknown named argument $%s.", arg.Name)
		}
	}

	return result, nil
}

// autowireByType resolves the value to fill an unfilled parameter with. A
// parameter that is optional (nullable or has a default) and can't be
// autowired is simply "not provided", so the caller omits the argument and
// whatever the target's own default applies. A parameter that is required
// and can't be autowired still returns "provided" with a nil value — spec
// §4.2 step 6 requires a required-but-unresolved parameter to emit a null
// placeholder at its slot, not silently drop the argument, alongside the
// deprecation warning (or hard error under StrictWarnings). Returning an
// error short-circuits only for hard failures distinct from that warning.
func (r *Resolver) autowireByType(param ParamInfo) (value any, provided bool, err error) {
	switch {
	case param.IsArray():
		return r.collectArrayCandidates(param.ArrayElemType), true, nil

	case param.Intersection:
		return nil, false, intersectionTypeUnsupportedError(param.Name)

	case param.Union:
		if param.HasDefault {
			return nil, false, nil
		}
		return nil, false, unionWithoutDefaultError(param.Name)

	case param.ClassName != "":
		ref, getErr := r.resolveByType(param.ClassName)
		if getErr == nil {
			return ref, true, nil
		}
		var missing *MissingServiceException
		if errors.As(getErr, &missing) {
			if param.Nullable || param.HasDefault {
				return nil, false, nil
			}
			if werr := r.warnOrFail(
				"Parameter $%s of type '%s' could not be autowired: no matching service.",
				param.Name, param.ClassName); werr != nil {
				return nil, false, werr
			}
			return nil, true, nil
		}
		return nil, false, requiredByParam(getErr, param.Name)

	default:
		if param.HasDefault || param.Nullable {
			return nil, false, nil
		}
		if werr := r.warnOrFail(
			"Parameter $%s has no type hint and no default value; cannot autowire.", param.Name); werr != nil {
			return nil, false, werr
		}
		return nil, true, nil
	}
}

// collectArrayCandidates returns one Reference per autowired-eligible
// definition whose resolved type satisfies elemType, in registry order —
// the Go analogue of injecting "all services implementing this interface"
// into a "Class[] $name"-style parameter.
func (r *Resolver) collectArrayCandidates(elemType string) []any {
	var out []any
	for _, def := range r.Registry.FindAutowired() {
		if def.Type() == "" {
			continue
		}
		if r.Universe.IsSubtype(def.Type(), elemType) {
			out = append(out, NameRef(def.Name()))
		}
	}
	return out
}
