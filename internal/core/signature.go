package core

import (
	"fmt"
	"reflect"
)

// Param describes one declared parameter of an intercepted function, in declaration order.
type Param struct {
	Name        string
	HasDefault  bool // the caller may leave it out and the original fills in its own default
	IsReference bool // a pointer, so mutations by the original or the mock reach the caller
	IsVariadic  bool // the variadic tail; only valid on the last parameter
}

// Signature is the mirrored call shape of an original function.
type Signature struct {
	Params  []Param
	Results int
}

// SignatureOf mirrors the parameters of a func type. Reflection carries no parameter names, so they are numbered
// arg1, arg2, ... the same way the generator names unnamed parameters.
func SignatureOf(fnType reflect.Type) (Signature, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("%w: %v", ErrNotAFunction, fnType)
	}

	params := make([]Param, fnType.NumIn())
	for i := range params {
		in := fnType.In(i)
		isVariadic := fnType.IsVariadic() && i == fnType.NumIn()-1

		if isVariadic {
			in = in.Elem()
		}

		params[i] = Param{
			Name:        fmt.Sprintf("arg%d", i+1),
			IsReference: in.Kind() == reflect.Pointer,
			IsVariadic:  isVariadic,
		}
	}

	return Signature{Params: params, Results: fnType.NumOut()}, nil
}

// Flatten turns the values a forwarder received into the recorded argument list, spreading a variadic tail into
// individual arguments.
func (s Signature) Flatten(in []reflect.Value) []any {
	args := make([]any, 0, len(in))

	for i, value := range in {
		if s.IsVariadic() && i == len(s.Params)-1 {
			for j := range value.Len() {
				args = append(args, value.Index(j).Interface())
			}

			continue
		}

		args = append(args, value.Interface())
	}

	return args
}

// IsVariadic reports whether the last parameter is a variadic tail.
func (s Signature) IsVariadic() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].IsVariadic
}

// MaxArgs returns the most arguments a call may pass, or -1 when a variadic tail makes it unbounded.
func (s Signature) MaxArgs() int {
	if s.IsVariadic() {
		return -1
	}

	return len(s.Params)
}

// MinArgs returns how many leading arguments every call must pass.
func (s Signature) MinArgs() int {
	count := 0

	for _, param := range s.Params {
		if param.HasDefault || param.IsVariadic {
			break
		}

		count++
	}

	return count
}

// Normalize checks args against the declared parameters and strips trailing Omitted markers from optional
// positions, so the original sees exactly the arguments the caller supplied and fills its own defaults.
func (s Signature) Normalize(function string, args []any) ([]any, error) {
	end := len(args)

	for end > 0 && IsOmitted(args[end-1]) {
		param, ok := s.paramAt(end - 1)
		if !ok || !param.HasDefault {
			return nil, &ArityError{
				Function: function,
				Detail:   fmt.Sprintf("argument %d (%s) cannot be omitted", end, param.Name),
			}
		}

		end--
	}

	args = args[:end]

	for i, arg := range args {
		if IsOmitted(arg) {
			param, _ := s.paramAt(i)

			return nil, &ArityError{
				Function: function,
				Detail:   fmt.Sprintf("argument %d (%s) omitted before a supplied argument", i+1, param.Name),
			}
		}
	}

	if len(args) < s.MinArgs() {
		return nil, &ArityError{
			Function: function,
			Detail:   fmt.Sprintf("too few arguments: got %d, want at least %d", len(args), s.MinArgs()),
		}
	}

	if maxArgs := s.MaxArgs(); maxArgs >= 0 && len(args) > maxArgs {
		return nil, &ArityError{
			Function: function,
			Detail:   fmt.Sprintf("too many arguments: got %d, want at most %d", len(args), maxArgs),
		}
	}

	return args, nil
}

// Validate checks that required parameters precede optional ones and that only the last parameter is variadic.
func (s Signature) Validate() error {
	seenOptional := false

	for i, param := range s.Params {
		if param.IsVariadic && i != len(s.Params)-1 {
			return fmt.Errorf("%w: variadic %q is not last", ErrInvalidSignature, param.Name)
		}

		if param.IsVariadic && param.HasDefault {
			return fmt.Errorf("%w: variadic %q cannot have a default", ErrInvalidSignature, param.Name)
		}

		if param.HasDefault {
			seenOptional = true

			continue
		}

		if seenOptional && !param.IsVariadic {
			return fmt.Errorf("%w: required %q follows an optional parameter", ErrInvalidSignature, param.Name)
		}
	}

	return nil
}

// paramAt returns the parameter an argument index binds to, treating every index past the end as part of a
// variadic tail.
func (s Signature) paramAt(index int) (Param, bool) {
	if index < len(s.Params) {
		return s.Params[index], true
	}

	if s.IsVariadic() {
		return s.Params[len(s.Params)-1], true
	}

	return Param{Name: fmt.Sprintf("arg%d", index+1)}, false
}

// IsOmitted reports whether v is the Omitted marker.
func IsOmitted(v any) bool {
	_, ok := v.(omitted)

	return ok
}

// Exported variables.
var (
	// Omitted marks an optional argument the caller chose not to supply. Its type is unexported, so no ordinary
	// argument value can be mistaken for it.
	//
	//nolint:gochecknoglobals // Sentinel value
	Omitted any = omitted{}
)

type omitted struct{}

func (omitted) String() string {
	return "<omitted>"
}
