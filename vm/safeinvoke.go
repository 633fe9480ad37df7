package vm

import (
	"reflect"

	"github.com/k5h4tr1y4/simplify/cache"
	"github.com/k5h4tr1y4/simplify/value"
)

// safeImpl is a Go stand-in for a safe Java method's pure behavior,
// invoked by reflect.Value.Call so that resolving and calling it goes
// through exactly one reflection code path regardless of how many safe
// signatures are registered — mirroring how a real smalivm-style engine
// reflectively invokes actual JVM/Android library code, but against Go
// implementations of the handful of java.lang primitives this engine
// trusts (SPEC_FULL §6's isSafeMethod catalog).
var safeImpls = map[string]reflect.Value{
	"Ljava/lang/String;->length()I": reflect.ValueOf(func(s string) int32 {
		return int32(len(s))
	}),
	"Ljava/lang/String;->charAt(I)C": reflect.ValueOf(func(s string, i int32) int32 {
		r := []rune(s)
		if int(i) < 0 || int(i) >= len(r) {
			return 0
		}
		return r[i]
	}),
	"Ljava/lang/String;->concat(Ljava/lang/String;)Ljava/lang/String;": reflect.ValueOf(func(a, b string) string {
		return a + b
	}),
	"Ljava/lang/String;->equals(Ljava/lang/Object;)Z": reflect.ValueOf(func(a, b string) bool {
		return a == b
	}),
	"Ljava/lang/Integer;->parseInt(Ljava/lang/String;)I": reflect.ValueOf(func(s string) int32 {
		var n int32
		neg := false
		for i, r := range s {
			if i == 0 && r == '-' {
				neg = true
				continue
			}
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + int32(r-'0')
		}
		if neg {
			n = -n
		}
		return n
	}),
	"Ljava/lang/Math;->abs(I)I": reflect.ValueOf(func(n int32) int32 {
		if n < 0 {
			return -n
		}
		return n
	}),
	"Ljava/lang/Math;->max(II)I": reflect.ValueOf(func(a, b int32) int32 {
		if a > b {
			return a
		}
		return b
	}),
	"Ljava/lang/Math;->min(II)I": reflect.ValueOf(func(a, b int32) int32 {
		if a < b {
			return a
		}
		return b
	}),
}

// resolveSafeCall looks up signature in c, falling back to the
// safeImpls registry and caching the outcome (hit or miss) either way.
func resolveSafeCall(c *cache.SafeMethodCache, signature string) (reflect.Value, bool) {
	if cached, ok := c.Get(signature); ok {
		if !cached.Found {
			return reflect.Value{}, false
		}
		fn, ok := safeImpls[signature]
		return fn, ok
	}

	fn, ok := safeImpls[signature]
	c.Put(signature, cache.ResolvedMethod{Signature: signature, Found: ok})
	return fn, ok
}

// invokeSafe calls a resolved safe implementation with args already
// unwrapped from their HeapItems (the caller has confirmed every arg is
// Concrete), converting the Go return value back into a HeapItem of
// declType. Returns false if arity/type conversion doesn't line up,
// which the caller treats as "could not resolve" rather than a crash.
func invokeSafe(fn reflect.Value, args []value.HeapItem, declType string) (value.HeapItem, bool) {
	fnType := fn.Type()
	if fnType.NumIn() != len(args) {
		return value.HeapItem{}, false
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, ok := a.ConcreteValue()
		if !ok {
			return value.HeapItem{}, false
		}
		rv := reflect.ValueOf(v)
		paramType := fnType.In(i)
		if !rv.Type().ConvertibleTo(paramType) {
			return value.HeapItem{}, false
		}
		in[i] = rv.Convert(paramType)
	}

	defer func() { recover() }()
	out := fn.Call(in)
	if len(out) == 0 {
		return value.NewConcrete(nil, value.TypeVoid), true
	}
	return value.NewConcrete(out[0].Interface(), declType), true
}
