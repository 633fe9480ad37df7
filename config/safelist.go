package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v2"
)

// catalogDoc is the YAML shape --safe-catalog files use: lists of
// additional safe classes and fully-qualified safe method signatures,
// merged additively into the built-in catalog below.
type catalogDoc struct {
	SafeClasses []string `yaml:"safeClasses"`
	SafeMethods []string `yaml:"safeMethods"`
}

// builtinSafeClasses are classes this engine trusts to have no
// observable side effects from reading their static state or
// constructing instances of them — the immutable core value types a
// deobfuscator encounters constantly in wrapped/obfuscated string and
// numeric literals.
var builtinSafeClasses = map[string]bool{
	"Ljava/lang/String;":    true,
	"Ljava/lang/Integer;":   true,
	"Ljava/lang/Long;":      true,
	"Ljava/lang/Short;":     true,
	"Ljava/lang/Byte;":      true,
	"Ljava/lang/Boolean;":   true,
	"Ljava/lang/Character;": true,
	"Ljava/lang/Float;":     true,
	"Ljava/lang/Double;":    true,
	"Ljava/lang/Math;":      true,
	"Ljava/lang/StringBuilder;": true,
}

// builtinSafeMethods are fully-qualified method signatures (see
// dex.MethodSignature.String) this engine trusts to be pure and
// reflectively invocable during symbolic execution — mirroring the
// reference engine's hard-coded SafeMethod catalog.
var builtinSafeMethods = map[string]bool{
	"Ljava/lang/String;->length()I":                      true,
	"Ljava/lang/String;->charAt(I)C":                      true,
	"Ljava/lang/String;->equals(Ljava/lang/Object;)Z":      true,
	"Ljava/lang/String;->concat(Ljava/lang/String;)Ljava/lang/String;": true,
	"Ljava/lang/String;->substring(I)Ljava/lang/String;":   true,
	"Ljava/lang/String;->toCharArray()[C":                  true,
	"Ljava/lang/Integer;->parseInt(Ljava/lang/String;)I":    true,
	"Ljava/lang/Integer;->valueOf(I)Ljava/lang/Integer;":    true,
	"Ljava/lang/Math;->abs(I)I":                             true,
	"Ljava/lang/Math;->max(II)I":                            true,
	"Ljava/lang/Math;->min(II)I":                            true,
}

// defaultSupportLibraryPattern matches the Android support-library
// classes --include-support-library is needed to stop skipping.
var defaultSupportLibraryPattern = regexp.MustCompile(`^Landroid/support/(annotation|v\d+)/`)

// SafeList is the mutable, operator-extensible safe-invoke catalog
// (SPEC_FULL §6): the isSafe/isSafeMethod/framework-catalog predicates
// the VM driver consults before running a local <clinit> or resolving a
// reflective invoke.
type SafeList struct {
	classes              map[string]bool
	methods              map[string]bool
	includeSupportLib    bool
}

// NewSafeList builds the built-in catalog, with includeSupportLib
// controlling whether support-library classes are treated as local
// (analyzed) rather than as a skipped framework boundary.
func NewSafeList(includeSupportLib bool) *SafeList {
	sl := &SafeList{
		classes:           map[string]bool{},
		methods:           map[string]bool{},
		includeSupportLib: includeSupportLib,
	}
	for k := range builtinSafeClasses {
		sl.classes[k] = true
	}
	for k := range builtinSafeMethods {
		sl.methods[k] = true
	}
	return sl
}

// MergeFile additively loads a YAML catalog file (--safe-catalog) into
// the receiver.
func (sl *SafeList) MergeFile(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for _, c := range doc.SafeClasses {
		sl.classes[c] = true
	}
	for _, m := range doc.SafeMethods {
		sl.methods[m] = true
	}
	return nil
}

// IsSafe reports whether className is trusted to have no observable
// side effects from initialization or instantiation.
func (sl *SafeList) IsSafe(className string) bool {
	return sl.classes[className]
}

// IsSafeMethod reports whether a fully-qualified method signature is
// trusted to be pure and reflectively invocable.
func (sl *SafeList) IsSafeMethod(signature string) bool {
	return sl.methods[signature]
}

// IsSkippedFramework reports whether className should be skipped as a
// framework boundary rather than analyzed as local code — currently just
// the Android support-library pattern, gated by --include-support-library.
func (sl *SafeList) IsSkippedFramework(className string) bool {
	if sl.includeSupportLib {
		return false
	}
	return defaultSupportLibraryPattern.MatchString(className)
}
