// Package target implements eelc's target registry (§6 "Target
// registry"): the fixed table of MCU targets the compiler can emit
// against, each with a supported version range, matched against a
// user-supplied `-t name@constraint` spec using Masterminds/semver.
//
// Patterned on the build-tooling use of semver for toolchain
// version gating (internal/build), adapted here to target/version
// gating instead of Go-toolchain gating; this is a driver-level check
// (§7's third error channel) that runs before any *symtab.SymbolTable
// exists, so failures here are never a diag.Diagnostic.
package target

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Spec is a resolved target selection: a registry Name plus the
// concrete Version matched against the requested constraint (empty for
// an unconstrained target like native-sim).
type Spec struct {
	Name    string
	Version string
}

// entry is one registry row: the declared supported range, plus the
// concrete versions of that target's runtime header actually shipped —
// the set a requested constraint is matched against.
type entry struct {
	rangeConstraint string
	versions        []string // empty means "unconstrained"; no version is reported
}

// registry is §6's fixed table.
var registry = map[string]entry{
	"avr":        {rangeConstraint: ">=1.0, <3.0", versions: []string{"1.0.0", "1.4.2", "2.0.0", "2.1.0"}},
	"esp32":      {rangeConstraint: ">=1.0", versions: []string{"1.0.0", "1.2.0"}},
	"esp8266":    {rangeConstraint: ">=1.0", versions: []string{"1.0.0"}},
	"rp2040":     {rangeConstraint: ">=1.0", versions: []string{"1.0.0", "1.1.0"}},
	"native-sim": {versions: nil},
}

// Default is used when the driver selects no explicit -target.
const Default = "avr"

// Names returns every registered target name, sorted, for -list-targets.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe renders one registry row for -list-targets.
func Describe(name string) string {
	e := registry[name]
	if e.rangeConstraint == "" {
		return fmt.Sprintf("%-12s (unconstrained)", name)
	}
	return fmt.Sprintf("%-12s %s", name, e.rangeConstraint)
}

// Resolve parses a `-t` spec ("name" or "name@constraint") and matches
// it against the registry. It fails if the name is unknown, the
// constraint doesn't parse, or no version the table knows about
// satisfies both the target's declared supported range and the
// requested constraint.
func Resolve(spec string) (Spec, error) {
	name, constraintStr, hasConstraint := strings.Cut(spec, "@")
	if name == "" {
		name = Default
	}

	e, ok := registry[name]
	if !ok {
		return Spec{}, fmt.Errorf("unknown target %q (see -list-targets)", name)
	}

	if len(e.versions) == 0 {
		if hasConstraint {
			return Spec{}, fmt.Errorf("target %q is unconstrained and accepts no version constraint", name)
		}
		return Spec{Name: name}, nil
	}

	var rangeC *semver.Constraints
	if e.rangeConstraint != "" {
		c, err := semver.NewConstraint(e.rangeConstraint)
		if err != nil {
			return Spec{}, fmt.Errorf("internal: target %q has an invalid registry range: %w", name, err)
		}
		rangeC = c
	}

	var reqC *semver.Constraints
	if hasConstraint {
		c, err := semver.NewConstraint(constraintStr)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid version constraint %q for target %q: %w", constraintStr, name, err)
		}
		reqC = c
	}

	best := latestSatisfying(e.versions, rangeC, reqC)
	if best == nil {
		if hasConstraint {
			return Spec{}, fmt.Errorf("target %q has no version satisfying %q (supported: %s)", name, constraintStr, e.rangeConstraint)
		}
		return Spec{}, fmt.Errorf("internal: target %q's registry range %q excludes every known version", name, e.rangeConstraint)
	}

	return Spec{Name: name, Version: best.String()}, nil
}

// latestSatisfying returns the highest version in versions satisfying
// both constraints (either may be nil, meaning unconstrained).
func latestSatisfying(versions []string, cs ...*semver.Constraints) *semver.Version {
	var best *semver.Version
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		ok := true
		for _, c := range cs {
			if c != nil && !c.Check(v) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
