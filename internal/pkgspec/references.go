// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import "fmt"

// UnresolvedReferenceError reports a reference to a package or variable that
// is not available. Variable is empty when the extended package is missing.
type UnresolvedReferenceError struct {
	Package    string
	Referenced string
	Variable   string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("package %s extends %s, which was not loaded", e.Package, e.Referenced)
	}
	return fmt.Sprintf("package %s uses variable %s of package %s, which is not declared", e.Package, e.Variable, e.Referenced)
}

// CheckReferences verifies that every external variable of inst names a
// package in its includes that declares the variable, and that an extended
// package is included.
func CheckReferences(inst *Instance) error {
	for _, conf := range inst.Configs().All() {
		dyn, ok := conf.Type.(*DynamicConf)
		if !ok {
			continue
		}
		for owner, vars := range dyn.EVars.All() {
			dep, ok := inst.Include(owner)
			for name := range vars.All() {
				if !ok || !declaresVar(dep, name) {
					return &UnresolvedReferenceError{Package: inst.Name, Referenced: owner, Variable: name}
				}
			}
		}
	}

	if ext, ok := inst.Spec.(*ExtensionSpec); ok {
		if _, ok := inst.Include(ext.Extends); !ok {
			return &UnresolvedReferenceError{Package: inst.Name, Referenced: ext.Extends}
		}
	}
	return nil
}

// declaresVar reports whether any dynamic config of pkg declares name as an
// internal or hidden variable.
func declaresVar(pkg *Package, name string) bool {
	for _, conf := range pkg.Configs().All() {
		dyn, ok := conf.Type.(*DynamicConf)
		if !ok {
			continue
		}
		if _, ok := dyn.IVars.Get(name); ok {
			return true
		}
		if _, ok := dyn.HVars.Get(name); ok {
			return true
		}
	}
	return false
}
