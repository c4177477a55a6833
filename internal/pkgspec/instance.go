// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import "sort"

// ConfigSource is anything exposing a configuration-entry mapping. Generators
// accept it so they work on a raw package as well as on a resolved instance.
type ConfigSource interface {
	Configs() Configs
}

// Includes maps package names to the specs loaded for them.
type Includes map[string]*Package

// Instance is a package with its variant selected and its final name computed.
// It shares the spec and includes of the package it was created from.
type Instance struct {
	Name     string
	Variant  string
	Spec     PackageSpec
	Includes Includes
}

// Instantiate selects a variant ("" for none). It reports false when variant
// is not one of p.Variants, or when it is empty and p has variants.
func (p *Package) Instantiate(variant string, includes Includes) (*Instance, bool) {
	name := p.Name
	if variant != "" {
		if !p.HasVariant(variant) {
			return nil, false
		}
		name = p.Name + "-" + variant
	} else if len(p.Variants) > 0 {
		return nil, false
	}

	return &Instance{
		Name:     name,
		Variant:  variant,
		Spec:     p.Spec,
		Includes: includes,
	}, true
}

// Instances returns every instance of p: one without variants, otherwise one
// per variant in sorted order.
func Instances(p *Package, includes Includes) []*Instance {
	if len(p.Variants) == 0 {
		inst, _ := p.Instantiate("", includes)
		return []*Instance{inst}
	}

	variants := make([]string, len(p.Variants))
	copy(variants, p.Variants)
	sort.Strings(variants)

	out := make([]*Instance, 0, len(variants))
	for _, v := range variants {
		inst, _ := p.Instantiate(v, includes)
		out = append(out, inst)
	}
	return out
}

func (i *Instance) Configs() Configs { return i.Spec.Configs() }

// Include returns the included package called name.
func (i *Instance) Include(name string) (*Package, bool) {
	pkg, ok := i.Includes[name]
	return pkg, ok
}

// AsService narrows the instance to a service. Extensions report false.
func (i *Instance) AsService() (*ServiceInstance, bool) {
	svc, ok := i.Spec.(*ServiceSpec)
	if !ok {
		return nil, false
	}
	return &ServiceInstance{
		Name:     i.Name,
		Variant:  i.Variant,
		Spec:     svc,
		Includes: i.Includes,
	}, true
}

// ServiceInstance is an instance whose spec is a service.
type ServiceInstance struct {
	Name     string
	Variant  string
	Spec     *ServiceSpec
	Includes Includes
}

func (s *ServiceInstance) Configs() Configs { return s.Spec.Config }

// UserName is the configured user, defaulting to the instance name.
func (s *ServiceInstance) UserName() string {
	if s.Spec.User.Name != "" {
		return s.Spec.User.Name
	}
	return s.Name
}

// ServiceName is the instance name.
func (s *ServiceInstance) ServiceName() string { return s.Name }

// ServiceGroup returns the group to create, if the user spec asks for one.
func (s *ServiceInstance) ServiceGroup() (string, bool) {
	if !s.Spec.User.Group {
		return "", false
	}
	return s.UserName(), true
}

// Shape names the spec shape: "service" or "extension".
func (i *Instance) Shape() string {
	if _, ok := i.Spec.(*ServiceSpec); ok {
		return "service"
	}
	return "extension"
}
