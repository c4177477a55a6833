// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Debcrafter - Debcrafter compiles declarative package specifications into the artifacts needed to build Debian packages.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package pkgspec provides the package specification model and the
// resolution engine that turns spec files into package instances.
package pkgspec

// Package is one parsed spec file.
type Package struct {
	// Name is the base package name, unique within a build.
	Name string
	// Variants lists name suffixes producing sibling packages. Empty means
	// the spec describes exactly one package.
	Variants []string
	Spec     PackageSpec
}

// HasVariant reports whether v is one of the package's variants.
func (p *Package) HasVariant(v string) bool {
	for _, have := range p.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// Configs implements ConfigSource.
func (p *Package) Configs() Configs { return p.Spec.Configs() }

// PackageSpec is either a *ServiceSpec or an *ExtensionSpec.
type PackageSpec interface {
	ConfigSource
	Summary() string
	LongDoc() string
	packageSpec()
}

// ServiceSpec describes a long-running service package.
type ServiceSpec struct {
	BinPackage         string   `yaml:"bin_package"`
	Binary             string   `yaml:"binary"`
	ConfParam          string   `yaml:"conf_param"`
	ConfDir            *ConfDir `yaml:"conf_d"`
	User               UserSpec `yaml:"user"`
	Config             Configs  `yaml:"config"`
	After              string   `yaml:"after"`
	ExtraServiceConfig string   `yaml:"extra_service_config"`
	SummaryText        string   `yaml:"summary"`
	LongDocText        string   `yaml:"long_doc"`
}

func (s *ServiceSpec) Configs() Configs { return s.Config }
func (s *ServiceSpec) Summary() string  { return s.SummaryText }
func (s *ServiceSpec) LongDoc() string  { return s.LongDocText }
func (s *ServiceSpec) packageSpec()     {}

// ExtensionSpec attaches configuration to another package.
type ExtensionSpec struct {
	Extends string `yaml:"extends"`
	// Replaces makes this extension's entries supersede the base's entries
	// of the same key instead of merging with them.
	Replaces    bool    `yaml:"replaces"`
	SummaryText string  `yaml:"summary"`
	LongDocText string  `yaml:"long_doc"`
	Config      Configs `yaml:"config"`
}

func (e *ExtensionSpec) Configs() Configs { return e.Config }
func (e *ExtensionSpec) Summary() string  { return e.SummaryText }
func (e *ExtensionSpec) LongDoc() string  { return e.LongDocText }
func (e *ExtensionSpec) packageSpec()     {}

// ConfDir names the configuration directory and the binary parameter used to pass it.
type ConfDir struct {
	Param string `yaml:"param"`
	Name  string `yaml:"name"`
}

// UserSpec declares the runtime user of a service.
type UserSpec struct {
	Name   string      `yaml:"name"`
	Group  bool        `yaml:"group"`
	Create *CreateUser `yaml:"create"`
}

// CreateUser requests provisioning of the user.
type CreateUser struct {
	Home bool `yaml:"home"`
}

// Configs is the ordered configuration-entry mapping of a package.
type Configs = Ordered[Config]

// Config is one named configuration entry.
type Config struct {
	Public bool
	Type   ConfType
}

// ConfType is either a *StaticConf or a *DynamicConf.
type ConfType interface {
	confType()
}

// StaticConf is a file with literal content.
type StaticConf struct {
	Content string `yaml:"content"`
	// Internal hides the file from generated documentation.
	Internal bool `yaml:"internal"`
}

func (*StaticConf) confType() {}

// DynamicConf is a file rendered from typed variables.
type DynamicConf struct {
	Format   ConfFormat            `yaml:"format"`
	IVars    Ordered[InternalVar]  `yaml:"ivars"`
	EVars    Ordered[ExternalVars] `yaml:"evars"`
	HVars    Ordered[HiddenVar]    `yaml:"hvars"`
	CatDir   string                `yaml:"cat_dir"`
	// CatFiles is a set; duplicates collapse on load.
	CatFiles stringSet `yaml:"cat_files"`
	Comment  string    `yaml:"comment"`
}

func (*DynamicConf) confType() {}

// ExternalVars maps a variable name owned by another package to how it is consumed.
type ExternalVars = Ordered[ExternalVar]

// ConfFormat is the output format of a dynamic config.
type ConfFormat string

const (
	FormatPlain ConfFormat = "plain"
	FormatToml  ConfFormat = "toml"
)

func (f ConfFormat) String() string { return string(f) }

// InternalVar is a variable the package prompts for.
type InternalVar struct {
	Type     VarType
	Summary  string
	LongDoc  string
	Default  *string
	Priority DebconfPriority
}

// ExternalVar declares use of a variable owned by another package.
type ExternalVar struct {
	// Name renames the variable locally; empty keeps the original name.
	Name string
	// Store is false when the value is consumed without persisting an answer.
	Store bool
}

// HiddenVar is a computed variable that is never shown to the user.
type HiddenVar struct {
	Type  VarType
	Value HiddenValue
}

// HiddenValueKind says how a hidden variable gets its value.
type HiddenValueKind string

const (
	HiddenConstant HiddenValueKind = "constant"
	HiddenScript   HiddenValueKind = "script"
)

// HiddenValue is either a constant or a script evaluated at configuration time.
type HiddenValue struct {
	Kind HiddenValueKind
	// Value holds the constant or the script source.
	Value string
}

// VarKind is the discriminator of VarType.
type VarKind string

const (
	VarString   VarKind = "string"
	VarUint     VarKind = "uint"
	VarBool     VarKind = "bool"
	VarBindHost VarKind = "bind_host"
	VarBindPort VarKind = "bind_port"
	VarPath     VarKind = "path"
)

// VarType is the type of a variable. Path is set only for VarPath.
type VarType struct {
	Kind VarKind
	Path *PathType
}

// FileType restricts what a path variable may point to.
type FileType string

const (
	FileRegular FileType = "regular"
	FileDir     FileType = "dir"
)

// PathType carries the extra attributes of a path variable.
type PathType struct {
	FileType FileType     `yaml:"file_type"`
	Create   *CreateFsObj `yaml:"create"`
}

// CreateFsObj requests creation of the path with the given ownership.
type CreateFsObj struct {
	Mode  uint16 `yaml:"mode"`
	Owner string `yaml:"owner"`
	Group string `yaml:"group"`
}

// PriorityLevel is a debconf question priority.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "low"
	PriorityMedium   PriorityLevel = "medium"
	PriorityHigh     PriorityLevel = "high"
	PriorityCritical PriorityLevel = "critical"
	// PriorityDynamic means Script computes the priority at configuration time.
	PriorityDynamic PriorityLevel = "dynamic"
)

// DebconfPriority is a fixed level, or a script when Level is PriorityDynamic.
type DebconfPriority struct {
	Level  PriorityLevel
	Script string
}
