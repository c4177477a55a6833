// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AmbiguousShapeError is returned when a table carries the required fields
// of more than one shape, e.g. both "content" and "format" on a config entry.
type AmbiguousShapeError struct {
	What   string
	Shapes []string
}

func (e *AmbiguousShapeError) Error() string {
	return fmt.Sprintf("%s is ambiguous: it matches shapes %s", e.What, strings.Join(e.Shapes, " and "))
}

type shape struct {
	name     string
	required []string
}

var (
	packageShapes = []shape{
		{name: "service", required: []string{"bin_package", "binary", "user"}},
		{name: "extension", required: []string{"extends"}},
	}
	confShapes = []shape{
		{name: "static", required: []string{"content"}},
		{name: "dynamic", required: []string{"format"}},
	}
)

// sniffShape picks the single shape whose required fields are all present.
func sniffShape(node *yaml.Node, what string, shapes []shape) (string, error) {
	var matched []string
	for _, s := range shapes {
		if hasKeys(node, s.required...) {
			matched = append(matched, s.name)
		}
	}
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		wants := make([]string, 0, len(shapes))
		for _, s := range shapes {
			wants = append(wants, fmt.Sprintf("%s needs %s", s.name, strings.Join(s.required, ", ")))
		}
		return "", fmt.Errorf("%s matches no known shape (%s)", what, strings.Join(wants, "; "))
	default:
		return "", &AmbiguousShapeError{What: what, Shapes: matched}
	}
}

func (p *Package) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	var head struct {
		Name     string    `yaml:"name"`
		Variants stringSet `yaml:"variants"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	if head.Name == "" {
		return errors.New(`missing required field "name"`)
	}
	for _, v := range head.Variants {
		if v == "" {
			return fmt.Errorf("package %s: empty variant name", head.Name)
		}
	}

	kind, err := sniffShape(node, "package "+head.Name, packageShapes)
	if err != nil {
		return err
	}
	switch kind {
	case "service":
		var s ServiceSpec
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("package %s: %w", head.Name, err)
		}
		p.Spec = &s
	case "extension":
		var e ExtensionSpec
		if err := node.Decode(&e); err != nil {
			return fmt.Errorf("package %s: %w", head.Name, err)
		}
		p.Spec = &e
	}

	p.Name = head.Name
	p.Variants = head.Variants
	return nil
}

// UnmarshalYAML rejects an explicit empty user name; an absent name falls
// back to the instance name.
func (u *UserSpec) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	type plain UserSpec
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if mappingValue(node, "name") != nil && raw.Name == "" {
		return errors.New("user name must not be empty")
	}
	*u = UserSpec(raw)
	return nil
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	var head struct {
		Public bool `yaml:"public"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	kind, err := sniffShape(node, "config", confShapes)
	if err != nil {
		return err
	}
	switch kind {
	case "static":
		var s StaticConf
		if err := node.Decode(&s); err != nil {
			return err
		}
		c.Type = &s
	case "dynamic":
		var d DynamicConf
		if err := node.Decode(&d); err != nil {
			return err
		}
		c.Type = &d
	}
	c.Public = head.Public
	return nil
}

func (f *ConfFormat) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch v := ConfFormat(node.Value); v {
		case FormatPlain, FormatToml:
			*f = v
			return nil
		}
	}
	return fmt.Errorf("unknown format %s (want plain or toml)", kindName(node))
}

func (v *InternalVar) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	ty, err := decodeVarType(node)
	if err != nil {
		return err
	}
	var raw struct {
		Summary  *string          `yaml:"summary"`
		LongDoc  string           `yaml:"long_doc"`
		Default  *string          `yaml:"default"`
		Priority *DebconfPriority `yaml:"priority"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Summary == nil {
		return errors.New(`missing required field "summary"`)
	}
	if raw.Priority == nil {
		return errors.New(`missing required field "priority"`)
	}

	*v = InternalVar{
		Type:     ty,
		Summary:  *raw.Summary,
		LongDoc:  raw.LongDoc,
		Default:  raw.Default,
		Priority: *raw.Priority,
	}
	return nil
}

func (e *ExternalVar) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	var raw struct {
		Name  string `yaml:"name"`
		Store *bool  `yaml:"store"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.Store = raw.Store == nil || *raw.Store
	return nil
}

func (h *HiddenVar) UnmarshalYAML(node *yaml.Node) error {
	if err := expectTable(node); err != nil {
		return err
	}
	ty, err := decodeVarType(node)
	if err != nil {
		return err
	}
	var raw struct {
		Constant *string `yaml:"constant"`
		Script   *string `yaml:"script"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	h.Type = ty
	switch {
	case raw.Constant != nil && raw.Script != nil:
		return errors.New("hidden variable sets both constant and script")
	case raw.Constant != nil:
		h.Value = HiddenValue{Kind: HiddenConstant, Value: *raw.Constant}
	case raw.Script != nil:
		h.Value = HiddenValue{Kind: HiddenScript, Value: *raw.Script}
	default:
		return errors.New("hidden variable needs either constant or script")
	}
	return nil
}

func (p *DebconfPriority) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch lvl := PriorityLevel(node.Value); lvl {
		case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
			*p = DebconfPriority{Level: lvl}
			return nil
		}
	case yaml.MappingNode:
		var raw struct {
			Dynamic *struct {
				Script string `yaml:"script"`
			} `yaml:"dynamic"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if len(node.Content) == 2 && raw.Dynamic != nil && raw.Dynamic.Script != "" {
			*p = DebconfPriority{Level: PriorityDynamic, Script: raw.Dynamic.Script}
			return nil
		}
	}
	return fmt.Errorf("invalid priority %s (want low, medium, high, critical or {dynamic = {script = ...}})", kindName(node))
}

// decodeVarType reads the "type" discriminator and, for paths, its attributes.
func decodeVarType(node *yaml.Node) (VarType, error) {
	var head struct {
		Type VarKind `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return VarType{}, err
	}
	switch head.Type {
	case VarString, VarUint, VarBool, VarBindHost, VarBindPort:
		return VarType{Kind: head.Type}, nil
	case VarPath:
		var path PathType
		if err := node.Decode(&path); err != nil {
			return VarType{}, err
		}
		switch path.FileType {
		case "", FileRegular, FileDir:
		default:
			return VarType{}, fmt.Errorf("unknown file_type %q (want regular or dir)", path.FileType)
		}
		return VarType{Kind: VarPath, Path: &path}, nil
	case "":
		return VarType{}, errors.New(`missing required field "type"`)
	default:
		return VarType{}, fmt.Errorf("unknown variable type %q", head.Type)
	}
}

func expectTable(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a table, got %s", kindName(node))
	}
	return nil
}

func hasKeys(node *yaml.Node, keys ...string) bool {
	for _, k := range keys {
		if mappingValue(node, k) == nil {
			return false
		}
	}
	return true
}

// mappingValue returns the value stored under key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
