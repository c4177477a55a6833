// SPDX-License-Identifier: AGPL-3.0-or-later
package generator

import (
	"fmt"

	"github.com/bartekus/debcrafter/internal/codegen"
	"github.com/bartekus/debcrafter/internal/pkgspec"
)

// Templates emits the debconf templates file: one stanza per internal
// variable of every dynamic config.
type Templates struct{}

func (Templates) ID() string { return "templates" }

func (Templates) FileName(inst *pkgspec.Instance) string {
	return inst.Name + ".templates"
}

func (Templates) Generate(inst *pkgspec.Instance, out *codegen.LazyCreateBuilder) error {
	w, err := out.Finalize()
	if err != nil {
		return err
	}
	return WriteTemplates(w, inst.Name, inst)
}

// WriteTemplates writes the stanzas for every internal variable in src,
// keyed as "<name>/<variable>".
func WriteTemplates(w *codegen.Writer, name string, src pkgspec.ConfigSource) error {
	for _, conf := range src.Configs().All() {
		dyn, ok := conf.Type.(*pkgspec.DynamicConf)
		if !ok {
			continue
		}
		for varName, v := range dyn.IVars.All() {
			if err := w.Separator("\n"); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Template: %s/%s\n", name, varName); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "Type: %s\n", templateType(v.Type)); err != nil {
				return err
			}
			if v.Default != nil {
				if _, err := fmt.Fprintf(w, "Default: %s\n", *v.Default); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "Description: %s\n", v.Summary); err != nil {
				return err
			}
			if v.LongDoc != "" {
				if err := codegen.Paragraph(w, v.LongDoc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// templateType maps a variable type to a debconf question type. Only booleans
// get a dedicated type; everything else is validated elsewhere.
func templateType(t pkgspec.VarType) string {
	if t.Kind == pkgspec.VarBool {
		return "bool"
	}
	return "string"
}
