// SPDX-License-Identifier: AGPL-3.0-or-later
package build

// Status of a finished build.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Manifest summarises one build.
// Matches <out_dir>/.debcrafter/last-build.json.
type Manifest struct {
	Status   string            `json:"status"`
	Packages []PackageRecord   `json:"packages"`
	Failed   string            `json:"failed,omitempty"` // Spec file that stopped the build
	Error    string            `json:"error,omitempty"`
	Files    []string          `json:"files"`   // Every generated file, relative to out_dir
	Digests  map[string]string `json:"digests"` // BLAKE3-256 of each generated file, hex
	Included []IncludedRecord  `json:"included,omitempty"`
}

// PackageRecord describes one root package and its instances.
type PackageRecord struct {
	Name      string           `json:"name"`
	Source    string           `json:"source"`
	Instances []InstanceRecord `json:"instances"`
}

// InstanceRecord describes one built instance.
type InstanceRecord struct {
	Name    string   `json:"name"`
	Variant string   `json:"variant,omitempty"`
	Shape   string   `json:"shape"`
	Files   []string `json:"files,omitempty"`
}

// IncludedRecord names a package loaded only as an include.
type IncludedRecord struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Instances returns every instance record across packages, in build order.
func (m *Manifest) Instances() []InstanceRecord {
	var out []InstanceRecord
	for _, p := range m.Packages {
		out = append(out, p.Instances...)
	}
	return out
}
