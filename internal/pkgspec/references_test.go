// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReferences(t *testing.T) {
	reg := NewRegistry("testdata", "", nil)

	for _, file := range []string{"web.sps", "twice.sps", "web-tls.sps", "worker.sps"} {
		t.Run(file, func(t *testing.T) {
			pkg, err := reg.LoadFile(filepath.Join("testdata", file))
			require.NoError(t, err)
			includes, err := reg.Includes(pkg)
			require.NoError(t, err)

			for _, inst := range Instances(pkg, includes) {
				assert.NoError(t, CheckReferences(inst))
			}
		})
	}
}

func TestCheckReferences_MissingInclude(t *testing.T) {
	pkg, err := Load(filepath.Join("testdata", "web.sps"))
	require.NoError(t, err)
	inst, _ := pkg.Instantiate("", nil)

	err = CheckReferences(inst)
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, UnresolvedReferenceError{Package: "web", Referenced: "shared", Variable: "db_host"}, *unresolved)
	assert.Equal(t, "package web uses variable db_host of package shared, which is not declared", err.Error())
}

func TestCheckReferences_UndeclaredVariable(t *testing.T) {
	doc := serviceHead + `
[config."a.conf"]
format = "plain"
[config."a.conf".evars.shared.db_port]
`
	pkg, err := Decode([]byte(doc), EncodingTOML)
	require.NoError(t, err)
	includes, err := LoadIncludes(pkg, "testdata")
	require.NoError(t, err)
	inst, _ := pkg.Instantiate("", includes)

	err = CheckReferences(inst)
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "svc", unresolved.Package)
	assert.Equal(t, "shared", unresolved.Referenced)
	assert.Equal(t, "db_port", unresolved.Variable)
}

func TestCheckReferences_MissingBase(t *testing.T) {
	inst, _ := extensionPackage("web-tls", "web").Instantiate("", Includes{})

	err := CheckReferences(inst)
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Empty(t, unresolved.Variable)
	assert.Equal(t, "package web-tls extends web, which was not loaded", err.Error())
}
