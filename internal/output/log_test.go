// SPDX-License-Identifier: AGPL-3.0-or-later
package output

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	Logger = NewLogger(&buf, verbose)
	return &buf
}

func TestSetupLogging_Levels(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	SetupLogging(false)
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())

	SetupLogging(true)
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())
}

func TestDebug_HiddenUnlessVerbose(t *testing.T) {
	buf := captureLog(t, false)
	Debug("loaded package", "name", "web")
	assert.Empty(t, buf.String())

	buf = captureLog(t, true)
	Debug("loaded package", "name", "web")
	assert.Contains(t, buf.String(), "loaded package")
	assert.Contains(t, buf.String(), "name=web")
}

func TestInfo_KeyValues(t *testing.T) {
	buf := captureLog(t, false)
	Info("build finished", "instances", 3)
	assert.Contains(t, buf.String(), "build finished")
	assert.Contains(t, buf.String(), "instances=3")
}

func TestPrintln_FollowsSetOutput(t *testing.T) {
	prev := stdout
	t.Cleanup(func() { stdout = prev })

	var buf bytes.Buffer
	SetOutput(&buf)
	Println("web.templates")
	Println("ok")
	assert.Equal(t, "web.templates\nok\n", buf.String())
}
