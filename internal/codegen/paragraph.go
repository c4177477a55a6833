// SPDX-License-Identifier: AGPL-3.0-or-later
package codegen

import (
	"io"
	"strings"
)

// Paragraph writes text as a debconf extended description: every line is
// indented by one space and blank lines become " .".
func Paragraph(w io.Writer, text string) error {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			b.WriteString(" .\n")
			continue
		}
		b.WriteString(" ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
