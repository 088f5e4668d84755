package tui

import "regexp"

var reYAMLKey = regexp.MustCompile(`^(\s*(?:- )?)([A-Za-z0-9_./-]+):(\s|$)`)

// colorizeYAML highlights the key of a "key: value" line.
func colorizeYAML(line string) string {
	loc := reYAMLKey.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	return line[:loc[3]] + yamlKeyStyle.Render(line[loc[4]:loc[5]]) + line[loc[5]:]
}
