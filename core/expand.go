package core

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

// templateFuncs are available in connection parameters:
//
//	{{ env "NAME" }}            value of an environment variable
//	{{ env "NAME" "fallback" }} same, with a fallback for unset variables
//	{{ exec "cmd args" }}       trimmed output of a command (pipes run in sh)
//	{{ cwd }}                   working directory
var templateFuncs = template.FuncMap{
	"env": func(name string, fallback ...string) string {
		value, ok := os.LookupEnv(name)
		if !ok && len(fallback) > 0 {
			return fallback[0]
		}
		return value
	},
	"exec": func(line string) (string, error) {
		var cmd *exec.Cmd
		if strings.Contains(line, " | ") {
			cmd = exec.Command("sh", "-c", line)
		} else {
			fields := strings.Fields(line)
			if len(fields) < 1 {
				return "", errors.New("no command provided")
			}
			cmd = exec.Command(fields[0], fields[1:]...)
		}

		out, err := cmd.Output()
		return strings.TrimSpace(string(out)), err
	},
	"cwd": os.Getwd,
}

func expand(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("params").Funcs(templateFuncs).Parse(value)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, nil); err != nil {
		return "", err
	}

	return out.String(), nil
}

// expandOrDefault returns value unchanged if it can not be expanded.
func expandOrDefault(value string) string {
	ex, err := expand(value)
	if err != nil {
		return value
	}
	return ex
}
