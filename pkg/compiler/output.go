package compiler

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// HeaderName is the runtime header every generated file includes.
const HeaderName = "tern.hpp"

//go:embed output.cpp.tmpl
var outputTemplate string

//go:embed tern.hpp
var RuntimeHeader string

var outputTmpl = template.Must(template.New("output.cpp.tmpl").Funcs(template.FuncMap{
	"include": func(name string) string {
		if strings.HasPrefix(name, "<") {
			return name
		}
		return `"` + name + `"`
	},
}).Parse(outputTemplate))

type unit struct {
	Source   string
	Header   string
	Includes []string
	Body     string
}

func render(u unit) (string, error) {
	u.Header = HeaderName

	var b strings.Builder
	if err := outputTmpl.Execute(&b, u); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", u.Source, err)
	}
	return b.String(), nil
}
