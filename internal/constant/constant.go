// Package constant renders the generated Go file exposing the pinned jextract
// version to the build.
package constant

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"text/template"

	"github.com/3leaps/jxfetch/internal/store"
	"github.com/3leaps/jxfetch/pkg/update"
)

// Name is the identifier of the generated constant.
const Name = "JextractVersion"

var source = template.Must(template.New("constant").Parse(`// Code generated by jxfetch generate; DO NOT EDIT.

package {{.Package}}

// {{.Name}} is the jextract build pinned for this module.
const {{.Name}} = {{printf "%q" .Version}}
`))

// Render returns gofmt'ed source declaring the version constant in package pkg.
func Render(pkg, version string) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}
	if _, ok := update.ParseStored(version); !ok {
		return nil, fmt.Errorf("invalid jextract version %q", version)
	}

	var buf bytes.Buffer
	err := source.Execute(&buf, struct {
		Package, Name, Version string
	}{pkg, Name, version})
	if err != nil {
		return nil, fmt.Errorf("render constant: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format constant: %w", err)
	}
	return out, nil
}

// WriteFile renders the constant and atomically replaces path with it.
func WriteFile(path, pkg, version string) error {
	src, err := Render(pkg, version)
	if err != nil {
		return err
	}
	return store.WriteFileAtomic(path, src, 0o644)
}
