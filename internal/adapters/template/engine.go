// Package template renders the built-in and component-contributed
// template sets against a TemplateContext, wrapping Go's
// text/template instead of a flat {{Var}}
// substitution: this domain's templates need filters, functions, and
// namespacing that text/template's pipeline syntax already provides.
package template

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

//go:embed assets/*.tmpl
var builtinFS embed.FS

var _ usecases.TemplateEngine = (*Engine)(nil)

// builtinTemplate names one built-in template and the relative output
// path it renders to.
type builtinTemplate struct {
	asset  string
	output string
}

// builtinTemplates lists the built-in set in the required
// rendering order: build manifest, main entry, models, handlers, database
// bootstrap, error module, migrations, environment example.
var builtinTemplates = []builtinTemplate{
	{"go_mod.tmpl", "go.mod"},
	{"main_go.tmpl", "main.go"},
	{"models_go.tmpl", "models.go"},
	{"handlers_go.tmpl", "handlers.go"},
	{"database_go.tmpl", "database.go"},
	{"errors_go.tmpl", "errors.go"},
	{"migrations_sql.tmpl", "migrations/0001_init.sql"},
	{"env_example.tmpl", ".env.example"},
}

// Engine implements usecases.TemplateEngine.
type Engine struct{}

// NewEngine constructs a template Engine.
func NewEngine() *Engine { return &Engine{} }

// RenderAll renders every built-in template, then each resolved
// component's declared templates in manifest-declared order. Components
// themselves are visited in alias-sorted order for a deterministic
// output set: TemplateContext.Components is a map (the installation order
// the resolver computes lives on the lockfile, a level above the engine),
// so alias order is the only ordering available here.
func (e *Engine) RenderAll(ctx context.Context, tctx entities.TemplateContext) ([]usecases.RenderedFile, error) {
	var out []usecases.RenderedFile

	for _, bt := range builtinTemplates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rendered, err := e.renderAsset(bt.asset, tctx)
		if err != nil {
			return nil, &entities.TemplateRenderError{Template: bt.asset, Err: err}
		}
		out = append(out, usecases.RenderedFile{Path: bt.output, Content: rendered})
	}

	aliases := make([]string, 0, len(tctx.Components))
	for alias := range tctx.Components {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bundle := tctx.Components[alias]
		for _, tmpl := range bundle.Manifest.Templates {
			rendered, err := e.renderComponentTemplate(bundle, tmpl, tctx)
			if err != nil {
				return nil, &entities.TemplateRenderError{Template: componentTemplatePath(alias, tmpl.Name), Err: err}
			}
			out = append(out, usecases.RenderedFile{Path: tmpl.OutputPath, Content: rendered})
		}
	}

	return out, nil
}

func (e *Engine) renderAsset(name string, tctx entities.TemplateContext) ([]byte, error) {
	data, err := builtinFS.ReadFile("assets/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading built-in template %s: %w", name, err)
	}
	return renderText(name, string(data), tctx)
}

func (e *Engine) renderComponentTemplate(bundle entities.ComponentBundle, tmpl entities.ProvidesTemplate, tctx entities.TemplateContext) ([]byte, error) {
	path := filepath.Join(bundle.LocalPath, tmpl.SourcePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading component template %s: %w", path, err)
	}
	return renderText(tmpl.Name, string(data), tctx)
}

func renderText(name, text string, data any) ([]byte, error) {
	t, err := template.New(name).Funcs(funcMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
