package template

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func sampleContext() entities.TemplateContext {
	idField := entities.FieldContext{Name: "id", PascalCase: "ID", SnakeCase: "id", SemanticType: entities.TypeUUID, GoType: "uuid.UUID", PrimaryKey: true}
	titleField := entities.FieldContext{Name: "title", PascalCase: "Title", SnakeCase: "title", SemanticType: entities.TypeString, GoType: "string"}

	model := entities.ModelContext{
		Name: "post", PascalCase: "Post", SnakeCase: "post", CamelCase: "post", KebabCase: "post",
		TableName: "posts", Fields: []entities.FieldContext{idField, titleField}, PrimaryKey: idField,
		Indexes: []entities.Index{{Name: "idx_posts_title", Fields: []string{"title"}}},
	}

	endpoint := entities.EndpointContext{
		Path: "/posts", PascalCase: "Posts", SnakeCase: "posts", Model: model,
		EnabledOps: []string{"create", "read_all"},
		HandlerNames: map[string]string{
			"create":   "createPosts",
			"read_all": "listPosts",
		},
	}

	return entities.TemplateContext{
		ProjectName: "blog",
		Version:     "0.1.0",
		Database:    entities.DatabaseSettings{Engine: entities.EngineSQLite, URLEnv: "DATABASE_URL"},
		Server:      entities.ServerSettings{Host: "127.0.0.1", Port: 8080},
		Models:      []entities.ModelContext{model},
		Endpoints:   []entities.EndpointContext{endpoint},
		Middleware:  []entities.MiddlewareDirective{{Kind: entities.MiddlewareCORS, AllowOrigin: "*"}},
		Features:    entities.FeatureFlags{HasUUIDFields: true},
		Metadata:    entities.GenerationMetadata{GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		Dependencies: []string{"github.com/go-chi/chi/v5", "github.com/google/uuid"},
		Components:   map[string]entities.ComponentBundle{},
	}
}

func TestRenderAllProducesBuiltinFilesInOrder(t *testing.T) {
	engine := NewEngine()
	files, err := engine.RenderAll(context.Background(), sampleContext())
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	wantOrder := []string{"go.mod", "main.go", "models.go", "handlers.go", "database.go", "errors.go", "migrations/0001_init.sql", ".env.example"}
	if len(files) != len(wantOrder) {
		t.Fatalf("expected %d files, got %d: %+v", len(wantOrder), len(files), files)
	}
	for i, want := range wantOrder {
		if files[i].Path != want {
			t.Fatalf("file %d: expected path %q, got %q", i, want, files[i].Path)
		}
	}

	modGo := string(files[0].Content)
	if !strings.Contains(modGo, "module blog") {
		t.Fatalf("expected go.mod to declare module blog, got:\n%s", modGo)
	}

	models := string(files[2].Content)
	if !strings.Contains(models, "type Post struct") {
		t.Fatalf("expected models.go to declare Post struct, got:\n%s", models)
	}
}

func TestRenderAllRendersComponentTemplates(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "README.md.tmpl")
	if err := os.WriteFile(tmplPath, []byte("# {{ .ProjectName }}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tctx := sampleContext()
	tctx.Components = map[string]entities.ComponentBundle{
		"docs": {
			LocalPath: dir,
			Manifest: entities.ComponentManifest{
				Name: "docs",
				Templates: []entities.ProvidesTemplate{
					{Name: "readme", SourcePath: "README.md.tmpl", OutputPath: "README.md", Target: entities.TargetConfig},
				},
			},
		},
	}

	engine := NewEngine()
	files, err := engine.RenderAll(context.Background(), tctx)
	if err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	var readme *string
	for _, f := range files {
		if f.Path == "README.md" {
			s := string(f.Content)
			readme = &s
		}
	}
	if readme == nil {
		t.Fatal("expected README.md in output")
	}
	if *readme != "# blog\n" {
		t.Fatalf("expected rendered README content, got %q", *readme)
	}
}

func TestFuncMapFilters(t *testing.T) {
	if got := pascalCase("user_profile"); got != "UserProfile" {
		t.Fatalf("pascalCase: got %q", got)
	}
	if got := snakeCase("UserProfile"); got != "userprofile" {
		// splitIdentifier only splits on separators, not case boundaries,
		// matching build_context.go's behavior exactly.
		t.Fatalf("snakeCase: got %q", got)
	}
	if got := quote(`say "hi"`); got != `"say \"hi\""` {
		t.Fatalf("quote: got %q", got)
	}
}
