package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleProjectYAML = `
schema_version: "1.0.0"
api_version: "1.0.0"
name: blog
version: "0.1.0"
database:
  engine: postgres
  url_env: DATABASE_URL
  pool_min: 2
  pool_max: 10
server:
  host: 0.0.0.0
  port: 9090
models:
  post:
    table_name: posts
    fields:
      id:
        type: uuid
        primary_key: true
      title:
        type: string
        required: true
        constraints:
          max_length: 200
      author:
        type: string
    relationships:
      comments:
        kind: one_to_many
        target_model: comment
    indexes:
      - name: idx_posts_title
        fields: [title]
  comment:
    table_name: comments
    fields:
      id:
        type: uuid
        primary_key: true
      body:
        type: text
endpoints:
  - path: /posts
    model: post
    crud:
      create: true
      read_all: true
      read_one: true
      update: true
      delete: true
middleware:
  - kind: cors
    allow_origin: "*"
  - kind: rate_limit
    max_requests: 100
    window_seconds: 60
components:
  auth: "github:acme/auth-component@v1.2.0"
registry:
  url: "https://registry.example.com"
  token: "secret"
`

func TestLoaderParsesProjectYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rustgen.yml")
	if err := os.WriteFile(path, []byte(sampleProjectYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Name != "blog" {
		t.Fatalf("expected name=blog, got %q", cfg.Name)
	}
	if len(cfg.ModelOrder) != 2 || cfg.ModelOrder[0] != "post" || cfg.ModelOrder[1] != "comment" {
		t.Fatalf("expected model order [post comment], got %v", cfg.ModelOrder)
	}

	post := cfg.Models["post"]
	if post.TableName != "posts" {
		t.Fatalf("expected table_name=posts, got %q", post.TableName)
	}
	if len(post.FieldOrder) != 3 || post.FieldOrder[0] != "id" || post.FieldOrder[1] != "title" || post.FieldOrder[2] != "author" {
		t.Fatalf("expected field order [id title author], got %v", post.FieldOrder)
	}
	if len(post.Fields) != 3 || !post.Fields[0].PrimaryKey {
		t.Fatalf("expected id field to be primary key, got %+v", post.Fields)
	}
	if post.Fields[1].Constraints.MaxLength == nil || *post.Fields[1].Constraints.MaxLength != 200 {
		t.Fatalf("expected title max_length=200, got %+v", post.Fields[1].Constraints)
	}

	rel, ok := post.Relationships["comments"]
	if !ok || rel.TargetModel != "comment" {
		t.Fatalf("expected comments relationship to comment, got %+v", post.Relationships)
	}

	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].Path != "/posts" {
		t.Fatalf("expected one /posts endpoint, got %+v", cfg.Endpoints)
	}
	if len(cfg.Middleware) != 2 {
		t.Fatalf("expected two middleware directives, got %+v", cfg.Middleware)
	}
	if cfg.Components["auth"] != "github:acme/auth-component@v1.2.0" {
		t.Fatalf("expected auth component alias, got %q", cfg.Components["auth"])
	}
	if cfg.Registry.URL != "https://registry.example.com" {
		t.Fatalf("expected registry URL, got %q", cfg.Registry.URL)
	}
}

func TestLoaderDefaultsSchemaAndAPIVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rustgen.yml")
	minimal := "name: tiny\nversion: \"0.0.1\"\ndatabase:\n  engine: sqlite\n  url_env: DATABASE_URL\nmodels:\n  widget:\n    table_name: widgets\n    fields:\n      id:\n        type: uuid\n        primary_key: true\nendpoints:\n  - path: /widgets\n    model: widget\n    crud:\n      read_all: true\n"
	if err := os.WriteFile(path, []byte(minimal), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SchemaVersion != "1.0.0" || cfg.APIVersion != "1.0.0" {
		t.Fatalf("expected default versions, got schema=%q api=%q", cfg.SchemaVersion, cfg.APIVersion)
	}
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	if _, err := NewLoader().Load(context.Background(), "/nonexistent/rustgen.yml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoaderRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rustgen.yml")
	invalid := "name: \"\"\nversion: \"0.0.1\"\nmodels: {}\n"
	if err := os.WriteFile(path, []byte(invalid), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader().Load(context.Background(), path); err == nil {
		t.Fatal("expected validation error for empty name")
	}
}
