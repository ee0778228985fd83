package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// yamlProjectConfig is the wire shape of the project specification YAML.
// Models, fields, and relationships are declared as ordered
// YAML mappings (alias -> definition) so their declaration order can drive
// deterministic rendering (entities.ModelDefinition.FieldOrder,
// ProjectConfiguration.ModelOrder); gopkg.in/yaml.v3 doesn't preserve
// Go-map order on decode, so these three are decoded through yaml.Node and
// walked via orderedMapping instead of a plain map[string]T field.
type yamlProjectConfig struct {
	SchemaVersion string            `yaml:"schema_version"`
	APIVersion    string            `yaml:"api_version"`
	Name          string            `yaml:"name"`
	Version       string            `yaml:"version"`
	Database      yamlDatabase      `yaml:"database"`
	Server        yamlServer        `yaml:"server"`
	Models        yaml.Node         `yaml:"models"`
	Endpoints     []yamlEndpoint    `yaml:"endpoints"`
	Middleware    []yamlMW          `yaml:"middleware"`
	Components    map[string]string `yaml:"components"`
	Registry      yamlRegistry      `yaml:"registry"`
}

type yamlDatabase struct {
	Engine  string `yaml:"engine"`
	URLEnv  string `yaml:"url_env"`
	PoolMin int    `yaml:"pool_min"`
	PoolMax int    `yaml:"pool_max"`
}

type yamlServer struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type yamlRegistry struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type yamlModel struct {
	TableName     string      `yaml:"table_name"`
	Fields        yaml.Node   `yaml:"fields"`
	Relationships yaml.Node   `yaml:"relationships"`
	Indexes       []yamlIndex `yaml:"indexes"`
}

type yamlConstraints struct {
	MinLength *int     `yaml:"min_length"`
	MaxLength *int     `yaml:"max_length"`
	MinValue  *float64 `yaml:"min_value"`
	MaxValue  *float64 `yaml:"max_value"`
	Pattern   string   `yaml:"pattern"`
}

type yamlField struct {
	Type          string          `yaml:"type"`
	PrimaryKey    bool            `yaml:"primary_key"`
	Required      bool            `yaml:"required"`
	Unique        bool            `yaml:"unique"`
	Nullable      bool            `yaml:"nullable"`
	AutoIncrement bool            `yaml:"auto_increment"`
	AutoNow       bool            `yaml:"auto_now"`
	AutoNowAdd    bool            `yaml:"auto_now_add"`
	Default       *string         `yaml:"default"`
	Constraints   yamlConstraints `yaml:"constraints"`
}

type yamlRelationship struct {
	Kind        string `yaml:"kind"`
	TargetModel string `yaml:"target_model"`
	ForeignKey  string `yaml:"foreign_key"`
}

type yamlIndex struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
	Unique bool     `yaml:"unique"`
}

type yamlCRUD struct {
	Create  bool `yaml:"create"`
	ReadAll bool `yaml:"read_all"`
	ReadOne bool `yaml:"read_one"`
	Update  bool `yaml:"update"`
	Delete  bool `yaml:"delete"`
}

type yamlEndpoint struct {
	Path  string   `yaml:"path"`
	Model string   `yaml:"model"`
	CRUD  yamlCRUD `yaml:"crud"`
}

type yamlMW struct {
	Kind          string `yaml:"kind"`
	AllowOrigin   string `yaml:"allow_origin"`
	MaxRequests   int    `yaml:"max_requests"`
	WindowSeconds int    `yaml:"window_seconds"`
}

// orderedMapping walks a YAML mapping node and returns its keys in
// declaration order alongside each key's raw value node.
func orderedMapping(node yaml.Node) ([]string, map[string]*yaml.Node, error) {
	if node.Kind == 0 {
		return nil, nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("expected a YAML mapping, got kind %d", node.Kind)
	}

	order := make([]string, 0, len(node.Content)/2)
	values := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		order = append(order, key)
		values[key] = node.Content[i+1]
	}
	return order, values, nil
}

func (w yamlProjectConfig) toEntity() (entities.ProjectConfiguration, error) {
	cfg := entities.ProjectConfiguration{
		SchemaVersion: stringOr(w.SchemaVersion, entities.DefaultSchemaVersion),
		APIVersion:    stringOr(w.APIVersion, entities.DefaultAPIVersion),
		Name:          w.Name,
		Version:       w.Version,
		Database: entities.DatabaseSettings{
			Engine:  entities.DatabaseEngine(w.Database.Engine),
			URLEnv:  w.Database.URLEnv,
			PoolMin: w.Database.PoolMin,
			PoolMax: w.Database.PoolMax,
			HasPool: w.Database.PoolMin != 0 || w.Database.PoolMax != 0,
		},
		Server: entities.ServerSettings{
			Host: stringOr(w.Server.Host, entities.DefaultServerSettings().Host),
			Port: intOr(w.Server.Port, entities.DefaultServerSettings().Port),
		},
		Components: w.Components,
		Registry:   entities.RegistrySettings{URL: w.Registry.URL, Token: w.Registry.Token},
	}

	modelOrder, modelNodes, err := orderedMapping(w.Models)
	if err != nil {
		return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models", Message: err.Error()}
	}
	cfg.ModelOrder = modelOrder
	cfg.Models = make(map[string]entities.ModelDefinition, len(modelOrder))

	for _, name := range modelOrder {
		var wireModel yamlModel
		if err := modelNodes[name].Decode(&wireModel); err != nil {
			return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models." + name, Message: err.Error()}
		}

		model := entities.ModelDefinition{Name: name, TableName: wireModel.TableName}

		fieldOrder, fieldNodes, err := orderedMapping(wireModel.Fields)
		if err != nil {
			return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models." + name + ".fields", Message: err.Error()}
		}
		model.FieldOrder = fieldOrder
		for _, fname := range fieldOrder {
			var wf yamlField
			if err := fieldNodes[fname].Decode(&wf); err != nil {
				return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models." + name + ".fields." + fname, Message: err.Error()}
			}
			field := entities.FieldDefinition{
				Name:          fname,
				Type:          entities.SemanticType(wf.Type),
				PrimaryKey:    wf.PrimaryKey,
				Required:      wf.Required,
				Unique:        wf.Unique,
				Nullable:      wf.Nullable,
				AutoIncrement: wf.AutoIncrement,
				AutoNow:       wf.AutoNow,
				AutoNowAdd:    wf.AutoNowAdd,
				Constraints: entities.FieldConstraints{
					MinLength: wf.Constraints.MinLength,
					MaxLength: wf.Constraints.MaxLength,
					MinValue:  wf.Constraints.MinValue,
					MaxValue:  wf.Constraints.MaxValue,
					Pattern:   wf.Constraints.Pattern,
				},
			}
			if wf.Default != nil {
				field.Default = *wf.Default
				field.HasDefault = true
			}
			model.Fields = append(model.Fields, field)
		}

		relOrder, relNodes, err := orderedMapping(wireModel.Relationships)
		if err != nil {
			return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models." + name + ".relationships", Message: err.Error()}
		}
		model.RelationOrder = relOrder
		model.Relationships = make(map[string]entities.Relationship, len(relOrder))
		for _, rname := range relOrder {
			var wr yamlRelationship
			if err := relNodes[rname].Decode(&wr); err != nil {
				return entities.ProjectConfiguration{}, &entities.InvalidConfigError{Rule: "yaml", Field: "models." + name + ".relationships." + rname, Message: err.Error()}
			}
			model.Relationships[rname] = entities.Relationship{
				Name: rname, Kind: entities.RelationshipKind(wr.Kind),
				TargetModel: wr.TargetModel, ForeignKey: wr.ForeignKey,
			}
		}

		for _, wi := range wireModel.Indexes {
			model.Indexes = append(model.Indexes, entities.Index{Name: wi.Name, Fields: wi.Fields, Unique: wi.Unique})
		}

		cfg.Models[name] = model
	}

	for _, we := range w.Endpoints {
		cfg.Endpoints = append(cfg.Endpoints, entities.EndpointDefinition{
			Path: we.Path, Model: we.Model,
			CRUD: entities.CRUDFlags{
				Create: we.CRUD.Create, ReadAll: we.CRUD.ReadAll, ReadOne: we.CRUD.ReadOne,
				Update: we.CRUD.Update, Delete: we.CRUD.Delete,
			},
		})
	}

	for _, wm := range w.Middleware {
		cfg.Middleware = append(cfg.Middleware, entities.MiddlewareDirective{
			Kind: entities.MiddlewareKind(wm.Kind), AllowOrigin: wm.AllowOrigin,
			MaxRequests: wm.MaxRequests, WindowSeconds: wm.WindowSeconds,
		})
	}

	return cfg, nil
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
