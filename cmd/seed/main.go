package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"deptbook/internal/config"
	"deptbook/internal/database"
	"deptbook/internal/domain"
	"deptbook/internal/pkg/validator"
	"deptbook/internal/repository"
)

type seedFile struct {
	Resources []seedResource `yaml:"resources"`
}

type seedResource struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name" validate:"required,notblank"`
	Type        string `yaml:"type" validate:"omitempty,oneof=room equipment"`
	Description string `yaml:"description"`
	Capacity    int    `yaml:"capacity" validate:"required,gte=1"`
}

// defaultCatalog is the department's shared rooms.
var defaultCatalog = []seedResource{
	{ID: "multimedia-1", Name: "멀티미디어실 1", Type: "room", Capacity: 6},
	{ID: "multimedia-2", Name: "멀티미디어실 2", Type: "room", Capacity: 6},
	{ID: "multimedia-3", Name: "멀티미디어실 3", Type: "room", Capacity: 6},
	{ID: "room-401", Name: "401호", Type: "room", Capacity: 26},
	{ID: "room-427", Name: "427호", Type: "room", Capacity: 26},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{})
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	entries := defaultCatalog
	if cfg.SeedFile != "" {
		log.Printf("Loading catalog from %s...", cfg.SeedFile)
		if entries, err = loadCatalog(cfg.SeedFile); err != nil {
			log.Fatal(err)
		}
	}

	resources, err := toResources(entries)
	if err != nil {
		log.Fatal(err)
	}

	repo := repository.NewResourceRepository(db)
	ctx := context.Background()
	for i := range resources {
		if err := repo.Upsert(ctx, &resources[i]); err != nil {
			log.Fatalf("upsert %s: %v", resources[i].ID, err)
		}
		log.Printf("  %s (%s) capacity=%d", resources[i].ID, resources[i].Name, resources[i].Capacity)
	}

	log.Printf("Seed completed: %d resources", len(resources))
}

func loadCatalog(path string) ([]seedResource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Resources) == 0 {
		return nil, fmt.Errorf("%s: no resources", path)
	}
	return f.Resources, nil
}

func toResources(entries []seedResource) ([]domain.Resource, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]domain.Resource, 0, len(entries))

	for i, e := range entries {
		if fields := validator.Validate(e); fields != nil {
			return nil, fmt.Errorf("resource #%d (%q): invalid %v", i+1, e.Name, fields)
		}

		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = slug.Make(e.Name)
		}
		if !slug.IsSlug(id) {
			return nil, fmt.Errorf("resource #%d (%q): id %q is not a slug", i+1, e.Name, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("resource #%d: duplicate id %q", i+1, id)
		}
		seen[id] = true

		typ := domain.ResourceType(e.Type)
		if typ == "" {
			typ = domain.ResourceRoom
		}
		out = append(out, domain.Resource{
			ID:          id,
			Name:        strings.TrimSpace(e.Name),
			Type:        typ,
			Description: e.Description,
			Capacity:    e.Capacity,
		})
	}
	return out, nil
}
