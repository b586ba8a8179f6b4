package main

import (
	"os"
	"path/filepath"
	"testing"

	"deptbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	resources, err := toResources(defaultCatalog)
	require.NoError(t, err)
	require.Len(t, resources, 5)

	byID := map[string]domain.Resource{}
	for _, r := range resources {
		byID[r.ID] = r
	}
	assert.Equal(t, 6, byID["multimedia-1"].Capacity)
	assert.Equal(t, 26, byID["room-427"].Capacity)
	assert.Equal(t, domain.ResourceRoom, byID["room-401"].Type)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resources:
  - name: Projector Cart
    type: equipment
    capacity: 1
  - id: lab
    name: Lab
    capacity: 12
    description: third floor
`), 0o600))

	entries, err := loadCatalog(path)
	require.NoError(t, err)

	resources, err := toResources(entries)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "projector-cart", resources[0].ID)
	assert.Equal(t, domain.ResourceEquipment, resources[0].Type)
	assert.Equal(t, "lab", resources[1].ID)
	assert.Equal(t, domain.ResourceRoom, resources[1].Type)
	assert.Equal(t, "third floor", resources[1].Description)
}

func TestToResources_Rejects(t *testing.T) {
	_, err := toResources([]seedResource{{Name: "Room", Capacity: 0}})
	assert.Error(t, err)

	_, err = toResources([]seedResource{{Name: "Room", Type: "desk", Capacity: 1}})
	assert.Error(t, err)

	_, err = toResources([]seedResource{
		{ID: "a", Name: "A", Capacity: 1},
		{ID: "a", Name: "A again", Capacity: 1},
	})
	assert.Error(t, err)

	_, err = toResources([]seedResource{{ID: "Bad ID", Name: "A", Capacity: 1}})
	assert.Error(t, err)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resources: []\n"), 0o600))
	_, err = loadCatalog(path)
	assert.Error(t, err)
}
