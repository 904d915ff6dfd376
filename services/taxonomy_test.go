package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapObjectType(t *testing.T) {
	assert.Equal(t, "Leaves", MapObjectType("Leaves"))
	assert.Equal(t, "Leaves", MapObjectType("  leaves "))
	assert.Equal(t, "Furniture", MapObjectType("FURNITURE"))
	assert.Empty(t, MapObjectType("Lava"))
	assert.Empty(t, MapObjectType(""))
}

func TestTaxonomyPrompt(t *testing.T) {
	prompt := TaxonomyPrompt()
	for _, group := range ObjectTypeGroups {
		assert.Contains(t, prompt, group.Label)
	}
	assert.Contains(t, prompt, "Leaves")
}
