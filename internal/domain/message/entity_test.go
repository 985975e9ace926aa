package message

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// The not-found contract on insert depends on the database rejecting rows
// that reference missing users or listings, so every reference column must
// carry a foreign key in the migrated schema.
func TestMessagesTableCarriesReferentialConstraints(t *testing.T) {
	s, err := schema.Parse(&Message{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	referenced := map[string]string{
		"Sender":   "users",
		"Receiver": "users",
		"Listing":  "listings",
	}
	for name, table := range referenced {
		rel, ok := s.Relationships.Relations[name]
		require.True(t, ok, "relation %s is not declared", name)

		constraint := rel.ParseConstraint()
		require.NotNil(t, constraint, "relation %s emits no foreign key", name)
		assert.Equal(t, table, rel.FieldSchema.Table)
	}
}
