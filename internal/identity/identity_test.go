package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDCommutative(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, b := uuid.New(), uuid.New()
		listingID := uuid.New()

		assert.Equal(t, ConversationID(a, b, nil), ConversationID(b, a, nil))
		assert.Equal(t, ConversationID(a, b, &listingID), ConversationID(b, a, &listingID))
	}
}

func TestConversationIDDeterministic(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	listingID := uuid.New()

	assert.Equal(t, ConversationID(a, b, &listingID), ConversationID(a, b, &listingID))
	assert.Equal(t, ConversationID(a, b, nil), ConversationID(a, b, nil))
}

func TestConversationIDDistinguishesListings(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	listing1, listing2 := uuid.New(), uuid.New()

	general := ConversationID(a, b, nil)
	scoped1 := ConversationID(a, b, &listing1)
	scoped2 := ConversationID(a, b, &listing2)

	assert.NotEqual(t, scoped1, scoped2)
	assert.NotEqual(t, general, scoped1)
	assert.NotEqual(t, general, scoped2)
}

func TestConversationIDDistinguishesPairs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	require.NotEqual(t, ConversationID(a, b, nil), ConversationID(a, c, nil))
	require.NotEqual(t, ConversationID(a, b, nil), ConversationID(b, c, nil))
}

func TestPairKeyCommutative(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}
