package worldpay_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldpay/worldpay-go"
)

func storedCard(t *testing.T, token string) worldpay.TokenizedCard {
	t.Helper()
	card := worldpay.TokenizedCard{Token: token, Reusable: true}
	err := card.PaymentMethod.FromCardDetails(worldpay.CardDetails{
		Type:             "ObfuscatedCard",
		Name:             "A Shopper",
		ExpiryMonth:      "11",
		ExpiryYear:       "2030",
		CardType:         "VISA_CREDIT",
		MaskedCardNumber: "4444********1111",
	})
	require.NoError(t, err)
	return card
}

func TestCardStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	store := worldpay.NewCardStore(path)

	require.Empty(t, store.Load(), "a missing file reads as an empty list")

	first := storedCard(t, "TEST_TOKEN_1")
	second := storedCard(t, "TEST_TOKEN_2")
	require.NoError(t, store.Add(first))
	require.NoError(t, store.Add(second))

	// A fresh store reads what the first one wrote.
	reloaded := worldpay.NewCardStore(path).Load()
	require.Len(t, reloaded, 2)
	assert.Equal(t, "TEST_TOKEN_1", reloaded[0].Token)
	assert.Equal(t, "TEST_TOKEN_2", reloaded[1].Token)

	details, err := reloaded[0].PaymentMethod.AsCardDetails()
	require.NoError(t, err)
	assert.Equal(t, "4444********1111", details.MaskedCardNumber)
}

func TestCardStoreCaches(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	store := worldpay.NewCardStore(path)
	require.NoError(t, store.Save([]worldpay.TokenizedCard{storedCard(t, "TEST_TOKEN_1")}))

	// Mutating the file behind the store's back is not observed: the list was
	// cached on the first read.
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))
	assert.Len(t, store.Load(), 1)
}

func TestCardStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"`), 0o600))

	store := worldpay.NewCardStore(path)
	assert.Empty(t, store.Load(), "a corrupt file reads as an empty list")

	// Saving over the corrupt file recovers it.
	require.NoError(t, store.Add(storedCard(t, "TEST_TOKEN_1")))
	assert.Len(t, worldpay.NewCardStore(path).Load(), 1)
}

func TestCardStoreRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	store := worldpay.NewCardStore(path)
	require.NoError(t, store.Save([]worldpay.TokenizedCard{
		storedCard(t, "TEST_TOKEN_1"),
		storedCard(t, "TEST_TOKEN_2"),
	}))

	require.NoError(t, store.Remove("TEST_TOKEN_1"))
	remaining := store.Load()
	require.Len(t, remaining, 1)
	assert.Equal(t, "TEST_TOKEN_2", remaining[0].Token)

	// Removing an unknown token is a no-op.
	require.NoError(t, store.Remove("TEST_TOKEN_MISSING"))
	assert.Len(t, store.Load(), 1)

	require.Error(t, store.Remove(""), "an empty token is rejected")
}

func TestCardStoreSaveNil(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	store := worldpay.NewCardStore(path)
	require.NoError(t, store.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data), "nil saves as an empty JSON list")
}
