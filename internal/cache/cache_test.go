package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

func TestKeyIncludesAllFilterArguments(t *testing.T) {
	a := Key("contacts:list", 1, storage.ContactFilter{Limit: 10})
	b := Key("contacts:list", 1, storage.ContactFilter{Limit: 20})
	c := Key("contacts:list", 2, storage.ContactFilter{Limit: 10})
	d := Key("contacts:list", 1, storage.ContactFilter{Limit: 10, Fullname: "doe"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Equal(t, a, Key("contacts:list", 1, storage.ContactFilter{Limit: 10}))
}

func TestListingsRoundTrip(t *testing.T) {
	l := NewListings(100, time.Minute)
	key := Key("contacts:list", 1, storage.ContactFilter{Limit: 10})

	_, ok := l.Get(key)
	assert.False(t, ok)

	contacts := []models.Contact{{ID: 7, UserID: 1, FirstName: "Ann"}}
	l.Set(1, key, contacts)

	got, ok := l.Get(key)
	require.True(t, ok)
	assert.Equal(t, contacts, got)
}

func TestInvalidateDropsOnlyTargetUser(t *testing.T) {
	l := NewListings(100, time.Minute)

	keyA1 := Key("contacts:list", 1, storage.ContactFilter{Limit: 10})
	keyA2 := Key("contacts:list", 1, storage.ContactFilter{Limit: 10, Email: "ann"})
	keyB := Key("contacts:list", 2, storage.ContactFilter{Limit: 10})

	l.Set(1, keyA1, []models.Contact{{ID: 1, UserID: 1}})
	l.Set(1, keyA2, []models.Contact{{ID: 2, UserID: 1}})
	l.Set(2, keyB, []models.Contact{{ID: 3, UserID: 2}})

	l.Invalidate(1)

	_, ok := l.Get(keyA1)
	assert.False(t, ok)
	_, ok = l.Get(keyA2)
	assert.False(t, ok)
	_, ok = l.Get(keyB)
	assert.True(t, ok)
}

func TestInvalidateUnknownUserIsNoop(t *testing.T) {
	l := NewListings(100, time.Minute)
	l.Invalidate(42)
}
