package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := Record{
		ID:            "rec-1",
		Merchant:      "Sunrise Traders",
		Date:          "15/10/2025",
		DeclaredTotal: "590.00",
		ComputedTotal: "590.00",
		Status:        "VERIFIED",
		Confidence:    75,
	}
	require.NoError(t, s.Append(rec))

	got, err := s.Get("rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Traders", got.Merchant)
	assert.Equal(t, "VERIFIED", got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestListReturnsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now()
	for i, id := range []string{"rec-1", "rec-2", "rec-3"} {
		require.NoError(t, s.Append(Record{
			ID:        id,
			Merchant:  "Sunrise Traders",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := s.List("")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "rec-3", records[0].ID)
	assert.Equal(t, "rec-1", records[2].ID)
}

func TestListFiltersCaseInsensitively(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Append(Record{ID: "a", Merchant: "Sunrise Traders", Status: "VERIFIED"}))
	require.NoError(t, s.Append(Record{ID: "b", Merchant: "Lotus Hardware", Status: "MISMATCH"}))

	byMerchant, err := s.List("sunrise")
	require.NoError(t, err)
	require.Len(t, byMerchant, 1)
	assert.Equal(t, "a", byMerchant[0].ID)

	byStatus, err := s.List("mismatch")
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "b", byStatus[0].ID)
}

func TestGetUnknownIDFails(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("missing")
	assert.Error(t, err)
}
