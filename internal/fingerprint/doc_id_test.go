package fingerprint_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

func TestNewDocumentIDShape(t *testing.T) {
	id := fingerprint.NewDocumentID()

	assert.Len(t, id.String(), fingerprint.Length)
	assert.True(t, fingerprint.IsValid(id.String()))
}

func TestFromTimeRoundTrips(t *testing.T) {
	ref := time.Date(2024, 2, 7, 8, 32, 20, 594746000, time.UTC)

	id := fingerprint.FromTime(ref)
	assert.Equal(t, "2024_02_07_08_32_20_594746", id.String())

	parsed, err := id.Time()
	require.NoError(t, err)
	assert.True(t, ref.Equal(parsed))
}

func TestParseDocumentIDRejectsGarbage(t *testing.T) {
	_, err := fingerprint.ParseDocumentID("not-an-id")
	require.Error(t, err)

	_, err = fingerprint.ParseDocumentID("2024_13_40_25_61_61_000000")
	require.Error(t, err)
}

func TestOrderingIsLexical(t *testing.T) {
	early := fingerprint.FromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := fingerprint.FromTime(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))

	assert.True(t, early.Before(late))
	assert.True(t, late.After(early))
}
