package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

func TestPairBytesRoundTrip(t *testing.T) {
	p, err := fingerprint.Compute([]byte(`{"firstname":"Valerii"}`))
	require.NoError(t, err)

	parsed, err := fingerprint.ParsePair(p.Bytes())
	require.NoError(t, err)

	assert.True(t, p.Equal(parsed))
}

func TestPairEqualForIdenticalDocuments(t *testing.T) {
	a, err := fingerprint.Compute([]byte(`{"x":1}`))
	require.NoError(t, err)

	b, err := fingerprint.Compute([]byte(`{"x":1}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestPairDiffersForDifferentDocuments(t *testing.T) {
	a, err := fingerprint.Compute([]byte(`{"x":1}`))
	require.NoError(t, err)

	b, err := fingerprint.Compute([]byte(`{"x":"a much longer different value entirely"}`))
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
}

func TestParsePairRejectsWrongLength(t *testing.T) {
	_, err := fingerprint.ParsePair([]byte{1, 2, 3})
	require.Error(t, err)
}
