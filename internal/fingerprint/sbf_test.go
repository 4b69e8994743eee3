package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autumndb/autumndb/internal/dberrors"
	"github.com/autumndb/autumndb/internal/fingerprint"
)

func TestSBFDeterministic(t *testing.T) {
	a := fingerprint.NewSBF()
	_, err := a.Write([]byte("hello world"))
	require.NoError(t, err)

	b := fingerprint.NewSBF()
	_, err = b.Write([]byte("hello world"))
	require.NoError(t, err)

	assert.Equal(t, a.Digest(), b.Digest())
}

func TestSBFJokerCounterForCoprimeBytes(t *testing.T) {
	f := fingerprint.NewSBF()
	// 1 is coprime with every prime in {2,3,5,7,11,13,17}.
	_, err := f.Write([]byte{1})
	require.NoError(t, err)

	digest := f.Digest()
	assert.Equal(t, [8]byte{0, 0, 0, 0, 0, 0, 0, 1}, digest)
}

func TestSBFRefusesWriteAfterDigest(t *testing.T) {
	f := fingerprint.NewSBF()
	_, err := f.Write([]byte("a"))
	require.NoError(t, err)

	f.Digest()

	_, err = f.Write([]byte("b"))
	require.ErrorIs(t, err, dberrors.ErrFrozenMutation)
}
