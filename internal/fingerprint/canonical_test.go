package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autumndb/autumndb/internal/fingerprint"
)

func TestCanonicalizeFlattensLeavesInOrder(t *testing.T) {
	doc := []byte(`{"a":"x","b":{"c":"y","d":1}}`)

	got, err := fingerprint.Canonicalize(doc)
	require.NoError(t, err)

	want := append([]byte("x"), append([]byte("y"), 1)...)
	assert.Equal(t, want, got)
}

func TestCanonicalizeKeysNotHashed(t *testing.T) {
	a, err := fingerprint.Canonicalize([]byte(`{"alpha":"v"}`))
	require.NoError(t, err)

	b, err := fingerprint.Canonicalize([]byte(`{"zzz":"v"}`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCanonicalizeArrayUsesPythonPrintedForm(t *testing.T) {
	doc := []byte(`{"list":[1,2,"x"]}`)

	got, err := fingerprint.Canonicalize(doc)
	require.NoError(t, err)

	assert.Equal(t, []byte(`[1, 2, 'x']`), got)
}

func TestCanonicalizeArrayIsInsensitiveToSourceWhitespace(t *testing.T) {
	tight, err := fingerprint.Canonicalize([]byte(`{"list":[1,2,"x"]}`))
	require.NoError(t, err)

	spaced, err := fingerprint.Canonicalize([]byte(`{"list": [ 1, 2, "x" ] }`))
	require.NoError(t, err)

	assert.Equal(t, tight, spaced)
}

func TestCanonicalizeArrayRecursesIntoNestedValues(t *testing.T) {
	doc := []byte(`{"list":[true,false,null,[1,"y"],{"k":"v"}]}`)

	got, err := fingerprint.Canonicalize(doc)
	require.NoError(t, err)

	assert.Equal(t, []byte(`[True, False, None, [1, 'y'], {'k': 'v'}]`), got)
}

func TestCanonicalizeZeroContributesNoBytes(t *testing.T) {
	got, err := fingerprint.Canonicalize([]byte(`{"a":0,"b":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, []byte("x"), got)
}

func TestCanonicalizeNonIntegralUsesDecimalText(t *testing.T) {
	got, err := fingerprint.Canonicalize([]byte(`1.5`))
	require.NoError(t, err)

	assert.Equal(t, []byte("1.5"), got)
}

func TestCanonicalizeRejectsInvalidJSON(t *testing.T) {
	_, err := fingerprint.Canonicalize([]byte(`{not json`))
	require.Error(t, err)
}

func TestCanonicalizeIsDeterministic(t *testing.T) {
	doc := []byte(`{"firstname":"Valerii","tags":[1,2,3],"age":30}`)

	a, err := fingerprint.Canonicalize(doc)
	require.NoError(t, err)

	b, err := fingerprint.Canonicalize(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
