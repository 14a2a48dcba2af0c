package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	rec := IRObject{"nodes": IRArray{IRString("x1"), IRString("x2")}}

	fp1, err := Fingerprint(DomainGraph, rec)
	require.NoError(t, err)
	fp2, err := Fingerprint(DomainGraph, IRObject{"nodes": IRArray{IRString("x1"), IRString("x2")}})
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintDomainSeparation(t *testing.T) {
	rec := IRObject{"a": IRInt(1)}

	assert.NotEqual(t,
		MustFingerprint(DomainGraph, rec),
		MustFingerprint(DomainModel, rec),
		"same content under different domains must not collide")
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := MustFingerprint(DomainQuery, IRObject{"window": Strings([]string{"x1"})})
	b := MustFingerprint(DomainQuery, IRObject{"window": Strings([]string{"x2"})})
	assert.NotEqual(t, a, b)
}

func TestFingerprintRejectsNull(t *testing.T) {
	_, err := Fingerprint(DomainGraph, IRObject{"x": IRNull{}})
	require.Error(t, err)
	assert.Panics(t, func() { MustFingerprint(DomainGraph, IRNull{}) })
}
