package constants

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldsOrder(t *testing.T) {
	require.Equal(t, []string{
		"first name", "last name", "designation", "company", "phone",
		"mobile", "email", "website", "country", "address",
	}, AsStringSlice())
	require.Equal(t, 10, FieldCount())

	f := Fields()
	f[0] = "changed"
	require.Equal(t, FirstName, Fields()[0])
}

func TestCanonicalize(t *testing.T) {
	tests := map[string]FieldName{
		"First_Name": FirstName,
		" tel ":      Phone,
		"e-mail":     Email,
		"address":    Address,
		"Job-Title":  Designation,
	}
	for in, want := range tests {
		got, ok := Canonicalize(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	_, ok := Canonicalize("fax")
	require.False(t, ok)
}

func TestIsAllowedExt(t *testing.T) {
	for _, ext := range []string{".png", "JPG", ".JpEg"} {
		require.True(t, IsAllowedExt(ext), ext)
	}
	for _, ext := range []string{".txt", ".heic", ""} {
		require.False(t, IsAllowedExt(ext), ext)
	}
}
