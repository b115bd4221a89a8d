package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("alice@example.com\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Enter email", &out)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)
	require.Equal(t, "Enter email\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)
}

func TestGetSimpleTextEmptyInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	var out bytes.Buffer
	_, err := GetSimpleText(in, "Name?", &out)
	require.Error(t, err)
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out)
	require.EqualError(t, err, "boom")
}

func TestGetPassword_OK(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("s3cret"), nil
	}
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), pw)
	require.Equal(t, "Enter password: \n", out.String())
}

// scriptedPasswords makes readPassword return the given entries in order
// and returns the slices it handed out.
func scriptedPasswords(t *testing.T, entries ...string) *[][]byte {
	t.Helper()
	var handed [][]byte
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(entries) == 0 {
			return nil, errors.New("no more input")
		}
		b := []byte(entries[0])
		entries = entries[1:]
		handed = append(handed, b)
		return b, nil
	}
	return &handed
}

func TestGetNewPassword_Match(t *testing.T) {
	handed := scriptedPasswords(t, "pw1", "pw1")
	var out bytes.Buffer

	pw, err := GetNewPassword(&out)
	require.NoError(t, err)
	require.Equal(t, []byte("pw1"), pw)
	require.Equal(t, "Choose password: \nRepeat password: \n", out.String())
	require.Equal(t, []byte{0, 0, 0}, (*handed)[1], "confirmation is wiped")
}

func TestGetNewPassword_MismatchWipesBoth(t *testing.T) {
	handed := scriptedPasswords(t, "pw1", "pw2")
	var out bytes.Buffer

	_, err := GetNewPassword(&out)
	require.ErrorIs(t, err, ErrPasswordMismatch)
	for _, b := range *handed {
		require.Equal(t, []byte{0, 0, 0}, b)
	}
}

func TestGetNewPassword_SecondReadFails(t *testing.T) {
	handed := scriptedPasswords(t, "pw1")
	var out bytes.Buffer

	_, err := GetNewPassword(&out)
	require.EqualError(t, err, "no more input")
	require.Equal(t, []byte{0, 0, 0}, (*handed)[0])
}
