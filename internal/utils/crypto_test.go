package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func TestEncryptDecrypt(t *testing.T) {
	enc, err := Encrypt("40817810099910004312", testKey)
	require.NoError(t, err)
	assert.NotContains(t, enc, "40817810099910004312")

	dec, err := Decrypt(enc, testKey)
	require.NoError(t, err)
	assert.Equal(t, "40817810099910004312", dec)
}

func TestEncrypt_RandomIV(t *testing.T) {
	a, err := Encrypt("1234", testKey)
	require.NoError(t, err)
	b, err := Encrypt("1234", testKey)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncrypt_Errors(t *testing.T) {
	_, err := Encrypt("", testKey)
	assert.Error(t, err)
	_, err = Encrypt("1234", []byte("short"))
	assert.Error(t, err)
	_, err = Decrypt("zz", testKey)
	assert.Error(t, err)
	_, err = Decrypt("00112233", testKey)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("40817810099910004312", "secret")
	assert.Len(t, fp, 64)
	assert.True(t, VerifyFingerprint("40817810099910004312", fp, "secret"))
	assert.False(t, VerifyFingerprint("40817810099910004313", fp, "secret"))
	assert.False(t, VerifyFingerprint("40817810099910004312", fp, "other"))
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "****4312", MaskAccountNumber("4081 7810 0999 1000 4312"))
	assert.Equal(t, "***", MaskAccountNumber("123"))
	assert.Equal(t, "", MaskAccountNumber(""))
}
