// Package aescbc implements the cryptographic contract the engine
// requires: a password-derived AES-256 key and IV compatible with
// OpenSSL's legacy EVP_BytesToKey(aes-256-cbc, sha1, salt=NULL, iter=5),
// and AES-256-CBC encryption with PKCS#7 padding processed in 2048-byte
// chunks. CBC without a MAC is malleable and padding-oracle-prone; it is
// preserved here because the wire contract requires it, not because it is
// recommended for new designs (see DESIGN.md).
package aescbc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"errors"
	"fmt"
)

// keySize and ivSize are AES-256's key length and CBC's block-sized IV.
const (
	keySize   = 32
	ivSize    = 16
	chunkSize = 2048
)

// DeriveKeyIV reproduces OpenSSL's EVP_BytesToKey with digest SHA-1, no
// salt, and 5 iterations, producing a 32-byte AES-256 key and 16-byte IV.
func DeriveKeyIV(password []byte) (key [keySize]byte, iv [ivSize]byte) {
	const iterations = 5
	const need = keySize + ivSize

	var generated []byte
	var prev []byte
	for len(generated) < need {
		h := sha1.New()
		h.Write(prev)
		h.Write(password)
		block := h.Sum(nil)
		for i := 1; i < iterations; i++ {
			h2 := sha1.New()
			h2.Write(block)
			block = h2.Sum(nil)
		}
		generated = append(generated, block...)
		prev = block
	}

	copy(key[:], generated[0:keySize])
	copy(iv[:], generated[keySize:need])
	return key, iv
}

// Encrypt derives a key and IV from password, PKCS#7-pads data to a
// multiple of the AES block size, and CBC-encrypts it in 2048-byte
// chunks. It returns the ciphertext and the IV that was used (which the
// caller stores in the header, per the wire contract).
func Encrypt(data, password []byte) (ciphertext []byte, iv [ivSize]byte, err error) {
	key, iv := DeriveKeyIV(password)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, iv, fmt.Errorf("aescbc: new cipher: %w", err)
	}

	padded := pkcs7Pad(data, aes.BlockSize)
	mode := cipher.NewCBCEncrypter(block, iv[:])

	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += chunkSize {
		end := i + chunkSize
		if end > len(padded) {
			end = len(padded)
		}
		mode.CryptBlocks(out[i:end], padded[i:end])
	}

	return out, iv, nil
}

// Decrypt derives a key from password, CBC-decrypts ciphertext in
// 2048-byte chunks using the given IV (taken from the header, not
// re-derived), and strips PKCS#7 padding.
func Decrypt(ciphertext, password []byte, iv [ivSize]byte) ([]byte, error) {
	key, _ := DeriveKeyIV(password)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("aescbc: new cipher: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("aescbc: ciphertext is not a multiple of the block size")
	}

	mode := cipher.NewCBCDecrypter(block, iv[:])
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += chunkSize {
		end := i + chunkSize
		if end > len(ciphertext) {
			end = len(ciphertext)
		}
		mode.CryptBlocks(out[i:end], ciphertext[i:end])
	}

	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("aescbc: empty plaintext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return nil, errors.New("aescbc: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("aescbc: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}
