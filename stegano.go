// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

// Package stegano defines the engine contract shared by the steganography
// pipeline: embedding a payload into a raster image and recovering it
// later given the same password.
package stegano

import "errors"

// Sentinel errors surfaced by an Engine. Callers should compare against
// these with errors.Is; the CLI collapses InvalidHeader, DecryptFailed and
// DecompressFailed into a single "nothing extracted" message so a failed
// extraction does not disclose which stage rejected the password.
var (
	// ErrNoImage means Embed or Extract was called with no image loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrEmptyPayload means Embed was called with a zero-length payload.
	ErrEmptyPayload = errors.New("payload is empty")

	// ErrCapacityExhausted means the site selector ran out of candidate
	// sites before every bit of the header and ciphertext could be
	// placed or read.
	ErrCapacityExhausted = errors.New("insufficient capacity in image")

	// ErrInvalidHeader means the header's declared encrypted length would
	// require more bits than the image provides. Most commonly caused by
	// a wrong password (the header bytes decode to garbage).
	ErrInvalidHeader = errors.New("invalid header: image too small for declared payload")

	// ErrDecryptFailed means AES-CBC decryption or its padding check
	// failed.
	ErrDecryptFailed = errors.New("decryption failed")

	// ErrDecompressFailed means zlib inflate failed.
	ErrDecompressFailed = errors.New("decompression failed")
)

// Engine is the interface implemented by the steganography pipeline.
//
// Embed conceals data in the currently loaded image, modifying it in
// place. Extract reveals data from the currently loaded image. Both
// methods are blocking and synchronous; neither retains data beyond the
// call.
type Engine interface {
	Embed(password []byte, data []byte, sobel bool) error
	Extract(password []byte, sobel bool) ([]byte, error)
}
