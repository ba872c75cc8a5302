package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	stegano "github.com/zanicar/steganographer"
)

// writeSolidPNG writes a w x h solid-color PNG fixture and returns its path.
func writeSolidPNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

// writeEdgePNG writes a w x h PNG of alternating 2-pixel-wide white and
// black vertical stripes, so every interior pixel is a Sobel edge and
// Sobel mode has enough sites for a header plus ciphertext.
func writeEdgePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/2)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 0, G: 0, B: 0, A: 255})
			}
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

// S1: round trip of a short message on a small solid-color image.
func TestRoundTripSmallMessage(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "s1.png", 32, 32, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	payload := []byte("hello")
	if err := e.Embed([]byte("abc"), payload, false); err != nil {
		t.Fatalf("embed: %v", err)
	}

	outPath := filepath.Join(dir, "s1_out.png")
	if err := e.Save(outPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	e2 := New()
	if err := e2.Load(outPath); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := e2.Extract([]byte("abc"), false)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round trip mismatch: got %q, want %q", got, payload)
	}
}

// S2: round trip of a larger (1KiB) payload, exercising multi-chunk
// compression/encryption and many write sites.
func TestRoundTripLargePayload(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "s2.png", 256, 256, color.RGBA{R: 90, G: 110, B: 130, A: 255})

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	payload := bytes.Repeat([]byte("0123456789abcdef"), 64) // 1024 bytes
	if err := e.Embed([]byte("correct horse battery staple"), payload, false); err != nil {
		t.Fatalf("embed: %v", err)
	}

	outPath := filepath.Join(dir, "s2_out.png")
	if err := e.Save(outPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	e2 := New()
	if err := e2.Load(outPath); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := e2.Extract([]byte("correct horse battery staple"), false)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("1KiB round trip mismatch")
	}
}

// S3: extracting with the wrong password must fail and must not produce
// the original payload.
func TestExtractWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "s3.png", 32, 32, color.RGBA{R: 50, G: 60, B: 70, A: 255})

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	payload := []byte("a secret nobody else should read")
	if err := e.Embed([]byte("rightpass"), payload, false); err != nil {
		t.Fatalf("embed: %v", err)
	}
	outPath := filepath.Join(dir, "s3_out.png")
	if err := e.Save(outPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	e2 := New()
	if err := e2.Load(outPath); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := e2.Extract([]byte("wrongpass"), false)
	if err == nil && bytes.Equal(got, payload) {
		t.Fatal("extraction with the wrong password unexpectedly recovered the payload")
	}
}

// S4: an image too small for the requested payload must fail with
// ErrCapacityExhausted rather than silently truncating or corrupting.
func TestEmbedCapacityExhausted(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "s4.png", 8, 8, color.RGBA{R: 5, G: 5, B: 5, A: 255})

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	payload := bytes.Repeat([]byte("x"), 4096)
	err := e.Embed([]byte("abc"), payload, false)
	if err != stegano.ErrCapacityExhausted {
		t.Fatalf("expected ErrCapacityExhausted, got %v", err)
	}
}

// S5: Sobel-mode round trip, plus a failed extraction when Sobel mode is
// not also used on extract (the candidate/exclusion sequence diverges).
func TestSobelModeRoundTripAndCrossModeFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeEdgePNG(t, dir, "s5.png", 128, 128)

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	payload := []byte("edge-restricted payload")
	if err := e.Embed([]byte("sobelpass"), payload, true); err != nil {
		t.Fatalf("embed: %v", err)
	}
	outPath := filepath.Join(dir, "s5_out.png")
	if err := e.Save(outPath); err != nil {
		t.Fatalf("save: %v", err)
	}

	e2 := New()
	if err := e2.Load(outPath); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := e2.Extract([]byte("sobelpass"), true)
	if err != nil {
		t.Fatalf("sobel extract: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("sobel round trip mismatch: got %q, want %q", got, payload)
	}

	e3 := New()
	if err := e3.Load(outPath); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got3, err := e3.Extract([]byte("sobelpass"), false)
	if err == nil && bytes.Equal(got3, payload) {
		t.Fatal("extracting in non-Sobel mode unexpectedly recovered a Sobel-mode embed")
	}
}

// S6: embedding twice with different passwords over a reloaded image must
// still allow the second embed to be extracted with the second password.
func TestSequentialEmbedWithDifferentPasswords(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "s6.png", 64, 64, color.RGBA{R: 200, G: 150, B: 100, A: 255})

	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	first := []byte("first payload")
	if err := e.Embed([]byte("passwordOne"), first, false); err != nil {
		t.Fatalf("first embed: %v", err)
	}
	midPath := filepath.Join(dir, "s6_mid.png")
	if err := e.Save(midPath); err != nil {
		t.Fatalf("save mid: %v", err)
	}

	e2 := New()
	if err := e2.Load(midPath); err != nil {
		t.Fatalf("reload mid: %v", err)
	}
	second := []byte("second payload, different password")
	if err := e2.Embed([]byte("passwordTwo"), second, false); err != nil {
		t.Fatalf("second embed: %v", err)
	}
	finalPath := filepath.Join(dir, "s6_final.png")
	if err := e2.Save(finalPath); err != nil {
		t.Fatalf("save final: %v", err)
	}

	e3 := New()
	if err := e3.Load(finalPath); err != nil {
		t.Fatalf("reload final: %v", err)
	}
	got, err := e3.Extract([]byte("passwordTwo"), false)
	if err != nil {
		t.Fatalf("extract with second password: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Errorf("expected second payload %q, got %q", second, got)
	}
}

func TestEmbedRequiresLoadedImage(t *testing.T) {
	e := New()
	if err := e.Embed([]byte("abc"), []byte("data"), false); err != stegano.ErrNoImage {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestEmbedRejectsEmptyPayload(t *testing.T) {
	dir := t.TempDir()
	path := writeSolidPNG(t, dir, "empty.png", 16, 16, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	e := New()
	if err := e.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.Embed([]byte("abc"), []byte{}, false); err != stegano.ErrEmptyPayload {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}
