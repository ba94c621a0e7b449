package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(100, 100)), MaxUploadSize)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", result.MIME)
	assert.Equal(t, ".jpg", result.Ext)
	assert.NotEmpty(t, result.Data)
}

func TestProcessPNG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(100, 100)), MaxUploadSize)
	require.NoError(t, err)
	// Always outputs JPEG.
	assert.Equal(t, "image/jpeg", result.MIME)
}

func TestProcessDownscale(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(2048, 1024)), MaxUploadSize)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, img.Bounds().Dx())
	assert.Equal(t, MaxDimension/2, img.Bounds().Dy())
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(50, 50)), MaxUploadSize)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")), MaxUploadSize)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessGIFRejected(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("GIF89a...")), MaxUploadSize)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestProcessTooLarge(t *testing.T) {
	data := createTestPNG(64, 64)
	_, err := Process(bytes.NewReader(data), int64(len(data)-1))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Process(bytes.NewReader(data), int64(len(data)))
	assert.NoError(t, err)
}

// withDimensions rewrites the IHDR chunk of a PNG to declare w x h pixels,
// leaving the (much smaller) pixel data untouched.
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	// 8-byte signature, 4-byte length, "IHDR", then width and height.
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessTooManyPixels(t *testing.T) {
	huge := withDimensions(createTestPNG(8, 8), 10000, 10000)
	require.Less(t, len(huge), 1024)

	_, err := Process(bytes.NewReader(huge), MaxUploadSize)
	assert.ErrorIs(t, err, ErrTooManyPixels)
}
