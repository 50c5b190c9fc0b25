package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-image-editor/internal/core"
	"cv-image-editor/internal/io"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("100, 100,300,200")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(100, 100, 300, 200), r)

	// Order is kept; the editor normalizes the drag direction.
	r, err = parseRect("30,40,10,20")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(30, 40), r.Min)

	for _, s := range []string{"", "1,2,3", "1,2,3,x", "1,2,3,4,5"} {
		_, err := parseRect(s)
		assert.Error(t, err, s)
	}
}

func TestParamsFromFlags(t *testing.T) {
	saved := applyOpts
	t.Cleanup(func() { applyOpts = saved })

	applyOpts.angle = 30
	applyOpts.contrast = 1.5
	applyOpts.filter = "Emboss"
	p, err := paramsFromFlags()
	require.NoError(t, err)
	assert.Equal(t, 30.0, p.Angle)
	assert.Equal(t, core.FilterEmboss, p.Filter)

	applyOpts.contrast = 7
	_, err = paramsFromFlags()
	assert.Error(t, err)

	applyOpts.contrast = 1
	applyOpts.filter = "vintage"
	_, err = paramsFromFlags()
	assert.Error(t, err)
}

func TestApplyAndInfoCommands(t *testing.T) {
	saved := applyOpts
	t.Cleanup(func() { applyOpts = saved })

	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, 400, 300)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{
		"apply", in, "-o", out,
		"--flip-h",
		"--crop", "50,50,150,100",
		"--viewport", "200x150",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "(400x300)")
	assert.Contains(t, stdout.String(), "(200x100)")

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	result, err := io.NewImageLoader(logger).LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "200x100", result.Dimensions())
	// Flipped before cropping: the crop's first column is source column 299,
	// whose red sample wrapped to 43.
	assert.Equal(t, [3]uint8{90, 100, 43}, result.At(0, 0))

	stdout.Reset()
	rootCmd.SetArgs([]string{"info", out})
	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.Contains(stdout.String(), "Image:       200x100"))
	assert.Contains(t, stdout.String(), "Digest:")
}
