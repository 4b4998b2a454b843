package render

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

func sampleScene(t *testing.T) Scene {
	t.Helper()
	ctx := context.Background()
	sess := session.New(session.WithView(view.New(320, 240, 20)))
	_, err := sess.PlotColor(ctx, "sin(x)", domain.Yellow)
	require.NoError(t, err)
	_, err = sess.PlotColor(ctx, "1/x", domain.Cyan)
	require.NoError(t, err)
	return FromSession(ctx, sess)
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, sampleScene(t)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())

	colors := map[[4]uint32]bool{}
	for y := 0; y < 240; y += 3 {
		for x := 0; x < 320; x += 3 {
			r, g, b, a := img.At(x, y).RGBA()
			colors[[4]uint32{r, g, b, a}] = true
		}
	}
	assert.Greater(t, len(colors), 3, "expected more than a blank canvas")
}

func TestPNG_InvalidSize(t *testing.T) {
	err := PNG(&bytes.Buffer{}, Scene{})
	assert.Error(t, err)
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sampleScene(t)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestPDF_EmptyScene(t *testing.T) {
	var buf bytes.Buffer
	v := view.Default()
	v.Pan(1000, 1000)
	require.NoError(t, PDF(&buf, BuildScene(v, nil)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("plot.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	assert.Equal(t, "image/png", f.ContentType())

	f, err = FormatFromPath("out/plot.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = FormatFromPath("plot.svg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, Format("gif"), Scene{}), ErrUnsupportedFormat)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	s := sampleScene(t)

	for _, name := range []string{"plot.png", "plot.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Export(path, s))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := Export(filepath.Join(dir, "plot.bmp"), s)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = os.Stat(filepath.Join(dir, "plot.bmp"))
	assert.True(t, os.IsNotExist(err))
}
