package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleartag/labelscan/internal/domain"
)

func fixedClock() time.Time {
	return time.Unix(1700000000, 0)
}

func TestNewCapturer_Defaults(t *testing.T) {
	c := NewCapturer(Config{})

	assert.Equal(t, 1920, c.width)
	assert.Equal(t, 1080, c.height)
	assert.Equal(t, "uploads", c.outputDir)
	assert.Equal(t, DefaultCommands, c.commands)
	assert.False(t, c.allowDummy)
}

func TestExpandArgs(t *testing.T) {
	args := expandArgs([]string{"-o", "{output}", "--width", "{width}", "--height", "{height}"}, "/tmp/a.jpg", 640, 480)

	assert.Equal(t, []string{"-o", "/tmp/a.jpg", "--width", "640", "--height", "480"}, args)
}

func TestCapture_FirstWorkingCommandWins(t *testing.T) {
	dir := t.TempDir()
	c := NewCapturer(Config{
		OutputDir: dir,
		Commands: [][]string{
			{"cleartag-no-such-camera-tool"},
			{"sh", "-c", "printf jpegbytes > {output}"},
		},
	})
	c.now = fixedClock

	img, err := c.Capture(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "scan_1700000000.jpg", img.Name)
	assert.Equal(t, []byte("jpegbytes"), img.Data)
	assert.FileExists(t, filepath.Join(dir, img.Name))
}

func TestCapture_AllCommandsFail(t *testing.T) {
	c := NewCapturer(Config{
		OutputDir: t.TempDir(),
		Commands:  [][]string{{"cleartag-no-such-camera-tool"}, {"sh", "-c", "exit 1"}},
	})

	_, err := c.Capture(context.Background())

	assert.ErrorIs(t, err, domain.ErrCaptureFailed)
}

func TestCapture_CommandWithoutOutputFails(t *testing.T) {
	c := NewCapturer(Config{
		OutputDir: t.TempDir(),
		Commands:  [][]string{{"sh", "-c", "true"}},
	})

	_, err := c.Capture(context.Background())

	assert.ErrorIs(t, err, domain.ErrCaptureFailed)
}

func TestCapture_DummyFallback(t *testing.T) {
	dir := t.TempDir()
	c := NewCapturer(Config{
		OutputDir:  dir,
		Width:      320,
		Height:     200,
		Commands:   [][]string{{"cleartag-no-such-camera-tool"}},
		AllowDummy: true,
	})
	c.now = fixedClock

	img, err := c.Capture(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "scan_1700000000.jpg", img.Name)
	assert.NotEmpty(t, img.Data)

	decoded, err := imaging.Open(filepath.Join(dir, img.Name))
	require.NoError(t, err)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestCapture_OutputDirCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	c := NewCapturer(Config{
		OutputDir:  dir,
		Width:      64,
		Height:     64,
		Commands:   [][]string{},
		AllowDummy: true,
	})

	_, err := c.Capture(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
