package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cleartag/labelscan/internal/domain"
)

const dummyCaption = "Dummy Capture (Camera Not Found)"

// Command placeholders substituted before each capture attempt
const (
	placeholderOutput = "{output}"
	placeholderWidth  = "{width}"
	placeholderHeight = "{height}"
)

// DefaultCommands are tried in order; the first one that produces a file wins
var DefaultCommands = [][]string{
	{"rpicam-still", "-t", "1000", "-o", placeholderOutput, "--width", placeholderWidth, "--height", placeholderHeight, "--nopreview", "--autofocus-mode", "auto"},
	{"libcamera-still", "-t", "1000", "-o", placeholderOutput, "--width", placeholderWidth, "--height", placeholderHeight, "--nopreview", "--autofocus-mode", "auto"},
}

// Config holds configuration for the camera capturer
type Config struct {
	OutputDir  string
	Width      int
	Height     int
	Commands   [][]string // nil means DefaultCommands
	AllowDummy bool
	Timeout    time.Duration
}

// Capturer takes still photographs through the Raspberry Pi camera tools
type Capturer struct {
	outputDir  string
	width      int
	height     int
	commands   [][]string
	allowDummy bool
	timeout    time.Duration
	now        func() time.Time
}

// NewCapturer creates a new camera capturer
func NewCapturer(cfg Config) *Capturer {
	if cfg.Width <= 0 {
		cfg.Width = 1920
	}
	if cfg.Height <= 0 {
		cfg.Height = 1080
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "uploads"
	}
	if cfg.Commands == nil {
		cfg.Commands = DefaultCommands
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Capturer{
		outputDir:  cfg.OutputDir,
		width:      cfg.Width,
		height:     cfg.Height,
		commands:   cfg.Commands,
		allowDummy: cfg.AllowDummy,
		timeout:    cfg.Timeout,
		now:        time.Now,
	}
}

// Capture takes a photograph and returns its bytes
func (c *Capturer) Capture(ctx context.Context) (domain.LabelImage, error) {
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return domain.LabelImage{}, fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}

	name := fmt.Sprintf("scan_%d.jpg", c.now().Unix())
	path := filepath.Join(c.outputDir, name)

	var errs []error
	for _, command := range c.commands {
		if len(command) == 0 {
			continue
		}
		err := c.run(ctx, command, path)
		if err == nil {
			data, readErr := os.ReadFile(path)
			if readErr == nil && len(data) > 0 {
				log.Printf("[CAMERA] Captured %s with %s", path, command[0])
				return domain.LabelImage{Name: name, Data: data}, nil
			}
			err = fmt.Errorf("no image written: %v", readErr)
		}
		log.Printf("[CAMERA] %s failed: %v", command[0], err)
		errs = append(errs, fmt.Errorf("%s: %w", command[0], err))

		if ctx.Err() != nil {
			return domain.LabelImage{}, fmt.Errorf("%w: %w", domain.ErrCaptureFailed, ctx.Err())
		}
	}

	if !c.allowDummy {
		return domain.LabelImage{}, fmt.Errorf("%w: %w", domain.ErrCaptureFailed, errors.Join(errs...))
	}

	log.Printf("[CAMERA] No camera available, writing dummy capture")
	if err := c.writeDummy(path); err != nil {
		return domain.LabelImage{}, fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LabelImage{}, fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}
	return domain.LabelImage{Name: name, Data: data}, nil
}

func (c *Capturer) run(ctx context.Context, command []string, path string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := expandArgs(command[1:], path, c.width, c.height)
	cmd := exec.CommandContext(ctx, command[0], args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func expandArgs(args []string, path string, width, height int) []string {
	replacer := strings.NewReplacer(
		placeholderOutput, path,
		placeholderWidth, strconv.Itoa(width),
		placeholderHeight, strconv.Itoa(height),
	)
	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = replacer.Replace(arg)
	}
	return expanded
}

// writeDummy saves a gray placeholder frame so the pipeline can be exercised
// on machines without a camera
func (c *Capturer) writeDummy(path string) error {
	img := imaging.New(c.width, c.height, color.Gray{Y: 128})

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(50, 50),
	}
	drawer.DrawString(dummyCaption)

	return imaging.Save(img, path)
}
