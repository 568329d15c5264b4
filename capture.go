package steelcast

import (
	"bufio"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/bmp"
)

// writeBMP encodes img to path as an uncompressed BMP.
func writeBMP(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("steelcast: capture: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("steelcast: capture: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("steelcast: capture: encode: %w", err)
	}
	return w.Flush()
}
