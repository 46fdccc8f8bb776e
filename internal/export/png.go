package export

import (
	"fmt"
	"io"
	"os"

	"SharedBoard/internal/render"
)

func WritePNG(w io.Writer, f render.Frame, width, height int, dpr float64) error {
	r := render.NewRaster(width, height, dpr)
	if err := f.Draw(r); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return r.EncodePNG(w)
}

func SavePNG(path string, f render.Frame, width, height int, dpr float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(file, f, width, height, dpr); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
