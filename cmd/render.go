package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"SharedBoard/internal/export"
	"SharedBoard/internal/geom"
	"SharedBoard/internal/render"
)

type viewFlags struct {
	scale  float64
	dx, dy float64
	width  int
	height int
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.scale, "scale", 1, "zoom factor")
	cmd.Flags().Float64Var(&v.dx, "dx", 0, "horizontal pan offset in canvas units")
	cmd.Flags().Float64Var(&v.dy, "dy", 0, "vertical pan offset in canvas units")
	cmd.Flags().IntVar(&v.width, "width", 0, "output width (default canvas.width)")
	cmd.Flags().IntVar(&v.height, "height", 0, "output height (default canvas.height)")
}

func (v *viewFlags) size() (int, int) {
	w, h := v.width, v.height
	if w <= 0 {
		w = cfg.Canvas.Width
	}
	if h <= 0 {
		h = cfg.Canvas.Height
	}
	return w, h
}

// frame loads a snapshot file and pairs it with the requested view.
func (v *viewFlags) frame(path string) (render.Frame, error) {
	snap, err := export.LoadSnapshot(path)
	if err != nil {
		return render.Frame{}, err
	}
	t := geom.Transform{Scale: v.scale, Offset: geom.Pt(v.dx, v.dy)}
	if !t.Valid() {
		return render.Frame{}, fmt.Errorf("%w: scale %v", render.ErrBadTransform, v.scale)
	}
	logger.Debug("snapshot loaded", "room", snap.Room, "actions", len(snap.Actions))
	return render.Frame{Actions: snap.Actions, Transform: t}, nil
}

func outputName(in, ext, flag string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimSuffix(in, ".json") + ext
}

var (
	renderView viewFlags
	renderOut  string
)

var renderCmd = &cobra.Command{
	Use:   "render <snapshot.json>",
	Short: "Replay a saved board into a PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := renderView.frame(args[0])
		if err != nil {
			return err
		}
		w, h := renderView.size()
		out := outputName(args[0], ".png", renderOut)
		if err := export.SavePNG(out, f, w, h, cfg.Canvas.DPR); err != nil {
			return err
		}
		logger.Info("png written", "path", out, "width", w, "height", h)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderView.register(renderCmd)
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "output file")
}
