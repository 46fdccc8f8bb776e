package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"SharedBoard/internal/export"
	bnet "SharedBoard/internal/net"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export boards to files",
}

var (
	pdfView viewFlags
	pdfOut  string
)

var exportPDFCmd = &cobra.Command{
	Use:   "pdf <snapshot.json>",
	Short: "Replay a saved board into a one page PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := pdfView.frame(args[0])
		if err != nil {
			return err
		}
		w, h := pdfView.size()
		out := outputName(args[0], ".pdf", pdfOut)
		if err := export.SavePDF(out, f, float64(w), float64(h)); err != nil {
			return err
		}
		logger.Info("pdf written", "path", out)
		return nil
	},
}

var (
	fetchURL string
	fetchOut string
)

var exportSnapshotCmd = &cobra.Command{
	Use:   "snapshot <room>",
	Short: "Download a room from a running coordinator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := fetchURL
		if base == "" {
			base = cfg.Coordinator.URL
		}
		if base == "" {
			base = fmt.Sprintf("http://127.0.0.1:%d", cfg.Running.Port)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		snap, err := fetchSnapshot(ctx, base, args[0])
		if err != nil {
			return err
		}
		out := fetchOut
		if out == "" {
			out = args[0] + ".json"
		}
		if err := export.SaveSnapshot(out, snap); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", out, "actions", len(snap.Actions))
		return nil
	},
}

func fetchSnapshot(ctx context.Context, base, room string) (export.Snapshot, error) {
	url, err := bnet.SnapshotURL(base, room)
	if err != nil {
		return export.Snapshot{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return export.Snapshot{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return export.Snapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return export.Snapshot{}, fmt.Errorf("snapshot %s: %s", room, resp.Status)
	}
	return export.ReadSnapshot(resp.Body)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportPDFCmd, exportSnapshotCmd)

	pdfView.register(exportPDFCmd)
	exportPDFCmd.Flags().StringVarP(&pdfOut, "output", "o", "", "output file")

	exportSnapshotCmd.Flags().StringVar(&fetchURL, "url", "", "coordinator base url")
	exportSnapshotCmd.Flags().StringVarP(&fetchOut, "output", "o", "", "output file")
}
