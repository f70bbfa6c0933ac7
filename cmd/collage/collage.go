// Program collage builds a photo strip from image files, putting each one
// through the same crop and filter a booth capture gets.
//
//	collage -m 4 -t "Team day" a.jpg b.jpg c.jpg d.jpg
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/capture"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/frame"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	mode   string
	filter string
	title  string
	mirror bool
	output string
}

// makeCollage loads, crops and filters every file then composes them.
func makeCollage(ctx context.Context, o options, paths []string, now time.Time) (*frame.Collage, error) {
	m := mode.Parse(o.mode)
	if len(paths) != m.TotalPhotos() {
		return nil, fmt.Errorf("%w: %v takes %d files, got %d", frame.ErrIncomplete, m, m.TotalPhotos(), len(paths))
	}
	k := filter.Parse(o.filter)
	title := o.title
	if title == "" {
		title = booth.DefaultTitle(now)
	}

	frames := make([][]byte, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := capture.LoadImage(path)
			if err != nil {
				return err
			}
			frames[i], err = booth.Process(img, m, k, o.mirror)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame.Compose(ctx, frame.Request{Frames: frames, Mode: m, Title: title, At: now})
}

func newRootCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "collage [flags] image...",
		Short:        "Build a photo booth collage from image files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := makeCollage(cmd.Context(), o, args, time.Now())
			if err != nil {
				return err
			}
			path := o.output
			if path == "" {
				path = c.Filename()
			} else if fi, err := os.Stat(path); err == nil && fi.IsDir() {
				path = filepath.Join(path, c.Filename())
			}
			if err := os.WriteFile(path, c.JPEG, 0o644); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"path":    path,
				"mode":    c.Mode.String(),
				"missing": len(c.Missing),
			}).Info("Collage written")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.mode, "mode", "m", "2", "photo mode, 2 or 4")
	fs.StringVarP(&o.filter, "filter", "f", "none", "filter: none, warm, cool, vintage or bw")
	fs.StringVarP(&o.title, "title", "t", "", "strip title (default day of year)")
	fs.BoolVar(&o.mirror, "mirror", false, "mirror the photos")
	fs.StringVarP(&o.output, "output", "o", "", "output file or directory (default the download name)")
	return cmd
}

func main() {
	ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt)
	defer canc()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}
