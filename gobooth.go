// Program gobooth is a photo booth for the terminal. It takes its photos
// from a V4L2 webcam, or a directory of stills, and builds a 2 or 4 photo
// collage that can be saved as a JPEG.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/config"
	"github.com/drummonds/gobooth/internal/filter"
	"github.com/drummonds/gobooth/internal/mode"
	"github.com/drummonds/gobooth/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "V0.3.0 2024-10-05"

type console struct {
	b         *booth.Booth
	out       io.Writer
	outputDir string
	last      booth.Status
}

func newConsole(b *booth.Booth, out io.Writer, outputDir string) *console {
	return &console{b: b, out: out, outputDir: outputDir, last: b.Status()}
}

// process runs one command line and reports whether to quit.
func (c *console) process(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	arg := strings.Join(parts[1:], " ")

	switch strings.ToLower(parts[0]) {
	case "help", "h", "?":
		c.help()
	case "shot", "snap", "p":
		if !c.b.TakePhoto() {
			fmt.Fprintln(c.out, "Can't take a photo now:", c.b.Status().Caption())
		}
	case "session", "s":
		if !c.b.StartSession() {
			fmt.Fprintln(c.out, "Can't start a session now:", c.b.Status().Caption())
		}
	case "mode", "m":
		if arg == "" {
			fmt.Fprintln(c.out, "Usage: mode <2|4>")
			break
		}
		c.b.SetMode(mode.Parse(arg))
		fmt.Fprintln(c.out, "Mode:", c.b.Status().Mode.Label())
	case "filter", "f":
		k := c.b.Status().Filter.Next()
		if arg != "" {
			k = filter.Parse(arg)
		}
		c.b.SetFilter(k)
		fmt.Fprintln(c.out, "Filter:", k.Label())
	case "title", "t":
		c.b.SetTitle(arg)
		fmt.Fprintln(c.out, "Title:", c.b.Status().Title)
	case "mirror":
		on := !c.b.Status().Mirror
		switch strings.ToLower(arg) {
		case "on", "true", "yes":
			on = true
		case "off", "false", "no":
			on = false
		}
		c.b.SetMirror(on)
		fmt.Fprintln(c.out, "Mirror:", on)
	case "reset", "r":
		c.b.Reset()
		fmt.Fprintln(c.out, "Photos cleared")
	case "retry":
		if err := c.b.Retry(ctx); err != nil {
			fmt.Fprintln(c.out, err)
		} else {
			fmt.Fprintln(c.out, "Camera restarted")
		}
	case "save", "w":
		path, err := c.b.Save(c.outputDir)
		if err != nil {
			if errors.Is(err, booth.ErrNoCollage) {
				fmt.Fprintln(c.out, "Nothing to save yet:", c.b.Status().Caption())
			} else {
				fmt.Fprintln(c.out, err)
			}
			break
		}
		fmt.Fprintln(c.out, "Saved", path)
	case "status":
		fmt.Fprintln(c.out, c.b.Status())
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", parts[0])
	}
	c.report()
	return false
}

func (c *console) help() {
	fmt.Fprint(c.out, `Commands:
  shot             take a photo after a 3 second countdown
  session          take the rest of the strip automatically
  mode <2|4>       switch photo mode, clears the strip
  filter [name]    none, warm, cool, vintage or bw; cycles without a name
  title <text>     set the strip title, empty for the default
  mirror [on|off]  mirror captured photos
  reset            clear the strip
  retry            restart the camera
  save             write the collage to the output directory
  status           show what the booth is doing
  quit
`)
}

// report prints what changed since the last call: countdowns, captures
// and a finished collage.
func (c *console) report() {
	st := c.b.Status()
	prev := c.last
	c.last = st

	switch {
	case st.CameraErr != nil && prev.CameraErr == nil:
		fmt.Fprintf(c.out, "%v\nType 'retry' to try again\n", st.CameraErr)
	case st.Ready && !prev.Ready:
		fmt.Fprintln(c.out, "Camera ready")
	}
	if st.Countdown > 0 && (st.Countdown != prev.Countdown || st.State != prev.State) {
		if st.State == session.InSession {
			fmt.Fprintf(c.out, "Next photo in %d...\n", st.Countdown)
		} else {
			fmt.Fprintf(c.out, "%d...\n", st.Countdown)
		}
	}
	if st.Captured > prev.Captured {
		fmt.Fprintf(c.out, "📸 Photo %d of %d\n", st.Captured, st.Total)
	}
	if st.HasCollage && !prev.HasCollage {
		fmt.Fprintln(c.out, "Collage ready, type 'save' to keep it")
	}
}

func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	cam := cfg.Camera()
	b := booth.New(cam, booth.Options{
		Mode:   cfg.PhotoMode(),
		Filter: cfg.FilterKind(),
		Title:  cfg.Title,
		Mirror: cfg.Mirror,
	})
	defer func() {
		if err := b.Close(); err != nil {
			logrus.WithError(err).Warn("Closing camera")
		}
	}()

	c := newConsole(b, out, cfg.OutputDir)
	if err := cam.Start(ctx); err != nil {
		fmt.Fprintf(out, "%v\nType 'retry' to try again\n", err)
	}
	fmt.Fprintf(out, "%s\nType 'help' for commands\n", b.Status())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// Event loop, the booth counts in seconds
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok || c.process(ctx, line) {
				b.Flush()
				return nil
			}
		case <-tick.C:
			b.Tick()
			c.report()
		}
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gobooth",
		Short:         "Terminal photo booth",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	flags := config.AddFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		if err := cfg.ApplyLogging(); err != nil {
			return err
		}
		err = run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return cmd
}

func main() {
	// Cancel the context instead of exiting the program
	ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer canc()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}
