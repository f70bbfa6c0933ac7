// Program x11booth runs the photo booth in an X11 window: a live preview
// with the countdown on top and the strip being built beside it.
//
// Keys: space photo, s session, 2/4 mode, f filter, m mirror, r reset,
// w save, q or Esc quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/drummonds/gobooth/internal/booth"
	"github.com/drummonds/gobooth/internal/config"
	"github.com/drummonds/gobooth/internal/drawing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const refresh = 100 * time.Millisecond

type window struct {
	X                  *xgb.Conn
	wid                xproto.Window
	gc                 xproto.Gcontext
	depth              byte
	atomWmDeleteWindow xproto.Atom
	atomWmProtocols    xproto.Atom
	minKeycode         xproto.Keycode
	keysymsPerKeycode  byte
	keysyms            []xproto.Keysym
	maxRequest         int // bytes
	pixels             []byte
}

func NewX(width, height int) (*window, error) {
	X, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	w := &window{X: X}

	setup := xproto.Setup(X)
	screen := setup.DefaultScreen(X)
	if screen.RootDepth != 24 && screen.RootDepth != 32 {
		X.Close()
		return nil, fmt.Errorf("need a 24 bit display, have depth %d", screen.RootDepth)
	}
	w.depth = screen.RootDepth
	w.maxRequest = int(setup.MaximumRequestLength) * 4

	w.wid, _ = xproto.NewWindowId(X)
	xproto.CreateWindow(X, screen.RootDepth, w.wid, screen.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{
			0xffffffff,
			xproto.EventMaskExposure | xproto.EventMaskKeyPress | xproto.EventMaskStructureNotify,
		})
	title := "gobooth"
	xproto.ChangeProperty(X, xproto.PropModeReplace, w.wid, xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title))

	// Set WM_PROTOCOLS to handle window close
	atomWmDeleteWindow, _ := xproto.InternAtom(X, false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	atomWmProtocols, _ := xproto.InternAtom(X, false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if atomWmDeleteWindow == nil || atomWmProtocols == nil {
		X.Close()
		return nil, errors.New("can't intern WM_PROTOCOLS atoms")
	}
	w.atomWmDeleteWindow, w.atomWmProtocols = atomWmDeleteWindow.Atom, atomWmProtocols.Atom
	a := uint32(w.atomWmDeleteWindow)
	xproto.ChangeProperty(X, xproto.PropModeReplace, w.wid, w.atomWmProtocols, xproto.AtomAtom, 32, 1,
		[]byte{byte(a), byte(a >> 8), byte(a >> 16), byte(a >> 24)})

	w.gc, _ = xproto.NewGcontextId(X)
	xproto.CreateGC(X, w.gc, xproto.Drawable(w.wid), 0, nil)

	w.minKeycode = setup.MinKeycode
	km, err := xproto.GetKeyboardMapping(X, setup.MinKeycode, byte(setup.MaxKeycode-setup.MinKeycode+1)).Reply()
	if err != nil {
		X.Close()
		return nil, fmt.Errorf("keyboard mapping: %w", err)
	}
	w.keysymsPerKeycode, w.keysyms = km.KeysymsPerKeycode, km.Keysyms

	xproto.MapWindow(X, w.wid)
	return w, nil
}

// keysym is the unshifted symbol on a key.
func (w *window) keysym(code xproto.Keycode) uint32 {
	i := int(code-w.minKeycode) * int(w.keysymsPerKeycode)
	if i < 0 || i >= len(w.keysyms) {
		return 0
	}
	return uint32(w.keysyms[i])
}

// put copies buffer to the window in bands small enough for one request.
func (w *window) put(s *screen) {
	b := s.Buffer.Bounds()
	width := b.Dx()
	rows := (w.maxRequest - 28) / (width * 4)
	if rows < 1 {
		rows = 1
	}
	if len(w.pixels) < width*b.Dy()*4 {
		w.pixels = make([]byte, width*b.Dy()*4)
	}
	drawing.CopyRGBAtoBGRX(w.pixels, s.Buffer)
	for y := 0; y < b.Dy(); y += rows {
		h := rows
		if y+h > b.Dy() {
			h = b.Dy() - y
		}
		xproto.PutImage(w.X, xproto.ImageFormatZPixmap, xproto.Drawable(w.wid), w.gc,
			uint16(width), uint16(h), 0, int16(y), 0, w.depth,
			w.pixels[y*width*4:(y+h)*width*4])
	}
}

func run(ctx context.Context, cfg config.Config) error {
	cam := cfg.Camera()
	b := booth.New(cam, booth.Options{
		Mode:   cfg.PhotoMode(),
		Filter: cfg.FilterKind(),
		Title:  cfg.Title,
		Mirror: cfg.Mirror,
	})
	defer b.Close()
	if err := cam.Start(ctx); err != nil {
		logrus.WithError(err).Error("Camera not started, press r to retry")
	}

	s, err := newScreen(b, cfg.OutputDir)
	if err != nil {
		return err
	}
	w, err := NewX(windowWidth, windowHeight)
	if err != nil {
		return err
	}
	defer w.X.Close()

	events := make(chan xgb.Event)
	go func() {
		defer close(events)
		for {
			ev, err := w.X.WaitForEvent()
			if ev == nil && err == nil {
				return // connection closed
			}
			if err != nil {
				logrus.WithError(err).Debug("X error")
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	redraw := time.NewTicker(refresh)
	defer redraw.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			b.Tick()
		case <-redraw.C:
			s.Render()
			w.put(s)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case xproto.ExposeEvent:
				w.put(s)
			case xproto.ClientMessageEvent:
				if e.Type == w.atomWmProtocols && e.Data.Data32[0] == uint32(w.atomWmDeleteWindow) {
					return nil
				}
			case xproto.KeyPressEvent:
				if s.handleKey(ctx, w.keysym(e.Detail)) {
					return nil
				}
			}
		}
	}
}

func main() {
	cmd := &cobra.Command{
		Use:          "x11booth",
		Short:        "Photo booth in an X11 window",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
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
		if err := run(cmd.Context(), cfg); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	// Cancel the context instead of exiting the program
	ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt)
	defer canc()
	if err := cmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}
