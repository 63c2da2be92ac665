package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Pointer queries the global pointer from the X server. In wallpaper
// mode the window sits below the desktop and never sees input events.
type x11Pointer struct {
	conn *xgb.Conn
	root xproto.Window
}

func newX11Pointer() (*x11Pointer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &x11Pointer{conn: conn, root: root}, nil
}

// Sample returns the pointer in window-local logical pixels.
func (p *x11Pointer) Sample(dpr float64) (x, y float64, down, ok bool) {
	reply, err := xproto.QueryPointer(p.conn, p.root).Reply()
	if err != nil || !reply.SameScreen {
		return 0, 0, false, false
	}
	wx, wy := ebiten.WindowPosition()
	// Root coordinates are device pixels; the window position is not.
	x = float64(reply.RootX)/dpr - float64(wx)
	y = float64(reply.RootY)/dpr - float64(wy)
	down = reply.Mask&xproto.KeyButMaskButton1 != 0
	return x, y, down, true
}

func (p *x11Pointer) Close() {
	p.conn.Close()
}
