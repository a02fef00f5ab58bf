package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	// RefreshRate is the vertical refresh in Hz, or zero when the mode is
	// unknown.
	RefreshRate float64
}

// Contains reports whether the root coordinate (x, y) lies on m.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	rates := make(map[randr.Mode]float64, len(resources.Modes))
	for _, mode := range resources.Modes {
		rates[randr.Mode(mode.Id)] = refreshRate(mode.DotClock, mode.Htotal, mode.Vtotal)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:          i,
			Name:        outputName,
			X:           int(crtcInfo.X),
			Y:           int(crtcInfo.Y),
			Width:       int(crtcInfo.Width),
			Height:      int(crtcInfo.Height),
			RefreshRate: rates[crtcInfo.Mode],
		})
	}

	return monitors, nil
}

// refreshRate derives the vertical refresh of a video mode from its pixel
// clock and total (visible plus blanking) dimensions.
func refreshRate(dotClock uint32, htotal, vtotal uint16) float64 {
	if dotClock == 0 || htotal == 0 || vtotal == 0 {
		return 0
	}
	return float64(dotClock) / (float64(htotal) * float64(vtotal))
}

// GetActiveMonitor returns the monitor holding the focused window, falling
// back to the one under the pointer and then to the first monitor. The
// geometry is clipped to the EWMH work area so panels stay uncovered.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	var active *Monitor
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		active = c.monitorForWindow(monitors, win)
	}
	if active == nil {
		active = c.monitorForPointer(monitors)
	}
	if active == nil {
		active = &monitors[0]
	}

	if workArea, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(workArea) > 0 {
		desktop := 0
		if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
			desktop = int(current)
		}
		wa := workArea[desktop]
		clipToWorkArea(active, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))
	}

	return active, nil
}

// clipToWorkArea shrinks m to its intersection with the work area. A work
// area that misses m entirely leaves it unchanged.
func clipToWorkArea(m *Monitor, x, y, width, height int) {
	x1 := max(m.X, x)
	y1 := max(m.Y, y)
	x2 := min(m.X+m.Width, x+width)
	y2 := min(m.Y+m.Height, y+height)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	m.X, m.Y = x1, y1
	m.Width, m.Height = x2-x1, y2-y1
}

// centerOn returns the origin that centers a width x height window on m,
// pinned to the monitor's top-left corner when the window is larger.
func centerOn(m Monitor, width, height int) (int, int) {
	x := m.X + max(0, (m.Width-width)/2)
	y := m.Y + max(0, (m.Height-height)/2)
	return x, y
}

func (c *Connection) monitorForWindow(monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return nil
	}

	cx := int(translate.DstX) + int(geom.Width)/2
	cy := int(translate.DstY) + int(geom.Height)/2
	return monitorAt(monitors, cx, cy)
}

func (c *Connection) monitorForPointer(monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].Contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}
