package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type inputState struct {
	dragging bool
	hasLast  bool
	lastX    float64
	lastY    float64
}

// InstallCallbacks routes window events into the app. Callbacks run on the
// render thread inside glfw.PollEvents.
func (a *App) InstallCallbacks() {
	a.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.Resize(width, height)
	})
	a.Window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		a.HandleCursor(xpos, ypos)
	})
	a.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		a.HandleMouseButton(button, action)
	})
	a.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.HandleScroll(yoff)
	})
	a.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		a.HandleKey(key, action, mods)
	})
}

func (a *App) HandleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		a.input.dragging = true
		a.input.hasLast = false
	case glfw.Release:
		a.input.dragging = false
	}
}

// HandleCursor turns a drag into an orbit; positions are window coordinates.
func (a *App) HandleCursor(x, y float64) {
	if !a.input.dragging {
		return
	}
	if a.input.hasLast {
		dx := float32(x - a.input.lastX)
		dy := float32(y - a.input.lastY)
		a.Controls.Rotate(dx, dy, float32(a.Viewport.Height))
	}
	a.input.lastX, a.input.lastY = x, y
	a.input.hasLast = true
}

func (a *App) HandleScroll(yoff float64) {
	a.Controls.Dolly(float32(yoff))
}

// HandleKey drives the control panel. Left/Right edit the selected value on
// press and repeat; the galaxy is rebuilt once the key is released.
func (a *App) HandleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	coarse := mods&glfw.ModShift != 0

	if action == glfw.Release {
		if key == glfw.KeyLeft || key == glfw.KeyRight {
			a.commitPanel()
		}
		return
	}

	switch key {
	case glfw.KeyEscape:
		if action == glfw.Press && a.Window != nil {
			a.Window.SetShouldClose(true)
		}
	case glfw.KeyH:
		if action == glfw.Press {
			a.Panel.Toggle()
		}
	case glfw.KeyF3:
		if action == glfw.Press {
			a.DebugMode = !a.DebugMode
		}
	case glfw.KeyTab:
		if action == glfw.Press {
			a.Panel.CycleChannel()
		}
	case glfw.KeyUp:
		a.Panel.Select(-1)
	case glfw.KeyDown:
		a.Panel.Select(1)
	case glfw.KeyLeft:
		a.Panel.Nudge(-1, coarse)
	case glfw.KeyRight:
		a.Panel.Nudge(1, coarse)
	}
}

func (a *App) commitPanel() {
	params, ok := a.Panel.Commit()
	if !ok {
		return
	}
	a.Logger.Debugf("panel commit: %s", params)
	if err := a.Regenerate(params); err != nil {
		a.Logger.Errorf("%v", err)
	}
}
