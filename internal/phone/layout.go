package phone

import "github.com/starford/folio/internal/nav"

// Screen geometry, in terminal cells. The frame border and padding put the
// content at column 2, row 1.
const (
	contentWidth = 40
	contentLeft  = 2
	contentTop   = 1

	headerRow = contentTop

	widgetTop    = contentTop + 2
	widgetHeight = 4

	iconTop    = widgetTop + widgetHeight + 1
	iconHeight = 3
	iconWidth  = 12
	iconGap    = 2
)

var homeApps = []nav.App{nav.AppNotes, nav.AppSocials, nav.AppEvents}

func contains(r nav.Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// iconRect returns the on-screen box of an app icon.
func iconRect(app nav.App) nav.Rect {
	for i, a := range homeApps {
		if a == app {
			return nav.Rect{X: contentLeft + i*(iconWidth+iconGap), Y: iconTop, W: iconWidth, H: iconHeight}
		}
	}
	return nav.Rect{}
}

func widgetRect() nav.Rect {
	return nav.Rect{X: contentLeft, Y: widgetTop, W: contentWidth, H: widgetHeight}
}

// iconAt returns the app whose icon covers (x, y).
func iconAt(x, y int) (nav.App, bool) {
	for _, a := range homeApps {
		if contains(iconRect(a), x, y) {
			return a, true
		}
	}
	return nav.AppNone, false
}
