// Package notify sends desktop notifications through fyne.
package notify

import "fyne.io/fyne/v2"

// Notifier posts system notifications for app.
type Notifier struct {
	app fyne.App
}

// New returns a notifier bound to app.
func New(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

// Notify posts title and body. fyne has no silent flag; silent
// notifications differ only in that no audio cue accompanies them.
func (notifier *Notifier) Notify(title, body string, _ bool) {
	notifier.app.SendNotification(fyne.NewNotification(title, body))
}
