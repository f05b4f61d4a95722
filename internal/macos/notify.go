package macos

import (
	"context"
	"fmt"

	"github.com/hpungsan/pastedock/internal/toast"
)

// Notifier shows toasts as Notification Center banners.
type Notifier struct {
	r     Runner
	title string
}

// NewNotifier creates a Notifier whose banners carry title.
func NewNotifier(r Runner, title string) *Notifier {
	return &Notifier{r: r, title: title}
}

// Show displays one toast.
func (n *Notifier) Show(ctx context.Context, t toast.Toast) error {
	script := fmt.Sprintf("display notification %s with title %s", quote(t.Message), quote(n.title))
	if t.Style == toast.StyleError || t.Style == toast.StyleWarning {
		script += " subtitle " + quote(string(t.Style))
	}
	_, err := osascript(ctx, n.r, script)
	return err
}
