package macos

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/pastedock/internal/paste"
)

// pasteSettle gives a reactivated app time to take focus before the keystroke.
const pasteSettle = 80 * time.Millisecond

const frontmostScript = `tell application "System Events"
	set p to first application process whose frontmost is true
	return (bundle identifier of p) & "|" & (unix id of p)
end tell`

// Apps tracks and activates applications through System Events.
type Apps struct {
	run Runner
}

// NewApps creates an Apps. A nil runner uses ExecRunner.
func NewApps(r Runner) *Apps {
	if r == nil {
		r = ExecRunner{}
	}
	return &Apps{run: r}
}

// Target returns the frontmost application.
func (a *Apps) Target(ctx context.Context) (*paste.TargetApp, error) {
	out, err := osascript(ctx, a.run, frontmostScript)
	if err != nil {
		return nil, err
	}
	bundle, pid, _ := strings.Cut(out, "|")
	if bundle == "" || bundle == "missing value" {
		return nil, fmt.Errorf("frontmost application has no bundle id")
	}
	t := &paste.TargetApp{BundleID: bundle}
	if n, err := strconv.ParseInt(strings.TrimSpace(pid), 10, 32); err == nil {
		t.PID = int32(n)
	}
	return t, nil
}

// Frontmost implements monitor.FrontmostTracker.
func (a *Apps) Frontmost(ctx context.Context) (string, error) {
	t, err := a.Target(ctx)
	if err != nil {
		return "", err
	}
	return t.BundleID, nil
}

// Activate brings target to the front. Our own process is never activated.
func (a *Apps) Activate(ctx context.Context, target *paste.TargetApp) error {
	if target == nil || target.BundleID == "" || int(target.PID) == os.Getpid() {
		return nil
	}
	_, err := osascript(ctx, a.run, fmt.Sprintf("tell application id %s to activate", quote(target.BundleID)))
	return err
}

// AutoPaster sends Command-V through System Events.
type AutoPaster struct {
	run   Runner
	apps  *Apps
	sleep func(context.Context, time.Duration) error
}

// NewAutoPaster creates an AutoPaster. A nil runner uses ExecRunner.
func NewAutoPaster(r Runner) *AutoPaster {
	if r == nil {
		r = ExecRunner{}
	}
	return &AutoPaster{run: r, apps: NewApps(r), sleep: sleepCtx}
}

// CanAutoPaste reports whether this process may drive System Events.
func (p *AutoPaster) CanAutoPaste(ctx context.Context) bool {
	out, err := osascript(ctx, p.run, `tell application "System Events" to get UI elements enabled`)
	return err == nil && out == "true"
}

// PerformAutoPaste activates target (when given), waits briefly, then pastes.
func (p *AutoPaster) PerformAutoPaste(ctx context.Context, target *paste.TargetApp) error {
	if err := p.apps.Activate(ctx, target); err != nil {
		return fmt.Errorf("activate %s: %w", target.BundleID, err)
	}
	if err := p.sleep(ctx, pasteSettle); err != nil {
		return err
	}
	_, err := osascript(ctx, p.run, `tell application "System Events" to keystroke "v" using command down`)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SetupCheck is one readiness item shown by `pastedock check`.
type SetupCheck struct {
	Title  string `json:"title"`
	Ready  bool   `json:"ready"`
	Action string `json:"action,omitempty"`
}

// SetupChecks reports whether the pasteboard tools and the Accessibility
// permission needed for auto-paste are available.
func SetupChecks(ctx context.Context, paster *AutoPaster) []SetupCheck {
	var missing []string
	for _, tool := range []string{"pbcopy", "pbpaste", "osascript"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	tools := SetupCheck{Title: "Pasteboard tools", Ready: len(missing) == 0}
	if !tools.Ready {
		tools.Action = "Missing " + strings.Join(missing, ", ") + "; pastedock requires macOS."
	}

	access := SetupCheck{Title: "Accessibility", Ready: tools.Ready && paster.CanAutoPaste(ctx)}
	if !access.Ready {
		access.Action = "Enable your terminal in System Settings > Privacy & Security > Accessibility."
	}
	return []SetupCheck{tools, access}
}
