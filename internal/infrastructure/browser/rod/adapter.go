package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/ysmood/gson"
)

var (
	_ output.PerceptionPort = (*BrowserAdapter)(nil)
	_ output.ActuatorPort   = (*BrowserAdapter)(nil)
)

// BrowserAdapter drives one Chrome window: it captures the active page for
// perception and replays keyboard input onto it.
type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	cfg      BrowserConfig
	keyboard *keyboard
	logger   output.LoggerPort
}

type BrowserConfig struct {
	Headless      bool
	SlowMotion    time.Duration
	Timeout       time.Duration
	NoSandbox     bool
	DevTools      bool
	StartURL      string
	ScreenshotDir string
	MaxWidth      int
	SearchURL     string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: 100 * time.Millisecond,
		Timeout:    10 * time.Second,
		NoSandbox:  true,
		DevTools:   false,
		StartURL:   "about:blank",
		MaxWidth:   1024,
		SearchURL:  "https://www.google.com/search?q=%s",
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig, logger output.LoggerPort) (*BrowserAdapter, error) {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = def.SearchURL
	}
	if cfg.StartURL == "" {
		cfg.StartURL = def.StartURL
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: cfg.StartURL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open start page: %w", err)
	}

	b := &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		cfg:      cfg,
		logger:   logger,
	}
	b.keyboard = newKeyboard(b, cfg.SearchURL)

	logger.Info("Browser started", "headless", cfg.Headless, "start_url", cfg.StartURL)
	return b, nil
}

// Capture screenshots the active page, downscales it to MaxWidth and
// re-encodes it as JPEG.
func (b *BrowserAdapter) Capture(ctx context.Context) (*entity.Snapshot, error) {
	page := b.activePage().Context(ctx)

	imgBytes, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	data, w, h, err := downscale(imgBytes, b.cfg.MaxWidth)
	if err != nil {
		return nil, err
	}

	snap := entity.NewSnapshot(uuid.NewString(), data, "image/jpeg", w, h)
	if b.cfg.ScreenshotDir != "" {
		if path, err := saveFrame(b.cfg.ScreenshotDir, snap); err != nil {
			b.logger.Warn("Failed to save screenshot", "error", err)
		} else {
			b.logger.Debug("Screenshot saved", "path", path)
		}
	}
	return snap, nil
}

func (b *BrowserAdapter) Hotkey(ctx context.Context, keys ...string) error {
	return b.keyboard.Hotkey(ctx, keys...)
}

func (b *BrowserAdapter) Write(ctx context.Context, text string) error {
	return b.keyboard.Write(ctx, text)
}

func (b *BrowserAdapter) Press(ctx context.Context, key string) error {
	return b.keyboard.Press(ctx, key)
}

func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.activePage().Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) activePage() *rod.Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

func (b *BrowserAdapter) setPage(p *rod.Page) {
	b.mu.Lock()
	b.page = p
	b.mu.Unlock()
}

func (b *BrowserAdapter) newTab(ctx context.Context) error {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("new tab: %w", err)
	}
	b.setPage(page)
	return nil
}

func (b *BrowserAdapter) closeTab(ctx context.Context) error {
	if err := b.activePage().Context(ctx).Close(); err != nil {
		return fmt.Errorf("close tab: %w", err)
	}
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	if pages.Empty() {
		return b.newTab(ctx)
	}
	next := pages.Last()
	if _, err := next.Activate(); err != nil {
		return fmt.Errorf("activate tab: %w", err)
	}
	b.setPage(next)
	return nil
}

func (b *BrowserAdapter) reload(ctx context.Context) error {
	page := b.activePage().Context(ctx)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	b.waitLoad(page)
	return nil
}

func (b *BrowserAdapter) back(ctx context.Context) error {
	page := b.activePage().Context(ctx)
	if err := page.NavigateBack(); err != nil {
		return fmt.Errorf("back: %w", err)
	}
	b.waitLoad(page)
	return nil
}

func (b *BrowserAdapter) forward(ctx context.Context) error {
	page := b.activePage().Context(ctx)
	if err := page.NavigateForward(); err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	b.waitLoad(page)
	return nil
}

func (b *BrowserAdapter) navigate(ctx context.Context, target string) error {
	page := b.activePage().Context(ctx)
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	b.waitLoad(page)
	b.logger.Debug("Navigated", "url", target)
	return nil
}

// combo holds the modifiers and taps the remaining keys.
func (b *BrowserAdapter) combo(ctx context.Context, names []string) error {
	var mods, taps []string
	for _, n := range names {
		if isModifierName(n) {
			mods = append(mods, n)
		} else {
			taps = append(taps, n)
		}
	}
	held, err := inputKeys(mods)
	if err != nil {
		return err
	}
	tapped, err := inputKeys(taps)
	if err != nil {
		return err
	}

	actions := b.activePage().Context(ctx).KeyActions().Press(held...)
	if len(tapped) > 0 {
		actions = actions.Type(tapped...)
	}
	if err := actions.Do(); err != nil {
		return fmt.Errorf("key combo %s: %w", strings.Join(names, "+"), err)
	}
	return nil
}

// typeText inserts text into the focused element; newlines become Enter.
func (b *BrowserAdapter) typeText(ctx context.Context, text string) error {
	page := b.activePage().Context(ctx)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			if err := page.InsertText(line); err != nil {
				return fmt.Errorf("insert text: %w", err)
			}
		}
		if i < len(lines)-1 {
			if err := b.combo(ctx, []string{"enter"}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *BrowserAdapter) waitLoad(page *rod.Page) {
	if err := page.Timeout(b.cfg.Timeout).WaitLoad(); err != nil {
		b.logger.Debug("Page load wait ended", "error", err)
	}
}

func downscale(raw []byte, maxWidth int) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, 0, 0, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), img.Bounds().Dx(), img.Bounds().Dy(), nil
}

func saveFrame(dir string, snap *entity.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	name := fmt.Sprintf("screenshot_%s.jpg", snap.CapturedAt.Format("20060102_150405.000000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, snap.Data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}
