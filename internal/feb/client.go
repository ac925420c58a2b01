// Package feb drives a headless browser against the federation's live-game
// site and returns the raw play-by-play widget HTML of a game.
package feb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"

	"github.com/pable/go-clutch-metrics/internal/logging"
)

const (
	// GameURL is the live-game page of a game id.
	GameURL = "https://baloncestoenvivo.feb.es/partido/%s"

	// UserAgent for browser sessions
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	keyfactsTab    = `a.btn-tab[data-action='keyfacts']`
	keyfactsWidget = `div.widget-keyfacts`
	keyfactsRows   = `div.widget-keyfacts [data-cuarto]`
)

// Options configures browser sessions.
type Options struct {
	Headless           bool
	FetchTimeout       time.Duration
	MinRequestInterval time.Duration
	WidgetMinRows      int
	WidgetStableCycles int
	WidgetPoll         time.Duration
	WidgetTimeout      time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Headless:           true,
		FetchTimeout:       60 * time.Second,
		MinRequestInterval: 2 * time.Second,
		WidgetMinRows:      10,
		WidgetStableCycles: 3,
		WidgetPoll:         600 * time.Millisecond,
		WidgetTimeout:      25 * time.Second,
	}
}

// Client fetches play-by-play widgets with rate limiting. It is safe for
// concurrent use; each fetch runs in its own browser tab.
type Client struct {
	opts Options
	log  *logging.Logger

	mu          sync.Mutex
	nextRequest time.Time

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates the browser allocator. Chrome starts on first fetch.
func NewClient(opts Options, log *logging.Logger) *Client {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1400, 1000),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		opts:     opts,
		log:      log,
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close shuts the browser down.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchKeyfacts returns the outer HTML of the game's play-by-play widget with
// every period filter enabled.
func (c *Client) FetchKeyfacts(ctx context.Context, gameID string) (string, error) {
	if err := c.waitTurn(ctx); err != nil {
		return "", err
	}
	return c.fetch(ctx, gameID)
}

// waitTurn reserves the next request slot and sleeps until it arrives.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	at := c.nextRequest
	if at.Before(now) {
		at = now
	}
	c.nextRequest = at.Add(c.opts.MinRequestInterval)
	c.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	c.log.Debug("rate limiting", "wait", wait)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "rate limit wait")
	case <-timer.C:
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, gameID string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, c.opts.FetchTimeout)
	defer cancelTimeout()

	url := fmt.Sprintf(GameURL, gameID)
	var (
		consented bool
		removed   bool
		tabbed    bool
		checked   int
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Evaluate(dismissCookiesJS, &consented),
		chromedp.Evaluate(removeOverlayJS, &removed),
		chromedp.WaitReady(keyfactsTab, chromedp.ByQuery),
		chromedp.Evaluate(clickKeyfactsJS, &tabbed),
		chromedp.WaitReady(keyfactsRows, chromedp.ByQuery),
		chromedp.Evaluate(checkAllPeriodsJS, &checked),
	)
	if err != nil {
		return "", errors.Wrapf(err, "load keyfacts for game %s", gameID)
	}
	c.log.Debug("keyfacts tab ready", "game_id", gameID, "consented", consented, "periods_checked", checked)

	rows, err := c.waitStable(browserCtx)
	if err != nil {
		return "", errors.Wrapf(err, "wait for widget of game %s", gameID)
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML(keyfactsWidget, &html, chromedp.ByQuery)); err != nil {
		return "", errors.Wrapf(err, "read widget of game %s", gameID)
	}
	if html == "" {
		return "", errors.Newf("empty widget for game %s", gameID)
	}
	c.log.Info("fetched keyfacts", "game_id", gameID, "rows", rows)
	return html, nil
}

// waitStable polls the widget row count until it settles or the widget
// timeout passes, and returns the last count.
func (c *Client) waitStable(ctx context.Context) (int, error) {
	tracker := newStability(c.opts.WidgetMinRows, c.opts.WidgetStableCycles)
	deadline := time.Now().Add(c.opts.WidgetTimeout)
	ticker := time.NewTicker(c.opts.WidgetPoll)
	defer ticker.Stop()

	for {
		var n int
		if err := chromedp.Run(ctx, chromedp.Evaluate(countRowsJS, &n)); err != nil {
			return 0, err
		}
		if tracker.observe(n) {
			return n, nil
		}
		if time.Now().After(deadline) {
			c.log.Warn("widget did not stabilise", "rows", n)
			return n, nil
		}
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-ticker.C:
		}
	}
}

// stability tracks consecutive polls with an unchanged row count.
type stability struct {
	minRows int
	cycles  int
	last    int
	same    int
}

func newStability(minRows, cycles int) *stability {
	return &stability{minRows: minRows, cycles: max(cycles, 1), last: -1}
}

// observe records a poll and reports whether the widget is stable.
func (s *stability) observe(n int) bool {
	if n == s.last {
		s.same++
	} else {
		s.last, s.same = n, 0
	}
	return n >= s.minRows && s.same >= s.cycles
}

const dismissCookiesJS = `(() => {
  const wanted = ["CONSENTIR TODO", "ACEPTAR TODO", "ACEPTO", "ACEPTAR"];
  const norm = (b) => (b.innerText || b.textContent || "").trim().toUpperCase();
  const buttons = Array.from(document.querySelectorAll("button, a[role='button']"));
  let btn = buttons.find((b) => wanted.includes(norm(b)));
  if (!btn) btn = buttons.find((b) => norm(b) === "RECHAZAR TODO");
  if (!btn) return false;
  btn.click();
  return true;
})()`

const removeOverlayJS = `(() => {
  const nodes = document.querySelectorAll(".stpd_cmp_wrapper");
  nodes.forEach((n) => n.remove());
  return nodes.length > 0;
})()`

const clickKeyfactsJS = `(() => {
  const tab = document.querySelector("` + keyfactsTab + `");
  if (!tab) return false;
  tab.click();
  return true;
})()`

const checkAllPeriodsJS = `(() => {
  let n = 0;
  document.querySelectorAll("div.selector.inline.de.checkboxes input.checkbox").forEach((cb) => {
    if (!cb.checked) { cb.click(); n++; }
  });
  return n;
})()`

const countRowsJS = `document.querySelectorAll("` + keyfactsRows + `").length`
