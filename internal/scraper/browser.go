package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserOpener launches headless Chrome through rod, or attaches to a remote
// browser when ControlURL is set.
type BrowserOpener struct {
	ControlURL  string
	SettleDelay time.Duration
}

// NewBrowserOpener builds a BrowserOpener.
func NewBrowserOpener(controlURL string, settleDelay time.Duration) *BrowserOpener {
	return &BrowserOpener{ControlURL: controlURL, SettleDelay: settleDelay}
}

func (o *BrowserOpener) Method() string { return MethodBrowser }

// Open launches (or connects to) a browser. The returned session owns it.
func (o *BrowserOpener) Open(ctx context.Context) (Session, error) {
	var (
		lnch *launcher.Launcher
		ws   = o.ControlURL
	)
	if ws == "" {
		lnch = launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := lnch.Context(ctx).Launch()
		if err != nil {
			lnch.Cleanup()
			return nil, eris.Wrap(err, "scraper: launch browser")
		}
		ws = u
	}

	root := rod.New().ControlURL(ws)
	if err := root.Connect(); err != nil {
		if lnch != nil {
			lnch.Kill()
			lnch.Cleanup()
		}
		return nil, eris.Wrap(err, "scraper: connect browser")
	}

	s := &browserSession{root: root, browser: root, launcher: lnch, settle: o.SettleDelay}
	if lnch == nil {
		// shared remote browser: isolate cookies and storage per scrape
		incognito, err := root.Incognito()
		if err != nil {
			_ = s.Close()
			return nil, eris.Wrap(err, "scraper: incognito context")
		}
		s.browser = incognito
	}
	return s, nil
}

type browserSession struct {
	root     *rod.Browser
	browser  *rod.Browser
	launcher *launcher.Launcher
	settle   time.Duration
}

func (s *browserSession) LoadPage(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, eris.Wrap(err, "scraper: open tab")
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			zap.L().Debug("scraper: close tab", zap.String("url", url), zap.Error(cerr))
		}
	}()

	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := page.Context(loadCtx)
	if err := p.Navigate(url); err != nil {
		return nil, eris.Wrapf(err, "scraper: navigate %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, eris.Wrapf(err, "scraper: wait load %s", url)
	}

	if s.settle > 0 {
		select {
		case <-loadCtx.Done():
			return nil, eris.Wrapf(loadCtx.Err(), "scraper: settle %s", url)
		case <-time.After(s.settle):
		}
	}

	html, err := p.HTML()
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: read DOM %s", url)
	}
	return &Page{URL: url, HTML: html}, nil
}

func (s *browserSession) Close() error {
	var err error
	if s.launcher != nil {
		err = s.root.Close()
		s.launcher.Kill()
		s.launcher.Cleanup()
		return err
	}
	if s.browser != s.root {
		err = s.browser.Close()
	}
	return err
}
