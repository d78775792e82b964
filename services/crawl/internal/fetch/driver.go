// Package fetch acquires rendered bestseller pages through a headless
// browser. Every call gets its own browser context so cookies and session
// state never leak between sources, and the browser process is always
// released, whatever the exit path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"bookapp/pkg/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/122.0.0.0 Safari/537.36"

// target describes where one source's bestseller list lives and which
// container signals that the list has rendered.
type target struct {
	url          string
	waitSelector string
}

var targets = map[domain.Source]target{
	domain.SourceKyobo: {
		url:          "https://www.kyobobook.co.kr/bestSellerNew/bestseller.laf?mallGb=KOR&orderClick=DAa",
		waitSelector: "ul.list_type01",
	},
	domain.SourceAladdin: {
		url:          "https://www.aladin.co.kr/shop/common/wbest.aspx?BestType=Bestseller&BranchType=1&CID=0&cnt=20&SortOrder=1",
		waitSelector: "div.ss_book_box",
	},
	domain.SourceMillie: {
		url:          "https://www.millie.co.kr/v3/today/more/best/bookstore/total",
		waitSelector: "li",
	},
}

// Config tunes browser behavior.
type Config struct {
	// NavTimeout bounds navigation plus render wait for one fetch.
	NavTimeout time.Duration
	// RenderWait bounds how long to wait for the listing container after
	// navigation completes.
	RenderWait time.Duration
	// DisableHeadless runs a visible browser, for local debugging.
	DisableHeadless bool
}

// Driver fetches rendered documents with chromedp.
type Driver struct {
	navTimeout      time.Duration
	renderWait      time.Duration
	disableHeadless bool
}

// NewDriver constructs a driver with defaults filled in.
func NewDriver(cfg Config) *Driver {
	navTimeout := cfg.NavTimeout
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	renderWait := cfg.RenderWait
	if renderWait <= 0 {
		renderWait = 20 * time.Second
	}
	return &Driver{
		navTimeout:      navTimeout,
		renderWait:      renderWait,
		disableHeadless: cfg.DisableHeadless,
	}
}

// Fetch navigates to the source's listing page and returns the rendered DOM.
// A render-wait timeout is not an error: the sites intermittently serve
// challenge pages or stall their client-side rendering, and partial data
// beats failing the run. The browser context is torn down on every path.
func (d *Driver) Fetch(ctx context.Context, src domain.Source) (*goquery.Document, error) {
	tgt, ok := targets[src]
	if !ok {
		return nil, fmt.Errorf("no fetch target for source %q", src)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Flag("headless", !d.disableHeadless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("window-size", "1920,1080"),
		// The sites serve degraded or blocked content to clients that look
		// automated.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, d.navTimeout)
	defer cancelTimeout()

	if err := chromedp.Run(browserCtx,
		hideWebdriver(),
		chromedp.Navigate(tgt.url),
	); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", src, err)
	}

	waitCtx, cancelWait := context.WithTimeout(browserCtx, d.renderWait)
	defer cancelWait()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(tgt.waitSelector, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("listing container did not render, treating as empty result",
				"source", string(src), "selector", tgt.waitSelector)
			return emptyDocument()
		}
		return nil, fmt.Errorf("wait for listing %s: %w", src, err)
	}

	var html string
	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read dom %s: %w", src, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse dom %s: %w", src, err)
	}
	return doc, nil
}

// hideWebdriver masks navigator.webdriver before any page script runs.
func hideWebdriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(
			"Object.defineProperty(navigator, 'webdriver', {get: () => undefined})",
		).Do(ctx)
		return err
	})
}

func emptyDocument() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
}
