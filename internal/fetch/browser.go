package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Pages with less static text than this are assumed to render client side.
const minStaticChars = 500

// settleDelay gives client-side frameworks time to populate the DOM.
const settleDelay = 2 * time.Second

func looksClientRendered(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < minStaticChars
}

// chromeRenderer loads pages in headless Chrome. Each call starts and tears
// down its own browser process.
type chromeRenderer struct {
	timeout time.Duration
	logger  *zap.Logger
}

func (c chromeRenderer) render(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancelTab()

	tabCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()

	start := time.Now()
	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless render of %s: %w", pageURL, err)
	}

	c.logger.Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(html)),
		zap.Duration("took", time.Since(start)))
	return html, nil
}
