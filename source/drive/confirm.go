package drive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airbnb-insights/utils"

	"github.com/chromedp/chromedp"
)

// ErrConfirmRequired is returned when Drive answers with its virus-scan
// interstitial and no resolver is configured
var ErrConfirmRequired = errors.New("drive returned a download confirmation page instead of CSV")

// ConfirmResolver turns a Drive confirmation page into a direct download URL
type ConfirmResolver interface {
	ResolveConfirmURL(ctx context.Context, pageURL string) (string, error)
}

// extractConfirmJS rebuilds the "Download anyway" target from the page:
// the download form with its hidden inputs, or a confirm link.
const extractConfirmJS = `
	(function() {
		var form = document.querySelector('form#download-form') || document.querySelector('form[action*="download"]');
		if (form) {
			var params = [];
			form.querySelectorAll('input[type="hidden"]').forEach(function(input) {
				params.push(encodeURIComponent(input.name) + '=' + encodeURIComponent(input.value));
			});
			var action = form.action;
			return action + (action.indexOf('?') === -1 ? '?' : '&') + params.join('&');
		}
		var link = document.querySelector('a[href*="confirm="]');
		return link ? link.href : '';
	})()
`

// BrowserConfirmResolver renders the confirmation page in headless Chrome
type BrowserConfirmResolver struct {
	timeout time.Duration
	logger  *utils.Logger
}

// NewBrowserConfirmResolver creates a resolver bounded by timeout per page
func NewBrowserConfirmResolver(timeout time.Duration, logger *utils.Logger) *BrowserConfirmResolver {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &BrowserConfirmResolver{timeout: timeout, logger: logger}
}

// ResolveConfirmURL loads pageURL and returns the confirmed download URL
func (b *BrowserConfirmResolver) ResolveConfirmURL(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()

	b.logger.Debug("Resolving Drive confirmation page: %s", pageURL)
	var target string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(extractConfirmJS, &target),
	)
	if err != nil {
		return "", fmt.Errorf("confirmation page navigation failed: %w", err)
	}
	if target == "" {
		return "", fmt.Errorf("%w: no download form found", ErrConfirmRequired)
	}
	return target, nil
}
