package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// waitForUserLogin opens the web player login page and waits until the player stores a user token.
func (s *ServiceImpl) waitForUserLogin(ctx context.Context) (string, error) {
	logger.Info(ctx, "Opening Qobuz web player...")
	logger.Debugf(ctx, "Navigating to %s", qobuzLoginURL)

	randomHumanDelay()

	s.page.MustNavigate(qobuzLoginURL)

	randomHumanDelay()
	s.simulateHumanBehavior(ctx)

	logger.Info(ctx, "")
	logger.Info(ctx, "Please complete the login in the browser:")
	logger.Info(ctx, "")
	logger.Info(ctx, "1. Enter your Qobuz e-mail and password, or use a sign-in provider")
	logger.Info(ctx, "2. Wait until the player home page opens")
	logger.Info(ctx, "3. Do not close the browser, it closes by itself once the token is read")
	logger.Info(ctx, "")
	logger.Info(ctx, "Waiting for login to complete...")

	token, err := s.waitForLoginComplete(ctx)
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "Login completed successfully!")

	return token, nil
}

// waitForLoginComplete polls local storage until the player writes the logged in user.
func (s *ServiceImpl) waitForLoginComplete(ctx context.Context) (string, error) {
	var (
		startTime = time.Now()
		lastURL   string
	)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		if time.Since(startTime) > maxLoginWaitTime {
			return "", fmt.Errorf("%w: waited for %v", ErrLoginTimeout, maxLoginWaitTime)
		}

		if !s.isBrowserAlive(ctx) {
			return "", ErrBrowserClosed
		}

		currentURL, err := s.getCurrentURL(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to get current URL: %w", err)
		}

		if currentURL != lastURL {
			logger.Debugf(ctx, "URL changed: %s", currentURL)

			lastURL = currentURL
		}

		if err = validateLoginURL(currentURL); err != nil {
			return "", err
		}

		if isPlayerURL(currentURL) {
			token, parseErr := parseLocalUser(s.readLocalUser(ctx))
			if parseErr == nil {
				return token, nil
			}

			if !errors.Is(parseErr, ErrTokenNotFound) {
				logger.Debugf(ctx, "Stored user is not readable yet: %v", parseErr)
			}
		}

		s.simulateHumanBehavior(ctx)
		randomHumanDelay()
	}
}

// validateLoginURL checks that the page stays on Qobuz or a sign-in provider.
func validateLoginURL(currentURL string) error {
	host := hostOf(currentURL)
	if host == "" {
		// about:blank and similar pages appear while navigating.
		return nil
	}

	if matchesDomain(host, qobuzDomain) {
		return nil
	}

	for _, domain := range oauthDomains {
		if matchesDomain(host, domain) {
			return nil
		}
	}

	return fmt.Errorf("%w to: %s", ErrNavigatedAway, currentURL)
}

// isPlayerURL reports whether the page belongs to the web player origin holding the token.
func isPlayerURL(currentURL string) bool {
	return hostOf(currentURL) == "play."+qobuzDomain
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Hostname())
}

func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
