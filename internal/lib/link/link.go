// Package link builds absolute verification links for outgoing mail.
package link

import (
	"fmt"
	"net/url"
	"strings"
)

// Verify returns the absolute URL a member clicks to redeem token. baseURL,
// when configured, wins outright. Otherwise the scheme is inferred from the
// request host: localhost and loopback are plain http, anything reachable
// from outside is assumed to sit behind TLS.
func Verify(baseURL, host, token string) string {
	path := "/member/verify?token=" + url.QueryEscape(token)

	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + path
	}

	if host == "" {
		host = "localhost:3000"
	}

	scheme := "https"
	if strings.Contains(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s%s", scheme, host, path)
}
