// Copyright (c) 2025 The sessionctl Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures talking to the auth service
// into short troubleshooting notes for the terminal.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindDNS
	KindRefused
	KindTLS
)

// Classify inspects err and returns the most specific Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	lower := strings.ToLower(err.Error())

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(lower, "connection refused") {
		return KindRefused
	}
	for _, marker := range []string{"tls", "x509", "certificate", "handshake"} {
		if strings.Contains(lower, marker) {
			return KindTLS
		}
	}
	return KindOther
}

// Advice returns a one-line headline and the checklist shown for kind.
func Advice(kind Kind, host string) (string, []string) {
	switch kind {
	case KindTimeout:
		return "Connection to " + host + " timed out", []string{
			"Check your internet connection",
			"Raise api.timeout if the service is slow to answer",
		}
	case KindDNS:
		return "Cannot resolve " + host, []string{
			"Check api.url in config.yaml or SESSIONCTL_API_URL",
			"Verify DNS settings and any VPN requirement",
		}
	case KindRefused:
		return host + " refused the connection", []string{
			"Make sure the auth service is running",
			"Check the port in api.url",
		}
	case KindTLS:
		return "Secure connection to " + host + " failed", []string{
			"Check your system date and time",
			"Verify proxy settings that intercept HTTPS",
		}
	default:
		return "Cannot reach " + host, []string{
			"Check your internet connection",
			"Check firewall rules for outgoing HTTPS",
		}
	}
}

// FormatNetworkError prints advice for err and returns it wrapped.
// context describes what was being attempted, e.g. "logging in".
func FormatNetworkError(err error, context, baseURL string) error {
	if err == nil {
		return nil
	}
	headline, checks := Advice(Classify(err), ExtractHostFromURL(baseURL))
	pterm.Error.Printf("%s while %s\n", headline, context)
	for _, c := range checks {
		pterm.Println("  • " + c)
	}
	pterm.Debug.Printf("Technical details: %s\n", truncate(err.Error(), 120))
	return fmt.Errorf("network error: %w", err)
}

// IsNetworkError reports whether err came from the transport rather than
// from an answer of the service.
func IsNetworkError(err error) bool {
	var netErr net.Error
	var urlErr *url.Error
	return errors.As(err, &netErr) || errors.As(err, &urlErr)
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
