// Package pagetitle fetches a web page and extracts a short title from it.
package pagetitle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	DefaultMaxLength = 20
	maxBodyBytes     = 1 << 20
	userAgent        = "note-bookmark-server/1.0 (+title fetcher)"
)

// ErrBlockedAddress is returned when a page resolves to a loopback,
// private or otherwise internal address.
var ErrBlockedAddress = errors.New("address not allowed")

type Fetcher struct {
	client       *http.Client
	maxLength    int
	allowPrivate bool
}

type Option func(*Fetcher)

// AllowPrivateNetworks lets the fetcher reach loopback and private hosts.
func AllowPrivateNetworks() Option {
	return func(f *Fetcher) {
		f.allowPrivate = true
	}
}

func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: timeout}
	if !f.allowPrivate {
		dialer.Control = refuseInternal
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	f.client = &http.Client{Timeout: timeout, Transport: transport}
	return f
}

// refuseInternal runs after name resolution, so it sees the address that
// is actually dialed, redirects included.
func refuseInternal(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if internalAddr(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, addrPort.Addr())
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func internalAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip)
}

// FetchTitle returns the page's <title> text cut to the first maxLength
// characters and trimmed. A page without a title yields "".
func (f *Fetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
	}

	title, err := Extract(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return Truncate(title, f.maxLength), nil
}

// Extract returns the text of the first <title> element in the document.
func Extract(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	node := findTitle(doc)
	if node == nil {
		return "", nil
	}

	var sb strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String(), nil
}

func findTitle(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTitle(c); found != nil {
			return found
		}
	}
	return nil
}

// Truncate keeps the first n characters, then trims surrounding whitespace.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.TrimSpace(string(runes))
}
