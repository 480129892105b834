package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Profile names a TLS ClientHello to present when fetching pages.
type Profile string

const (
	ProfileGo      Profile = "go" // crypto/tls, no impersonation
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileRandom  Profile = "random"
)

// clientConfig builds the uTLS config for one dial. Tests swap it to trust
// httptest certificates.
var clientConfig = func(host string) *utls.Config {
	return &utls.Config{ServerName: host}
}

var helloIDs = map[Profile]utls.ClientHelloID{
	ProfileChrome:  utls.HelloChrome_Auto,
	ProfileFirefox: utls.HelloFirefox_Auto,
	ProfileSafari:  utls.HelloSafari_Auto,
	ProfileRandom:  utls.HelloRandomizedNoALPN,
}

// Profiles lists every accepted profile name, sorted.
func Profiles() []string {
	names := []string{string(ProfileGo)}
	for p := range helloIDs {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// ParseProfile maps a configuration string to a Profile. Empty means ProfileGo.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if p == "" || p == ProfileGo {
		return ProfileGo, nil
	}
	if _, ok := helloIDs[p]; !ok {
		return "", fmt.Errorf("fingerprint: unknown profile %q (want one of %s)", s, strings.Join(Profiles(), ", "))
	}
	return p, nil
}

// Transport returns an http.RoundTripper presenting the profile's ClientHello.
// ProfileGo yields a plain clone of http.DefaultTransport. proxyFunc, when
// non-nil, becomes the transport's Proxy.
//
// Browser hellos advertise only http/1.1 over ALPN: the returned conn is a
// utls.UConn, which net/http cannot drive as HTTP/2.
func Transport(p Profile, proxyFunc func(*http.Request) (*url.URL, error)) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFunc != nil {
		transport.Proxy = proxyFunc
	}
	if p == ProfileGo || p == "" {
		return transport, nil
	}

	id, ok := helloIDs[p]
	if !ok {
		return nil, fmt.Errorf("fingerprint: unknown profile %q", p)
	}

	dialer := &net.Dialer{}
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		rawConn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		uConn, err := handshake(ctx, rawConn, host, id)
		if err != nil {
			_ = rawConn.Close()
			return nil, fmt.Errorf("fingerprint: %s handshake with %s: %w", p, host, err)
		}
		return uConn, nil
	}

	return transport, nil
}

func handshake(ctx context.Context, conn net.Conn, host string, id utls.ClientHelloID) (*utls.UConn, error) {
	cfg := clientConfig(host)

	if id == utls.HelloRandomizedNoALPN {
		uConn := utls.UClient(conn, cfg, id)
		return uConn, uConn.HandshakeContext(ctx)
	}

	// Specs hold per-connection state, so build a fresh one for every dial.
	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		return nil, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	uConn := utls.UClient(conn, cfg, utls.HelloCustom)
	if err := uConn.ApplyPreset(&spec); err != nil {
		return nil, err
	}
	return uConn, uConn.HandshakeContext(ctx)
}
