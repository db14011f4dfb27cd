package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// chromeH1Spec builds a Chrome ClientHello with ALPN limited to http/1.1,
// since net/http cannot speak h2 over a utls connection.
// A fresh spec is built per connection because extensions carry handshake state.
func chromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

// newTransport returns the transport used for upstream requests.
// With fingerprint set, HTTPS handshakes present a Chrome ClientHello.
func newTransport(fingerprint bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !fingerprint {
		return transport
	}

	transport.ForceAttemptHTTP2 = false
	transport.DialTLSContext = dialChromeTLS
	return transport
}

func dialChromeTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := chromeH1Spec()
	if err != nil {
		return nil, fmt.Errorf("build tls spec: %w", err)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
