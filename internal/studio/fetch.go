package studio

import (
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// ErrBlockedAddress is returned when a remote image resolves to an address
// the service must not connect to.
var ErrBlockedAddress = errors.New("address is not public")

// sharedAddressSpace is the carrier-grade NAT range, which IsPrivate does not
// cover.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// publicAddr reports whether a may be dialed for image downloads.
func publicAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsGlobalUnicast() &&
		!a.IsPrivate() &&
		!sharedAddressSpace.Contains(a)
}

// guardConn refuses connections to non-public addresses. It runs after name
// resolution, so redirects and rebinding names are checked too.
func guardConn(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !publicAddr(a) {
		return errors.Wrapf(ErrBlockedAddress, "refusing to connect to %s", a)
	}
	return nil
}

// newFetcher returns the client used for remote images. It never goes
// through a proxy, since the proxy would be the only address checked.
func newFetcher() *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: guardConn,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: fetchTimeout, Transport: transport}
}
