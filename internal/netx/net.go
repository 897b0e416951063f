// Package netx tells connectivity failures apart from errors reported by a
// reachable remote service.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsNetworkError reports whether err means the remote could not be reached
// at all: DNS failures, refused or reset connections, unreachable networks
// and dial or I/O timeouts. Errors returned by a server that answered are
// not network errors.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH,
		syscall.EHOSTUNREACH, syscall.ETIMEDOUT, syscall.ENETDOWN,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
