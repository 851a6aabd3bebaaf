// Package test holds helpers shared by the package tests.
package test

import (
	"net"
	"sync"
	"testing"
)

var (
	addrsMu sync.Mutex
	addrs   = map[string]struct{}{}
)

// ListenAddr returns a free loopback address for a test server. An address
// is never handed out twice within a test binary.
func ListenAddr(tb testing.TB) string {
	tb.Helper()
	for {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			tb.Fatalf("listen: %v", err)
		}
		addr := l.Addr().String()
		if err := l.Close(); err != nil {
			tb.Fatalf("close listener: %v", err)
		}

		addrsMu.Lock()
		_, used := addrs[addr]
		addrs[addr] = struct{}{}
		addrsMu.Unlock()
		if !used {
			return addr
		}
	}
}
