package test

import (
	"net"
	"testing"

	"github.com/matryer/is"
)

func TestListenAddr(t *testing.T) {
	is := is.New(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		addr := ListenAddr(t)
		is.True(!seen[addr])
		seen[addr] = true

		l, err := net.Listen("tcp", addr)
		is.NoErr(err)
		is.NoErr(l.Close())
	}
}
