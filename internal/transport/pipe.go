package transport

import "net"

// NewPipePair returns two Transports wired directly to each other over
// net.Pipe, for deterministic tests — grounded on the same TCPTransport
// framing, since net.Pipe's net.Conn
// satisfies every assumption TCPTransport makes about its connection.
func NewPipePair() (a, b *TCPTransport) {
	ca, cb := net.Pipe()
	return NewTCPTransport(ca), NewTCPTransport(cb)
}
