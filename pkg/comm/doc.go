// Package comm provides the ColdPlate wire protocol support.
package comm

// The ColdPlate protocol is ASCII over a 9600-8-N-1 serial link.
// Every command is a short token optionally followed by a numeric
// payload and terminated by a single carriage return. There is no reply
// framing, checksum or sequence: the host waits a fixed settle delay and
// takes whatever bytes the device produced in the meantime.
//
// Because a reply can't be correlated with its request, at most one
// command may be in flight on a connection at any time.
