package io

// Script replays a fixed key sequence through the Keyboard interface,
// one byte per poll. Used to drive the memory-mapped keyboard protocol
// from tests and embedders.
type Script struct {
	Keys []byte

	next int
}

var _ Keyboard = (*Script)(nil)

// Poll reports the next scripted key, if any remain.
func (sc *Script) Poll() (value byte, ok bool) {
	if sc.next >= len(sc.Keys) {
		return
	}

	value = sc.Keys[sc.next]
	sc.next++
	ok = true
	return
}

// Rewind restarts the script from the first key.
func (sc *Script) Rewind() {
	sc.next = 0
}
