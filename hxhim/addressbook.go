package hxhim

import "github.com/ledgerwatch/hxhim/hxerr"

// staticAddressBook resolves ranks to dial addresses from the fixed map
// supplied in TransportOptions.Addresses.
type staticAddressBook struct {
	addresses map[int32]string
}

func (b staticAddressBook) Address(rank int32) (string, error) {
	addr, ok := b.addresses[rank]
	if !ok {
		return "", hxerr.New(hxerr.BadArg, "no address registered for rank")
	}
	return addr, nil
}
