package wifi

import "net"

// ValidateIPAddresses checks that every entry parses as an IPv4 or IPv6
// literal. On failure it returns an *InvalidIPAddressesError listing all
// offending entries, so callers can report them together before issuing any
// OS command.
func ValidateIPAddresses(addrs []string) error {
	var invalid []string
	for _, addr := range addrs {
		if net.ParseIP(addr) == nil {
			invalid = append(invalid, addr)
		}
	}
	if len(invalid) > 0 {
		return &InvalidIPAddressesError{Addresses: invalid}
	}
	return nil
}
