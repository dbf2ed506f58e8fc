//go:build linux

package networkmanager

import (
	"context"
	"fmt"

	"github.com/vishvananda/netlink"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

// Interface facts come straight from the kernel via netlink rather than
// shelling out to ip(8).

func (a *Adapter) MACAddress(context.Context) (string, error) {
	link, err := netlink.LinkByName(a.iface)
	if err != nil {
		return "", fmt.Errorf("looking up %s: %w", a.iface, err)
	}
	addr := link.Attrs().HardwareAddr
	if len(addr) == 0 {
		return "", nil
	}
	return addr.String(), nil
}

func (a *Adapter) IPAddress(context.Context) (string, error) {
	link, err := netlink.LinkByName(a.iface)
	if err != nil {
		return "", fmt.Errorf("looking up %s: %w", a.iface, err)
	}
	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("listing addresses on %s: %w", a.iface, err)
	}
	// No address is an empty result, not an error.
	if len(addrs) == 0 {
		return "", nil
	}
	return addrs[0].IP.String(), nil
}

func (a *Adapter) DefaultRouteInterface(context.Context) (string, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", fmt.Errorf("listing routes: %w", err)
	}
	for _, route := range routes {
		if route.Dst != nil && route.Dst.IP != nil && !route.Dst.IP.IsUnspecified() {
			continue
		}
		if route.Dst != nil {
			if ones, _ := route.Dst.Mask.Size(); ones != 0 {
				continue
			}
		}
		link, err := netlink.LinkByIndex(route.LinkIndex)
		if err != nil {
			continue
		}
		return link.Attrs().Name, nil
	}
	return "", fmt.Errorf("no default route: %w", wifi.ErrNotAvailable)
}
