//go:build !windows

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// systemInterfaces reads adapters from net.Interfaces. The link type is
// inferred from sysfs on Linux and from the hardware address elsewhere.
type systemInterfaces struct {
	sysfsRoot string
}

func newSystemInterfaces() InterfaceSource {
	return systemInterfaces{sysfsRoot: "/sys/class/net"}
}

func (s systemInterfaces) Interfaces() ([]AdapterInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	adapters := make([]AdapterInfo, 0, len(ifaces))
	for _, iface := range ifaces {
		adapters = append(adapters, AdapterInfo{
			Name: iface.Name,
			IsUp: iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
			Kind: s.kind(iface),
			IPv4: interfaceIPv4(iface),
		})
	}
	return adapters, nil
}

func (s systemInterfaces) kind(iface net.Interface) AdapterKind {
	if iface.Flags&(net.FlagLoopback|net.FlagPointToPoint) != 0 {
		return AdapterOther
	}
	for _, marker := range []string{"wireless", "phy80211"} {
		if _, err := os.Stat(filepath.Join(s.sysfsRoot, iface.Name, marker)); err == nil {
			return AdapterWireless
		}
	}
	if len(iface.HardwareAddr) == 6 {
		return AdapterEthernet
	}
	return AdapterOther
}

func interfaceIPv4(iface net.Interface) string {
	addrs, err := iface.Addrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip.String()
		}
	}
	return ""
}
