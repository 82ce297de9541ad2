//go:build windows

package main

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// systemInterfaces reads adapters through GetAdaptersAddresses, which exposes
// the friendly name, operational status and IANA interface type.
type systemInterfaces struct{}

func newSystemInterfaces() InterfaceSource {
	return systemInterfaces{}
}

func (systemInterfaces) Interfaces() ([]AdapterInfo, error) {
	size := uint32(15000)
	var buf []byte
	for {
		buf = make([]byte, size)
		err := windows.GetAdaptersAddresses(windows.AF_UNSPEC,
			windows.GAA_FLAG_SKIP_ANYCAST|windows.GAA_FLAG_SKIP_MULTICAST|windows.GAA_FLAG_SKIP_DNS_SERVER,
			0, (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0])), &size)
		if err == nil {
			break
		}
		if !errors.Is(err, windows.ERROR_BUFFER_OVERFLOW) || size <= uint32(len(buf)) {
			return nil, fmt.Errorf("GetAdaptersAddresses: %w", err)
		}
	}
	if size == 0 {
		return nil, nil
	}

	var adapters []AdapterInfo
	for aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0])); aa != nil; aa = aa.Next {
		adapters = append(adapters, AdapterInfo{
			Name: windows.UTF16PtrToString(aa.FriendlyName),
			IsUp: aa.OperStatus == windows.IfOperStatusUp,
			Kind: adapterKindFromIfType(aa.IfType),
			IPv4: firstIPv4(aa.FirstUnicastAddress),
		})
	}
	return adapters, nil
}

func adapterKindFromIfType(ifType uint32) AdapterKind {
	switch ifType {
	case windows.IF_TYPE_ETHERNET_CSMACD:
		return AdapterEthernet
	case windows.IF_TYPE_IEEE80211:
		return AdapterWireless
	default:
		return AdapterOther
	}
}

func firstIPv4(ua *windows.IpAdapterUnicastAddress) string {
	for ; ua != nil; ua = ua.Next {
		if ua.Address.Sockaddr == nil || ua.Address.Sockaddr.Addr.Family != windows.AF_INET {
			continue
		}
		if ip := ua.Address.IP().To4(); ip != nil {
			return ip.String()
		}
	}
	return ""
}
