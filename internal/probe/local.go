package probe

import (
	"net"
)

// Iface is the subset of interface information the local signal needs.
type Iface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// IfaceLister enumerates the host's network interfaces.
type IfaceLister func() ([]Iface, error)

// Interfaces is the local network-presence signal.
//
// It reports present when at least one interface is up, is not a loopback
// device and carries a global unicast address. This mirrors what desktop
// platforms expose as their "online" flag: it says nothing about whether
// the internet is reachable, only whether trying is pointless.
type Interfaces struct {
	list IfaceLister
}

// NewInterfaces returns an [Interfaces] signal backed by the host's
// interfaces.
func NewInterfaces() *Interfaces {
	return &Interfaces{list: systemInterfaces}
}

// NewInterfacesFrom returns an [Interfaces] signal backed by list.
func NewInterfacesFrom(list IfaceLister) *Interfaces {
	return &Interfaces{list: list}
}

// Present reports whether the host has a usable network interface.
// An enumeration error is treated as absent.
func (i *Interfaces) Present() bool {
	ifaces, err := i.list()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		for _, addr := range iface.Addrs {
			if ip := addrIP(addr); ip != nil && ip.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}

func addrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPNet:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}

func systemInterfaces() ([]Iface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Iface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			// one broken interface should not hide the others
			continue
		}
		out = append(out, Iface{Name: iface.Name, Flags: iface.Flags, Addrs: addrs})
	}
	return out, nil
}
