package node

import (
	"gaianet-deploy/internal/config"
	"gaianet-deploy/internal/system"
)

// SelectConfigURL picks the remote node config for a host class and GPU
// presence. VPS hosts and GPU-less machines get the lightweight fallback
// config; GPU laptops and desktops get progressively larger models.
func SelectConfigURL(urls config.URLs, class system.HostClass, hasGPU bool) string {
	switch class {
	case system.HostLaptop:
		if hasGPU {
			return urls.LaptopGPU
		}
	case system.HostDesktop:
		if hasGPU {
			return urls.DesktopGPU
		}
	}
	return urls.Fallback
}
