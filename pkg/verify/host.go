package verify

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostFacts is the subset of host information logged before a run
type HostFacts struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	TotalMemory     uint64
	FreeDisk        uint64
}

// TotalMemoryMB returns total memory in MiB
func (h HostFacts) TotalMemoryMB() uint64 {
	return h.TotalMemory / (1024 * 1024)
}

// FreeDiskMB returns free space on the root filesystem in MiB
func (h HostFacts) FreeDiskMB() uint64 {
	return h.FreeDisk / (1024 * 1024)
}

// ProbeHost reads host facts through gopsutil
func ProbeHost() (HostFacts, error) {
	var facts HostFacts

	info, err := host.Info()
	if err != nil {
		return facts, fmt.Errorf("failed to read host info: %w", err)
	}
	facts.Hostname = info.Hostname
	facts.Platform = info.Platform
	facts.PlatformVersion = info.PlatformVersion

	vm, err := mem.VirtualMemory()
	if err != nil {
		return facts, fmt.Errorf("failed to read memory stats: %w", err)
	}
	facts.TotalMemory = vm.Total

	usage, err := disk.Usage("/")
	if err != nil {
		return facts, fmt.Errorf("failed to read disk usage: %w", err)
	}
	facts.FreeDisk = usage.Free

	return facts, nil
}
