// Package sysinfo collects host metrics for the /system command: uptime,
// memory, CPU load, and root-filesystem usage. Everything is read from
// procfs and statfs; the proc and root paths are fields so tests can
// point the collector at fixtures.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ndrozd/homebot/internal/domain"
)

// cpuSampleGap is the pause between the two /proc/stat reads used to
// derive a usage percentage.
const cpuSampleGap = 100 * time.Millisecond

// Collector reads host metrics. The zero value is not usable; construct
// with New.
type Collector struct {
	procDir   string
	rootDir   string
	sampleGap time.Duration
}

// New returns a collector reading from the live /proc and the root
// filesystem.
func New() *Collector {
	return &Collector{procDir: "/proc", rootDir: "/", sampleGap: cpuSampleGap}
}

// Snapshot gathers a point-in-time view of the host. Individual probes
// degrade to zero values on failure; only a fully failed snapshot
// returns an error.
func (c *Collector) Snapshot(ctx context.Context) (domain.SystemInfo, error) {
	info := domain.SystemInfo{}
	var failures int

	if up, err := c.uptime(); err == nil {
		info.Uptime = up
	} else {
		failures++
	}
	if mem, err := c.memory(); err == nil {
		info.Memory = mem
	} else {
		failures++
	}
	if cpu, err := c.cpuUsage(ctx); err == nil {
		info.CPUUsage = cpu
	} else {
		failures++
	}
	if disk, err := c.disk(); err == nil {
		info.Disk = disk
	} else {
		failures++
	}

	if failures == 4 {
		return info, fmt.Errorf("sysinfo: all probes failed")
	}
	return info, nil
}

func (c *Collector) uptime() (time.Duration, error) {
	data, err := os.ReadFile(filepath.Join(c.procDir, "uptime"))
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("sysinfo: malformed uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (c *Collector) memory() (domain.MemoryInfo, error) {
	data, err := os.ReadFile(filepath.Join(c.procDir, "meminfo"))
	if err != nil {
		return domain.MemoryInfo{}, err
	}

	var totalKB, freeKB, availKB int64
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB = meminfoKB(line)
		case strings.HasPrefix(line, "MemFree:"):
			freeKB = meminfoKB(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			availKB = meminfoKB(line)
		}
	}
	if totalKB == 0 {
		return domain.MemoryInfo{}, fmt.Errorf("sysinfo: MemTotal missing")
	}

	// MemAvailable is the kernel's better estimate of usable memory;
	// fall back to MemFree on old kernels.
	effectiveFree := availKB
	if effectiveFree == 0 {
		effectiveFree = freeKB
	}

	total := totalKB * 1024
	free := effectiveFree * 1024
	return domain.MemoryInfo{Total: total, Free: free, Used: total - free}, nil
}

func meminfoKB(line string) int64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, _ := strconv.ParseInt(fields[1], 10, 64)
	return v
}

type cpuSample struct {
	idle  int64
	total int64
}

func (c *Collector) cpuUsage(ctx context.Context) (float64, error) {
	first, err := c.readCPUSample()
	if err != nil {
		return 0, err
	}

	select {
	case <-time.After(c.sampleGap):
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	second, err := c.readCPUSample()
	if err != nil {
		return 0, err
	}

	totalDiff := second.total - first.total
	idleDiff := second.idle - first.idle
	if totalDiff <= 0 {
		return 0, nil
	}
	usage := float64(totalDiff-idleDiff) / float64(totalDiff) * 100
	return usage, nil
}

func (c *Collector) readCPUSample() (cpuSample, error) {
	data, err := os.ReadFile(filepath.Join(c.procDir, "stat"))
	if err != nil {
		return cpuSample{}, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuSample{}, fmt.Errorf("sysinfo: malformed /proc/stat")
	}

	var values []int64
	for _, f := range fields[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return cpuSample{}, err
		}
		values = append(values, v)
	}
	// user nice system idle iowait irq softirq steal ...
	var sample cpuSample
	for i, v := range values {
		sample.total += v
		if i == 3 || i == 4 { // idle + iowait
			sample.idle += v
		}
	}
	return sample, nil
}

func (c *Collector) disk() (domain.DiskInfo, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(c.rootDir, &st); err != nil {
		return domain.DiskInfo{}, err
	}
	bsize := int64(st.Bsize)
	total := int64(st.Blocks) * bsize
	free := int64(st.Bavail) * bsize
	return domain.DiskInfo{Total: total, Free: free, Used: total - free}, nil
}
