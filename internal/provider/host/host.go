// Package host reports system information about the machine rampart runs
// on, so the dashboard shows live numbers instead of seed data.
package host

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/clock"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
)

const mb = 1024 * 1024

// System reads Info from the host and delegates the update calls.
type System struct {
	next     provider.System
	logger   *logging.Logger
	diskPath string
}

// New wraps next. diskPath is the mount point reported as the disk;
// empty means "/".
func New(next provider.System, diskPath string, logger *logging.Logger) *System {
	if logger == nil {
		logger = logging.Discard()
	}
	if diskPath == "" {
		diskPath = "/"
	}
	return &System{next: next, diskPath: diskPath, logger: logger.WithComponent("provider")}
}

// Info samples the host. Hostname and uptime are required; CPU, memory,
// disk and temperature are best effort.
func (s *System) Info(ctx context.Context) (model.SystemInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return model.SystemInfo{}, fmt.Errorf("host info: %w", err)
	}

	name, domain, _ := strings.Cut(hi.Hostname, ".")
	info := model.SystemInfo{
		Version:  s.firmwareVersion(ctx),
		Hostname: name,
		Domain:   domain,
		Uptime:   clock.FormatUptime(time.Duration(hi.Uptime) * time.Second),
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPU.Model = cpus[0].ModelName
	} else if err != nil {
		s.logger.Debug("cpu info unavailable", "error", err)
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		info.CPU.Usage = round1(pct[0])
	}
	info.CPU.Temperature = s.temperature(ctx)

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory = model.Capacity{
			Total: int64(vm.Total / mb),
			Used:  int64(vm.Used / mb),
			Free:  int64(vm.Available / mb),
		}
	} else {
		s.logger.Debug("memory stats unavailable", "error", err)
	}

	if du, err := disk.UsageWithContext(ctx, s.diskPath); err == nil {
		info.Disk = model.Capacity{
			Total: int64(du.Total / mb),
			Used:  int64(du.Used / mb),
			Free:  int64(du.Free / mb),
		}
	} else {
		s.logger.Debug("disk stats unavailable", "path", s.diskPath, "error", err)
	}

	return info, nil
}

// temperature returns the hottest CPU-looking sensor, or 0.
func (s *System) temperature(ctx context.Context) float64 {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return 0
	}
	var hottest float64
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if !strings.Contains(key, "core") && !strings.Contains(key, "cpu") && !strings.Contains(key, "package") {
			continue
		}
		if t.Temperature > hottest {
			hottest = t.Temperature
		}
	}
	return round1(hottest)
}

// firmwareVersion is the installed update's version, falling back to the
// rampart build version.
func (s *System) firmwareVersion(ctx context.Context) string {
	updates, err := s.next.Updates(ctx)
	if err == nil {
		if u, ok := model.InstalledUpdate(updates); ok {
			return u.Version
		}
	}
	return brand.Version
}

func (s *System) Updates(ctx context.Context) ([]model.Update, error) {
	return s.next.Updates(ctx)
}

func (s *System) InstallUpdate(ctx context.Context, id string) (string, error) {
	return s.next.InstallUpdate(ctx, id)
}

func (s *System) Reboot(ctx context.Context) error {
	return s.next.Reboot(ctx)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
