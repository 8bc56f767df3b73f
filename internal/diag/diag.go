// Package diag reports host resource information before a generation run,
// mirroring the diagnostics the container entrypoint prints on startup.
package diag

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/thaitrn/musicgen-service/internal/musicgen/genutils"
)

// Report holds a snapshot of the host resources relevant to a generation
// run: CPU for inference speed, memory for model loading, and disk for
// model weights plus generated clips.
type Report struct {
	LogicalCPUs     int
	TotalMemory     uint64
	AvailableMemory uint64
	DiskPath        string
	DiskFree        uint64
}

// Collect gathers host diagnostics. diskPath names the volume checked for
// free space, typically the output or models directory.
func Collect(diskPath string) (*Report, error) {
	cpuCount, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}

	virtualMemory, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory stats: %w", err)
	}

	report := &Report{
		LogicalCPUs:     cpuCount,
		TotalMemory:     virtualMemory.Total,
		AvailableMemory: virtualMemory.Available,
		DiskPath:        diskPath,
		DiskFree:        0,
	}

	// Disk stats are best-effort: the path may not exist until the first
	// run creates it.
	usage, diskErr := disk.Usage(diskPath)
	if diskErr == nil {
		report.DiskFree = usage.Free
	}

	return report, nil
}

// String renders the report as the multi-line banner printed before a run.
func (r *Report) String() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Logical CPUs: %d\n", r.LogicalCPUs)
	fmt.Fprintf(&builder, "Memory: %s available of %s\n",
		genutils.FormatFileSize(int64(r.AvailableMemory)),
		genutils.FormatFileSize(int64(r.TotalMemory)),
	)

	if r.DiskFree > 0 {
		fmt.Fprintf(&builder, "Disk free under %s: %s\n",
			r.DiskPath,
			genutils.FormatFileSize(int64(r.DiskFree)),
		)
	}

	return builder.String()
}
