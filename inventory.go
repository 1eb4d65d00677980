package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"clfft/device"
)

// printInventory lists every platform and its devices, one blank line after
// each platform.
func printInventory(w io.Writer, platforms []device.PlatformInfo) {
	for _, p := range platforms {
		fmt.Fprintf(w, "Found platform #%d: %s\n", p.Index, p.Name)
		for _, d := range p.Devices {
			fmt.Fprintf(w, "Found device #%d: %s\n", d.Index, d.Name)
		}
		fmt.Fprintln(w)
	}
}

// renderDeviceTable prints one row per device. The header is the first row.
func renderDeviceTable(w io.Writer, platforms []device.PlatformInfo) error {
	table := tablewriter.NewWriter(w)
	header := []string{"#", "Platform", "Vendor", "Device", "Type", "Compute units", "Memory", "Max work-group"}
	if err := table.Append(header); err != nil {
		return fmt.Errorf("appending header row: %w", err)
	}
	ordinal := 0
	for _, p := range platforms {
		for _, d := range p.Devices {
			row := []string{
				strconv.Itoa(ordinal),
				p.Name,
				p.Vendor,
				d.Name,
				d.Type,
				strconv.Itoa(d.ComputeUnits),
				formatBytes(d.GlobalMemBytes),
				strconv.Itoa(d.MaxWorkGroupSize),
			}
			if err := table.Append(row); err != nil {
				return fmt.Errorf("appending row for %s: %w", d.Name, err)
			}
			ordinal++
		}
	}
	return table.Render()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
