package device

// DeviceInfo is a snapshot of the properties of one device.
type DeviceInfo struct {
	Index            int
	Name             string
	Vendor           string
	Type             string
	ComputeUnits     int
	GlobalMemBytes   int64
	MaxWorkGroupSize int
}

// PlatformInfo is a snapshot of one platform and its devices.
type PlatformInfo struct {
	Index   int
	Name    string
	Vendor  string
	Version string
	Devices []DeviceInfo
}

// Inventory enumerates every platform and device the backend exposes.
func Inventory(b Backend) ([]PlatformInfo, error) {
	platforms, err := b.Platforms()
	if err != nil {
		return nil, wrapStatus("clGetPlatformIDs", err)
	}
	out := make([]PlatformInfo, 0, len(platforms))
	for i, p := range platforms {
		devices, err := p.Devices()
		if err != nil {
			return nil, wrapStatus("clGetDeviceIDs", err)
		}
		info := PlatformInfo{
			Index:   i,
			Name:    p.Name(),
			Vendor:  p.Vendor(),
			Version: p.Version(),
			Devices: make([]DeviceInfo, 0, len(devices)),
		}
		for j, d := range devices {
			info.Devices = append(info.Devices, DeviceInfo{
				Index:            j,
				Name:             d.Name(),
				Vendor:           d.Vendor(),
				Type:             d.Type(),
				ComputeUnits:     d.ComputeUnits(),
				GlobalMemBytes:   d.GlobalMemBytes(),
				MaxWorkGroupSize: d.MaxWorkGroupSize(),
			})
		}
		out = append(out, info)
	}
	return out, nil
}
