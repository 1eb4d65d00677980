package device

// Status mirrors the numeric status codes returned by the OpenCL API.
type Status int32

const (
	StatusSuccess                         Status = 0
	StatusDeviceNotFound                  Status = -1
	StatusDeviceNotAvailable              Status = -2
	StatusCompilerNotAvailable            Status = -3
	StatusMemObjectAllocationFailure      Status = -4
	StatusOutOfResources                  Status = -5
	StatusOutOfHostMemory                 Status = -6
	StatusProfilingInfoNotAvailable       Status = -7
	StatusMemCopyOverlap                  Status = -8
	StatusImageFormatMismatch             Status = -9
	StatusImageFormatNotSupported         Status = -10
	StatusBuildProgramFailure             Status = -11
	StatusMapFailure                      Status = -12
	StatusMisalignedSubBufferOffset       Status = -13
	StatusExecStatusErrorForEventsInWait  Status = -14
	StatusInvalidValue                    Status = -30
	StatusInvalidDeviceType               Status = -31
	StatusInvalidPlatform                 Status = -32
	StatusInvalidDevice                   Status = -33
	StatusInvalidContext                  Status = -34
	StatusInvalidQueueProperties          Status = -35
	StatusInvalidCommandQueue             Status = -36
	StatusInvalidHostPtr                  Status = -37
	StatusInvalidMemObject                Status = -38
	StatusInvalidImageFormatDescriptor    Status = -39
	StatusInvalidImageSize                Status = -40
	StatusInvalidSampler                  Status = -41
	StatusInvalidBinary                   Status = -42
	StatusInvalidBuildOptions             Status = -43
	StatusInvalidProgram                  Status = -44
	StatusInvalidProgramExecutable        Status = -45
	StatusInvalidKernelName               Status = -46
	StatusInvalidKernelDefinition         Status = -47
	StatusInvalidKernel                   Status = -48
	StatusInvalidArgIndex                 Status = -49
	StatusInvalidArgValue                 Status = -50
	StatusInvalidArgSize                  Status = -51
	StatusInvalidKernelArgs               Status = -52
	StatusInvalidWorkDimension            Status = -53
	StatusInvalidWorkGroupSize            Status = -54
	StatusInvalidWorkItemSize             Status = -55
	StatusInvalidGlobalOffset             Status = -56
	StatusInvalidEventWaitList            Status = -57
	StatusInvalidEvent                    Status = -58
	StatusInvalidOperation                Status = -59
	StatusInvalidGLObject                 Status = -60
	StatusInvalidBufferSize               Status = -61
	StatusInvalidMipLevel                 Status = -62
	StatusInvalidGlobalWorkSize           Status = -63
	StatusInvalidGLSharegroupReferenceKHR Status = -1000
	StatusUnknown                         Status = -9999
)

var statusText = map[Status]string{
	StatusSuccess:                         "success",
	StatusDeviceNotFound:                  "device not found",
	StatusDeviceNotAvailable:              "device not available",
	StatusCompilerNotAvailable:            "device compiler not available",
	StatusMemObjectAllocationFailure:      "mem object allocation failure",
	StatusOutOfResources:                  "out of resources",
	StatusOutOfHostMemory:                 "out of host memory",
	StatusProfilingInfoNotAvailable:       "profiling info not available",
	StatusMemCopyOverlap:                  "mem copy overlap",
	StatusImageFormatMismatch:             "image format mismatch",
	StatusImageFormatNotSupported:         "image format not supported",
	StatusBuildProgramFailure:             "build program failure",
	StatusMapFailure:                      "map failure",
	StatusMisalignedSubBufferOffset:       "misaligned sub-buffer offset",
	StatusExecStatusErrorForEventsInWait:  "exec status error for events in wait list",
	StatusInvalidValue:                    "invalid value",
	StatusInvalidDeviceType:               "invalid device type",
	StatusInvalidPlatform:                 "invalid platform",
	StatusInvalidDevice:                   "invalid device",
	StatusInvalidContext:                  "invalid context",
	StatusInvalidQueueProperties:          "invalid queue properties",
	StatusInvalidCommandQueue:             "invalid command queue",
	StatusInvalidHostPtr:                  "invalid host ptr",
	StatusInvalidMemObject:                "invalid mem object",
	StatusInvalidImageFormatDescriptor:    "invalid image format descriptor",
	StatusInvalidImageSize:                "invalid image size",
	StatusInvalidSampler:                  "invalid sampler",
	StatusInvalidBinary:                   "invalid binary",
	StatusInvalidBuildOptions:             "invalid build options",
	StatusInvalidProgram:                  "invalid program",
	StatusInvalidProgramExecutable:        "invalid program executable",
	StatusInvalidKernelName:               "invalid kernel name",
	StatusInvalidKernelDefinition:         "invalid kernel definition",
	StatusInvalidKernel:                   "invalid kernel",
	StatusInvalidArgIndex:                 "invalid arg index",
	StatusInvalidArgValue:                 "invalid arg value",
	StatusInvalidArgSize:                  "invalid arg size",
	StatusInvalidKernelArgs:               "invalid kernel args",
	StatusInvalidWorkDimension:            "invalid work dimension",
	StatusInvalidWorkGroupSize:            "invalid work group size",
	StatusInvalidWorkItemSize:             "invalid work item size",
	StatusInvalidGlobalOffset:             "invalid global offset",
	StatusInvalidEventWaitList:            "invalid event wait list",
	StatusInvalidEvent:                    "invalid event",
	StatusInvalidOperation:                "invalid operation",
	StatusInvalidGLObject:                 "invalid gl object",
	StatusInvalidBufferSize:               "invalid buffer size",
	StatusInvalidMipLevel:                 "invalid mip level",
	StatusInvalidGlobalWorkSize:           "invalid global work size",
	StatusInvalidGLSharegroupReferenceKHR: "invalid gl sharegroup reference number",
}

// String returns the human-readable description of the status code.
func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return "invalid/unknown error code"
}
