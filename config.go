package main

// Runtime defaults for the command line tool and the spectrum window.
const (
	defaultBackend   = "opencl"
	inputSampleRate  = 48000
	verifyTolerance  = 1e-4
	maxVerifySize    = 1 << 16
	viewWidth        = 1024
	viewHeight       = 384
	viewScale        = 1
	viewFloorDB      = -100.0
	viewTitle        = "clfft spectrum"
	pcm16Scale       = 0.5 / 32768.0
	stereoFrameBytes = 4
)
