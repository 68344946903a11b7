package vm

import "errors"

var (
	errImageTooLarge     = errors.New("vm: program image exceeds 256 bytes")
	errProgramFinished   = errors.New("vm: program finished")
	errSegmentationFault = errors.New("vm: segmentation fault")
	errDivisionByZero    = errors.New("vm: division by zero")
)
