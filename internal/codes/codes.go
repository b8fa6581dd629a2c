package codes

import "fmt"

// ExitCodes maps well-known program exit statuses to their descriptions.
// Keys are the low 32 bits of the status so Windows NTSTATUS crash codes
// match on every GOARCH.
var ExitCodes = map[uint32]string{
	0:          "Success",
	1:          "General failure",
	3:          "Aborted (abort() or failed assertion)",
	0xFFFFFFFF: "Terminated by a signal",
	126:        "Permission denied",
	127:        "Command not found",
	130:        "Interrupted (SIGINT)",
	134:        "Aborted (SIGABRT)",
	136:        "Floating point exception (SIGFPE)",
	137:        "Killed (SIGKILL)",
	139:        "Segmentation fault (SIGSEGV)",
	0xC0000005: "Access violation",
	0xC000001D: "Illegal instruction",
	0xC0000094: "Integer division by zero",
	0xC00000FD: "Stack overflow",
	0xC0000135: "Missing DLL (check that the toolchain runtime is on PATH)",
	0xC0000139: "Entry point not found in DLL",
	0xC0000409: "Stack buffer overrun",
	0xC000013A: "Interrupted (Ctrl+C)",
}

// IsSuccess returns true if the exit code indicates a clean exit
func IsSuccess(code int) bool {
	return code == 0
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[uint32(code)]; ok {
		return msg
	}

	return "Unknown error"
}

// Describe renders an exit code with its description, in hex for NTSTATUS values
func Describe(code int) string {
	if status := uint32(code); status >= 0xC0000000 && status != 0xFFFFFFFF {
		return fmt.Sprintf("exit code 0x%X: %s", status, GetErrorMessage(code))
	}

	return fmt.Sprintf("exit code %d: %s", code, GetErrorMessage(code))
}
