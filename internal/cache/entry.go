package cache

import "time"

// Entry records how an artifact was last produced
type Entry struct {
	// Output is the absolute artifact path and the entry key
	Output string `json:"output"`

	// Fingerprint hashes the toolchain and the full compiler argv
	Fingerprint string `json:"fingerprint"`

	// Toolchain is the id of the toolchain that built the artifact
	Toolchain string `json:"toolchain"`

	// Command is the argv that produced the artifact
	Command []string `json:"command"`

	// Timestamp when the build finished
	Timestamp time.Time `json:"timestamp"`

	// ElapsedMS is the compile time of that build
	ElapsedMS int64 `json:"elapsed_ms"`
}
