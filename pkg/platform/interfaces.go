package platform

import (
	"io"
	"os"
	"syscall"
	"time"
)

// Platform bundles the OS operations the trainer needs so tests can swap them.
type Platform interface {
	OSOperations
	SyscallOperations
	CommandFactory
}

// OSOperations defines file system and OS-level operations
type OSOperations interface {
	MkdirAll(dir string, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
	ReadDir(dir string) ([]os.DirEntry, error)
	RemoveAll(dir string) error
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Open(name string) (*os.File, error)
	Create(name string) (*os.File, error)
	Pipe() (*os.File, *os.File, error)
	Environ() []string
	Now() time.Time

	DirExists(path string) bool
	FileExists(path string) bool
}

// SyscallOperations defines low-level system call operations
type SyscallOperations interface {
	// Kill sends sig to pid; a negative pid addresses the whole process group.
	Kill(pid int, sig syscall.Signal) error
	CreateProcessGroup() *syscall.SysProcAttr
}

// CommandFactory creates commands
type CommandFactory interface {
	CreateCommand(name string, args ...string) Command
}

// Command represents an executing command
type Command interface {
	Start() error
	Wait() error
	Process() Process
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	SetSysProcAttr(attr *syscall.SysProcAttr)
	SetEnv(env []string)
	SetDir(dir string)
}

// Process represents a running process
type Process interface {
	Pid() int
	Kill() error
}
