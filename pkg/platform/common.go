package platform

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// UnixPlatform implements Platform on top of the os, os/exec and syscall packages.
type UnixPlatform struct{}

func (p *UnixPlatform) MkdirAll(dir string, perm os.FileMode) error {
	return os.MkdirAll(dir, perm)
}

func (p *UnixPlatform) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (p *UnixPlatform) ReadDir(dir string) ([]os.DirEntry, error) {
	return os.ReadDir(dir)
}

func (p *UnixPlatform) RemoveAll(dir string) error {
	return os.RemoveAll(dir)
}

func (p *UnixPlatform) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (p *UnixPlatform) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (p *UnixPlatform) Open(name string) (*os.File, error) {
	return os.Open(name)
}

func (p *UnixPlatform) Create(name string) (*os.File, error) {
	return os.Create(name)
}

func (p *UnixPlatform) Pipe() (*os.File, *os.File, error) {
	return os.Pipe()
}

func (p *UnixPlatform) Environ() []string {
	return os.Environ()
}

func (p *UnixPlatform) Now() time.Time {
	return time.Now()
}

// DirExists checks if a directory exists
func (p *UnixPlatform) DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FileExists checks if a regular file exists
func (p *UnixPlatform) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (p *UnixPlatform) Kill(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}

// CreateProcessGroup puts the child in a new process group whose id is its pid.
func (p *UnixPlatform) CreateProcessGroup() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

func (p *UnixPlatform) CreateCommand(name string, args ...string) Command {
	return &ExecCommand{cmd: exec.Command(name, args...)}
}

// ExecCommand wraps exec.Cmd to implement Command interface
type ExecCommand struct {
	cmd *exec.Cmd
}

func (e *ExecCommand) Start() error {
	return e.cmd.Start()
}

func (e *ExecCommand) Wait() error {
	return e.cmd.Wait()
}

func (e *ExecCommand) Process() Process {
	if e.cmd.Process == nil {
		return nil
	}
	return &ExecProcess{process: e.cmd.Process}
}

func (e *ExecCommand) SetStdout(w io.Writer) {
	e.cmd.Stdout = w
}

func (e *ExecCommand) SetStderr(w io.Writer) {
	e.cmd.Stderr = w
}

func (e *ExecCommand) SetSysProcAttr(attr *syscall.SysProcAttr) {
	e.cmd.SysProcAttr = attr
}

func (e *ExecCommand) SetEnv(env []string) {
	e.cmd.Env = env
}

func (e *ExecCommand) SetDir(dir string) {
	e.cmd.Dir = dir
}

// ExecProcess wraps os.Process to implement Process interface
type ExecProcess struct {
	process *os.Process
}

func (p *ExecProcess) Pid() int {
	return p.process.Pid
}

func (p *ExecProcess) Kill() error {
	return p.process.Kill()
}
