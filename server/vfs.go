package server

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ErrEscapesRoot is returned by resolve when a path, after component-wise
// cleaning, would climb above the session's root directory.
var ErrEscapesRoot = errors.New("path escapes root")

// vfs is the per-session virtual filesystem. It tracks a virtual working
// directory (always absolute, always "/"-rooted) and resolves every
// client-supplied path against it before handing the result to the
// underlying afero.Fs, which is itself rooted at the real directory via
// afero.NewBasePathFs. Containment is therefore checked twice: once here,
// component by component, and again by BasePathFs's own clamping.
type vfs struct {
	fs       afero.Fs
	cwd      string
	readOnly bool
}

// newVFS roots a session at root on the real filesystem.
func newVFS(root string, readOnly bool) *vfs {
	return &vfs{
		fs:       afero.NewBasePathFs(afero.NewOsFs(), root),
		cwd:      "/",
		readOnly: readOnly,
	}
}

// resolve turns a client-supplied path (absolute or relative to the virtual
// cwd) into a clean, "/"-rooted virtual path, rejecting any ".." that would
// climb above the root.
func (v *vfs) resolve(p string) (string, error) {
	if p == "" {
		p = "."
	}
	if !strings.HasPrefix(p, "/") {
		cwd := strings.TrimSuffix(v.cwd, "/")
		p = cwd + "/" + p
	}

	components := strings.Split(p, "/")
	var stack []string
	for _, c := range components {
		switch c {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", ErrEscapesRoot
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, c)
		}
	}

	return "/" + strings.Join(stack, "/"), nil
}

func (v *vfs) Getwd() string {
	return v.cwd
}

func (v *vfs) Chdir(p string) error {
	resolved, err := v.resolve(p)
	if err != nil {
		return err
	}
	info, err := v.fs.Stat(resolved)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	v.cwd = resolved
	return nil
}

func (v *vfs) Mkdir(p string) error {
	if v.readOnly {
		return os.ErrPermission
	}
	resolved, err := v.resolve(p)
	if err != nil {
		return err
	}
	return v.fs.Mkdir(resolved, 0o755)
}

func (v *vfs) Remove(p string) error {
	if v.readOnly {
		return os.ErrPermission
	}
	resolved, err := v.resolve(p)
	if err != nil {
		return err
	}
	return v.fs.Remove(resolved)
}

func (v *vfs) RemoveDir(p string) error {
	if v.readOnly {
		return os.ErrPermission
	}
	resolved, err := v.resolve(p)
	if err != nil {
		return err
	}
	info, err := v.fs.Stat(resolved)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return v.fs.RemoveAll(resolved)
}

func (v *vfs) Rename(from, to string) error {
	if v.readOnly {
		return os.ErrPermission
	}
	fromResolved, err := v.resolve(from)
	if err != nil {
		return err
	}
	toResolved, err := v.resolve(to)
	if err != nil {
		return err
	}
	if _, err := v.fs.Stat(fromResolved); err != nil {
		return err
	}
	return v.fs.Rename(fromResolved, toResolved)
}

func (v *vfs) List(p string) ([]os.FileInfo, error) {
	resolved, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	return afero.ReadDir(v.fs, resolved)
}

// Open opens a file for RETR or STOR. STOR truncates any existing file;
// there is no resume support.
func (v *vfs) Open(p string, write bool) (afero.File, error) {
	resolved, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	if !write {
		return v.fs.Open(resolved)
	}
	if v.readOnly {
		return nil, os.ErrPermission
	}
	return v.fs.OpenFile(resolved, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (v *vfs) Stat(p string) (os.FileInfo, error) {
	resolved, err := v.resolve(p)
	if err != nil {
		return nil, err
	}
	return v.fs.Stat(resolved)
}
