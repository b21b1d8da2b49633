// Package shellenv manages the two pieces of shell state the deploy touches:
// PATH entries in the interactive shell startup file, and the system-wide
// CUDA profile fragment.
package shellenv

import (
	"fmt"
	"os"
	"strings"
)

// CUDAProfilePath is the profile fragment CUDA environment variables are
// written to.
const CUDAProfilePath = "/etc/profile.d/cuda.sh"

// AppendPATHEntry appends an export line for binDir to the shell startup
// file at rcPath, unless an identical line is already present. Returns
// whether a line was added.
func AppendPATHEntry(rcPath, binDir string) (bool, error) {
	line := fmt.Sprintf("export PATH=$PATH:%s", binDir)

	data, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read %s: %w", rcPath, err)
	}
	for _, existing := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(existing) == line {
			return false, nil
		}
	}

	f, err := os.OpenFile(rcPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", rcPath, err)
	}
	defer f.Close()

	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		return false, fmt.Errorf("append to %s: %w", rcPath, err)
	}
	return true, nil
}

// CUDAProfile renders the profile fragment for a toolkit version, e.g. 12.8.
func CUDAProfile(toolkitVersion string) string {
	home := "/usr/local/cuda-" + toolkitVersion
	return fmt.Sprintf(`export PATH=%s/bin${PATH:+:${PATH}}
export LD_LIBRARY_PATH=%s/lib64${LD_LIBRARY_PATH:+:${LD_LIBRARY_PATH}}
`, home, home)
}

// WriteCUDAProfile writes the fragment to path, overwriting any previous
// content, and mirrors the variables into the current process environment so
// later steps in the same run see the toolkit.
func WriteCUDAProfile(path, toolkitVersion string) error {
	if err := os.WriteFile(path, []byte(CUDAProfile(toolkitVersion)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return ExportCUDAEnv(toolkitVersion)
}

// ExportCUDAEnv sets the toolkit PATH and LD_LIBRARY_PATH in this process.
func ExportCUDAEnv(toolkitVersion string) error {
	home := "/usr/local/cuda-" + toolkitVersion

	path := os.Getenv("PATH")
	binDir := home + "/bin"
	if !containsPathEntry(path, binDir) {
		if err := os.Setenv("PATH", binDir+":"+path); err != nil {
			return err
		}
	}

	ld := os.Getenv("LD_LIBRARY_PATH")
	libDir := home + "/lib64"
	if !containsPathEntry(ld, libDir) {
		v := libDir
		if ld != "" {
			v = libDir + ":" + ld
		}
		if err := os.Setenv("LD_LIBRARY_PATH", v); err != nil {
			return err
		}
	}
	return nil
}

func containsPathEntry(pathVar, entry string) bool {
	for _, p := range strings.Split(pathVar, ":") {
		if p == entry {
			return true
		}
	}
	return false
}
