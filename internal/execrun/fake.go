package execrun

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a scripted Runner for tests. Commands are matched by name; unknown
// commands succeed with empty output unless StrictLookPath is set.
type Fake struct {
	mu sync.Mutex

	// Outputs maps command name to the output Output returns for it.
	Outputs map[string]string
	// Errors maps command name to a forced error for Run and Output.
	Errors map[string]error
	// Missing lists command names LookPath cannot resolve.
	Missing []string
	// Calls records every Run and Output invocation as "name arg1 arg2 ...".
	Calls []string
	// Hook, when set, runs after each Run call is recorded and its error is
	// returned. Lets tests make a stand-in command produce side effects.
	Hook func(call string) error
}

func (f *Fake) record(name string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
}

func (f *Fake) Run(ctx context.Context, dir string, name string, args ...string) error {
	f.record(name, args)
	if err := f.Errors[name]; err != nil {
		return err
	}
	if f.Hook != nil {
		return f.Hook(strings.TrimSpace(name + " " + strings.Join(args, " ")))
	}
	return nil
}

func (f *Fake) Output(ctx context.Context, name string, args ...string) (string, error) {
	f.record(name, args)
	if err := f.Errors[name]; err != nil {
		return "", err
	}
	return f.Outputs[name], nil
}

func (f *Fake) LookPath(name string) (string, error) {
	for _, m := range f.Missing {
		if m == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return "/usr/bin/" + name, nil
}

// Called reports whether any recorded call starts with prefix. A leading
// "sudo " on the recorded call is ignored so assertions hold whether or not
// the test process runs as root.
func (f *Fake) Called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		c = strings.TrimPrefix(c, "sudo ")
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
