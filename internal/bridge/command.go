package bridge

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds any command that does not set its own.
const DefaultTimeout = 5 * time.Second

// Runner executes bridge commands. Executor is the production implementation.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) (string, error)

func (f RunnerFunc) Run(ctx context.Context, cmd Command) (string, error) {
	return f(ctx, cmd)
}

// Command is one invocation of the bridge tool. Args do not include the
// bridge executable itself.
type Command struct {
	Args    []string
	Timeout time.Duration
}

// String renders the command line the way it would be typed after the
// bridge executable name.
func (c Command) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'|&;<>*$") {
			parts[i] = strconv.Quote(a)
			continue
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// WithTimeout returns a copy of c with a different deadline.
func (c Command) WithTimeout(d time.Duration) Command {
	args := make([]string, len(c.Args))
	copy(args, c.Args)
	return Command{Args: args, Timeout: d}
}

func (c Command) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Devices lists attached devices.
func Devices() Command {
	return Command{Args: []string{"devices"}}
}

// GetProp reads a system property.
func GetProp(name string) Command {
	return Command{Args: []string{"shell", "getprop", name}}
}

// Shell runs script through the device shell; globbing and pipes are
// interpreted on the device.
func Shell(script string) Command {
	return Command{Args: []string{"shell", script}}
}

// Cat prints one device file.
func Cat(path string) Command {
	return Shell("cat " + path)
}

// Dumpsys dumps one system service.
func Dumpsys(service string, args ...string) Command {
	return Command{Args: append([]string{"shell", "dumpsys", service}, args...)}
}

// SettingsPut writes one value into the settings provider.
func SettingsPut(namespace, key, value string) Command {
	return Command{Args: []string{"shell", "settings", "put", namespace, key, value}}
}

// SetProp writes a system property.
func SetProp(name, value string) Command {
	return Command{Args: []string{"shell", "setprop", name, value}}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
