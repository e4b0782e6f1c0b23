// Package platform holds the host collaborators the workflows and identity
// depend on: the hardware address, provisioning storage and restart.
package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
)

// ErrNoHardwareAddr is returned when no interface carries a MAC address.
var ErrNoHardwareAddr = errors.New("platform: no hardware address found")

// interfaces is swapped in tests.
var interfaces = net.Interfaces

// HardwareAddr returns the MAC of the named interface. If the name is empty
// or the interface has no address, the first non-loopback interface with a
// 6-byte address is used.
func HardwareAddr(name string) (net.HardwareAddr, error) {
	ifaces, err := interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	if name != "" {
		for _, ifc := range ifaces {
			if ifc.Name == name && len(ifc.HardwareAddr) == 6 {
				return ifc.HardwareAddr, nil
			}
		}
	}

	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(ifc.HardwareAddr) == 6 {
			return ifc.HardwareAddr, nil
		}
	}
	return nil, ErrNoHardwareAddr
}

// ProvisioningEraser removes stored network provisioning files.
type ProvisioningEraser struct {
	Paths []string
}

// Erase removes every configured path. Missing files are not errors; all
// paths are attempted and failures are joined.
func (e ProvisioningEraser) Erase() error {
	var errs []error
	for _, p := range e.Paths {
		if err := os.RemoveAll(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// CommandRestarter restarts the host by running an external command.
type CommandRestarter struct {
	Command []string
}

// Restart runs the command and waits for it to exit.
func (r CommandRestarter) Restart() error {
	if len(r.Command) == 0 {
		return errors.New("platform: no restart command configured")
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(context.Background(), r.Command[0], r.Command[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", r.Command[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", r.Command[0], err)
	}
	return nil
}
