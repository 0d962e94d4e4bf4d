package comport

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"go.bug.st/serial"
)

// portNumber matches the trailing number of names like COM7, /dev/ttyACM0
// or /dev/ttyUSB1.
var portNumber = regexp.MustCompile(`(?:COM|tty[A-Za-z]*)(\d+)$`)

// Lister returns the serial port names present on the host.
type Lister func() ([]string, error)

// SystemPorts lists the host's serial ports.
var SystemPorts Lister = serial.GetPortsList

// Discover returns the host's serial ports, sorted by name.
func Discover(list Lister) ([]string, error) {
	if list == nil {
		list = SystemPorts
	}
	ports, err := list()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}

// Suggest picks a port number to store from a list of port names: the first
// name whose trailing number is a valid port number. ok is false if none is.
func Suggest(ports []string) (n int, ok bool) {
	for _, name := range ports {
		m := portNumber.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil || !Valid(v) {
			continue
		}
		return v, true
	}
	return 0, false
}
