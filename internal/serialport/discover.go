package serialport

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrNoMatchingPort is returned by Discover when no enumerated port matches.
var ErrNoMatchingPort = errors.New("serialport: no matching serial device")

// PortInfo describes an enumerated serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// USBMatcher selects ports by USB vendor/product id or by a product name
// fragment. Ids are compared case-insensitively as hex strings.
type USBMatcher struct {
	VID     string
	PID     string
	Product []string
}

// Match reports whether the port belongs to the described device.
func (m USBMatcher) Match(p PortInfo) bool {
	if p.IsUSB && m.VID != "" && strings.EqualFold(p.VID, m.VID) && strings.EqualFold(p.PID, m.PID) {
		return true
	}
	product := strings.ToLower(p.Product)
	for _, frag := range m.Product {
		if frag != "" && strings.Contains(product, strings.ToLower(frag)) {
			return true
		}
	}
	return false
}

// ListPorts enumerates the serial ports on this host. It is a variable so
// tests can substitute a fixed list.
var ListPorts = func() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

// Discover returns the name of the first enumerated port accepted by match.
func Discover(match func(PortInfo) bool) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if match(p) {
			return p.Name, nil
		}
	}
	return "", ErrNoMatchingPort
}
