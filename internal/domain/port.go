package domain

import "fmt"

// PortInfo describes one enumerated serial device.
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

// String returns the device name with its USB identity when known.
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s (usb %s:%s", p.Name, p.VID, p.PID)
	if p.SerialNumber != "" {
		s += " sn " + p.SerialNumber
	}
	if p.Product != "" {
		s += " " + p.Product
	}
	return s + ")"
}
