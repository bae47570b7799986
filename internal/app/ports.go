package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/linescope/internal/source"
)

// ListPorts writes the enumerable serial ports to w as a table.
func ListPorts(w io.Writer, enumerate source.Enumerator) error {
	if enumerate == nil {
		enumerate = source.SerialPorts
	}
	ports, err := enumerate()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "no serial ports found")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PORT", "PRODUCT", "SERIAL", "USB ID")
	for _, p := range ports {
		usbID := ""
		if p.USB {
			usbID = p.VID + ":" + p.PID
		}
		t.Row(p.Name, p.Product, p.SerialNumber, usbID)
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}
