package oscnet

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"
)

// NewMessage builds an OSC message with string arguments.
func NewMessage(address string, values ...string) *osc.Message {
	msg := osc.NewMessage(address)
	for _, v := range values {
		msg.Append(v)
	}
	return msg
}

// Send delivers one OSC message to host:port.
func Send(host string, port int, address string, values ...string) error {
	client := osc.NewClient(host, port)
	if err := client.Send(NewMessage(address, values...)); err != nil {
		return fmt.Errorf("failed to send %s to %s:%d: %w", address, host, port, err)
	}
	return nil
}
