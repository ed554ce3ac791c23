//go:build rp2040

// services/wire/uart_rp2040.go
package wire

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"pdmcode-go/errcode"
)

// OpenUART configures a hardware UART for the companion link and
// returns it as the wire port. Zero baud falls back to the uartx
// default.
func OpenUART(id string, baud uint32, tx, rx int) (*uartx.UART, error) {
	var hw *uartx.UART
	switch id {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "wire.open", Msg: id}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	}); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "wire.open", Err: err}
	}
	return hw, nil
}
