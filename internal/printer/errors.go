package printer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned, before anything is written to the
	// device, when an operation is given a value outside its legal range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported is returned when the firmware in use doesn't implement
	// the requested feature.
	ErrUnsupported = errors.New("unsupported by firmware")
)

// ArgumentError describes which operation rejected which value
type ArgumentError struct {
	Op    string
	Value any
	Want  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid value %v, must be %s", e.Op, e.Value, e.Want)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// UnsupportedBarcodeError is returned by PrintBarcode when the symbology
// isn't present in the code table of the connected firmware generation.
type UnsupportedBarcodeError struct {
	Barcode  Barcode
	Firmware Firmware
}

func (e *UnsupportedBarcodeError) Error() string {
	return fmt.Sprintf("barcode %s is not supported in firmware %d", e.Barcode, int(e.Firmware))
}

func (e *UnsupportedBarcodeError) Unwrap() error {
	return ErrUnsupported
}

func invalid(op string, value any, want string) error {
	return &ArgumentError{Op: op, Value: value, Want: want}
}
