// Package status implements the status code protocol spoken by the panbox
// backend. Every mutating remote operation answers with a single byte that
// packs the reporting component into the high nibble and the outcome into
// the low nibble. In memory the pair is kept as a Code value; the packed
// byte only exists at the transport boundary.
package status

import (
	"fmt"
	"strconv"
	"strings"
)

// Component identifies the backend subsystem that produced a result.
type Component uint8

const (
	General            Component = 0b0000
	ShareManager       Component = 0b0001
	IdentityManager    Component = 0b0010
	Transport          Component = 0b0011
	Filesystem         Component = 0b0100
	Crypto             Component = 0b0101
	UI                 Component = 0b0110
	DeviceManager      Component = 0b0111
	KeyManager         Component = 0b1000
	Pairing            Component = 0b1001
	CLI                Component = 0b1010
	AddressBookManager Component = 0b1100
)

// Outcome identifies the result class of an operation.
type Outcome uint8

const (
	OK                    Outcome = 0b0000
	IllegalArgument       Outcome = 0b0001
	Unknown               Outcome = 0b0010
	DeviceExists          Outcome = 0b0011
	StorageError          Outcome = 0b0100
	ShareExists           Outcome = 0b0101
	UnrecoverableKey      Outcome = 0b0110
	SequenceNumber        Outcome = 0b0111
	ShareMetadata         Outcome = 0b1000
	ShareNotExists        Outcome = 0b1001
	ContactExists         Outcome = 0b1010
	IOError               Outcome = 0b1011
	PINVerificationFailed Outcome = 0b1100
)

const nibble = 0b1111

var componentNames = map[Component]string{
	General:            "GENERAL",
	ShareManager:       "SHARE_MANAGER",
	IdentityManager:    "IDENTITY_MANAGER",
	Transport:          "TRANSPORT",
	Filesystem:         "FILESYSTEM",
	Crypto:             "CRYPTO",
	UI:                 "UI",
	DeviceManager:      "DEVICE_MANAGER",
	KeyManager:         "KEY_MANAGER",
	Pairing:            "PAIRING",
	CLI:                "CLI",
	AddressBookManager: "ADDRESS_BOOK_MANAGER",
}

var outcomeNames = map[Outcome]string{
	OK:                    "OK",
	IllegalArgument:       "ILLEGAL_ARGUMENT",
	Unknown:               "UNKNOWN",
	DeviceExists:          "DEVICE_EXISTS",
	StorageError:          "STORAGE_ERROR",
	ShareExists:           "SHARE_EXISTS",
	UnrecoverableKey:      "UNRECOVERABLE_KEY",
	SequenceNumber:        "SEQUENCE_NUMBER",
	ShareMetadata:         "SHARE_METADATA",
	ShareNotExists:        "SHARE_NOT_EXISTS",
	ContactExists:         "CONTACT_EXISTS",
	IOError:               "IO_ERROR",
	PINVerificationFailed: "PIN_VERIFICATION_FAILED",
}

// Valid reports whether c is one of the enumerated components.
func (c Component) Valid() bool {
	_, ok := componentNames[c]
	return ok
}

// String returns the symbolic name, or "" for values outside the table.
func (c Component) String() string {
	return componentNames[c]
}

// Valid reports whether o is one of the enumerated outcomes.
func (o Outcome) Valid() bool {
	_, ok := outcomeNames[o]
	return ok
}

// String returns the symbolic name, or "" for values outside the table.
func (o Outcome) String() string {
	return outcomeNames[o]
}

// Code is a decoded status code.
type Code struct {
	Component Component
	Outcome   Outcome
}

// New builds a Code. Passing a component or outcome that is not enumerated
// is a programming error and panics.
func New(component Component, outcome Outcome) Code {
	if !component.Valid() {
		panic(fmt.Sprintf("status: invalid component %d", component))
	}
	if !outcome.Valid() {
		panic(fmt.Sprintf("status: invalid outcome %d", outcome))
	}
	return Code{Component: component, Outcome: outcome}
}

// FromByte decodes a packed status byte. It never fails: nibbles that do not
// name a known component or outcome are kept as is and render as "".
func FromByte(b uint8) Code {
	return Code{
		Component: Component((b >> 4) & nibble),
		Outcome:   Outcome(b & nibble),
	}
}

// Byte packs the code into its wire representation.
func (c Code) Byte() uint8 {
	return uint8(c.Component&nibble)<<4 | uint8(c.Outcome&nibble)
}

// IsError reports whether the outcome is anything other than OK. The
// component plays no part in the decision.
func (c Code) IsError() bool {
	return c.Outcome != OK
}

// Describe renders the diagnostic line for an error code. OK codes yield "".
func (c Code) Describe() string {
	if !c.IsError() {
		return ""
	}
	return fmt.Sprintf("%s error in component %s - error-code: %s",
		c.Outcome, c.Component, strconv.FormatUint(uint64(c.Byte()), 2))
}

// String returns the symbolic COMPONENT/OUTCOME pair.
func (c Code) String() string {
	return c.Component.String() + "/" + c.Outcome.String()
}

// Err returns nil for successful codes and an *Error otherwise.
func (c Code) Err() error {
	if !c.IsError() {
		return nil
	}
	return &Error{Code: c}
}

// Parse reads the COMPONENT/OUTCOME form produced by String.
func Parse(raw string) (Code, error) {
	compName, outName, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Code{}, fmt.Errorf("status: %q is not COMPONENT/OUTCOME", raw)
	}
	var (
		code     Code
		foundC   bool
		foundOut bool
	)
	for comp, name := range componentNames {
		if strings.EqualFold(name, compName) {
			code.Component, foundC = comp, true
			break
		}
	}
	for out, name := range outcomeNames {
		if strings.EqualFold(name, outName) {
			code.Outcome, foundOut = out, true
			break
		}
	}
	if !foundC {
		return Code{}, fmt.Errorf("status: unknown component %q", compName)
	}
	if !foundOut {
		return Code{}, fmt.Errorf("status: unknown outcome %q", outName)
	}
	return code, nil
}

// Error carries a failed Code through an error return.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return e.Code.Describe()
}
