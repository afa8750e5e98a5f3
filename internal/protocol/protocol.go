// Package protocol describes the remote operations of the panbox backend
// and the JSON envelope used to carry them over the local IPC socket.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Remote operation names, as exported by the backend on D-Bus.
const (
	MethodGetVersion                 = "getVersion"
	MethodGetLocale                  = "getLocale"
	MethodGetMountPoint              = "getMountPoint"
	MethodIsMounted                  = "isMounted"
	MethodMount                      = "mount"
	MethodUnmount                    = "unmount"
	MethodAddShare                   = "addShare"
	MethodRemoveShare                = "removeShare"
	MethodEditShare                  = "editShare"
	MethodOpenRevisionGUI            = "openRevisionGui"
	MethodShareDirectory             = "shareDirectory"
	MethodGetShares                  = "getShares"
	MethodIsRemote                   = "isRemote"
	MethodOpenProperties             = "openProperties"
	MethodShutdown                   = "shutdown"
	MethodAbout                      = "about"
	MethodGetCSPs                    = "getCSPs"
	MethodExportOwnIdentity          = "exportOwnIdentity"
	MethodGetContacts                = "getContacts"
	MethodExportContacts             = "exportContacts"
	MethodVerifyContacts             = "verifyContacts"
	MethodImportContact              = "importContact"
	MethodCreateIdentity             = "createIdentity"
	MethodDeleteIdentity             = "deleteIdentity"
	MethodResetIdentity              = "resetIdentity"
	MethodBackupIdentity             = "backupIdentity"
	MethodRestoreIdentity            = "restoreIdentity"
	MethodGetOwnIdentity             = "getOwnIdentity"
	MethodAddContact                 = "addContact"
	MethodDeleteContact              = "deleteContact"
	MethodGetShareStorageBackendType = "getShareStorageBackendType"
)

// Kind is the wire type of an argument or reply.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBool
	KindBytes
	KindStrings
	KindRows
	KindStatus
	// KindSecret is a string that must never reach a log.
	KindSecret
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindStrings:
		return "strings"
	case KindRows:
		return "rows"
	case KindStatus:
		return "status"
	case KindSecret:
		return "secret"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Method is the signature of one remote operation.
type Method struct {
	Name  string
	Args  []Kind
	Reply Kind
}

var methods = []Method{
	{Name: MethodGetVersion, Reply: KindString},
	{Name: MethodGetLocale, Reply: KindString},
	{Name: MethodGetMountPoint, Reply: KindString},
	{Name: MethodIsMounted, Reply: KindBool},
	{Name: MethodMount, Reply: KindStatus},
	{Name: MethodUnmount, Reply: KindStatus},
	{Name: MethodAddShare, Args: []Kind{KindString, KindString, KindString, KindBytes}, Reply: KindStatus},
	{Name: MethodRemoveShare, Args: []Kind{KindString, KindBool}, Reply: KindStatus},
	{Name: MethodEditShare, Args: []Kind{KindString, KindString, KindString, KindString}, Reply: KindStatus},
	{Name: MethodOpenRevisionGUI, Args: []Kind{KindString}, Reply: KindStatus},
	{Name: MethodShareDirectory, Args: []Kind{KindString}, Reply: KindStatus},
	{Name: MethodGetShares, Reply: KindStrings},
	{Name: MethodIsRemote, Reply: KindBool},
	{Name: MethodOpenProperties, Reply: KindStatus},
	{Name: MethodShutdown, Reply: KindStatus},
	{Name: MethodAbout, Reply: KindNone},
	{Name: MethodGetCSPs, Reply: KindStrings},
	{Name: MethodExportOwnIdentity, Args: []Kind{KindString}, Reply: KindStatus},
	{Name: MethodGetContacts, Reply: KindRows},
	{Name: MethodGetContacts, Args: []Kind{KindString}, Reply: KindRows},
	{Name: MethodExportContacts, Args: []Kind{KindStrings, KindString}, Reply: KindStatus},
	{Name: MethodVerifyContacts, Args: []Kind{KindString, KindSecret}, Reply: KindStatus},
	{Name: MethodImportContact, Args: []Kind{KindStrings, KindString, KindBool}, Reply: KindStatus},
	{Name: MethodCreateIdentity, Args: []Kind{KindString, KindString, KindString, KindBytes, KindString}, Reply: KindStatus},
	{Name: MethodDeleteIdentity, Reply: KindStatus},
	{Name: MethodResetIdentity, Args: []Kind{KindString, KindString, KindString, KindBytes, KindString, KindBool}, Reply: KindStatus},
	{Name: MethodBackupIdentity, Reply: KindStatus},
	{Name: MethodRestoreIdentity, Args: []Kind{KindString, KindBool}, Reply: KindStatus},
	{Name: MethodGetOwnIdentity, Reply: KindRows},
	{Name: MethodAddContact, Args: []Kind{KindString, KindString, KindString}, Reply: KindStatus},
	{Name: MethodDeleteContact, Args: []Kind{KindStrings}, Reply: KindStatus},
	{Name: MethodGetShareStorageBackendType, Args: []Kind{KindString}, Reply: KindString},
}

// Lookup finds the signature of name taking argc arguments. getContacts is
// the only overloaded operation.
func Lookup(name string, argc int) (Method, bool) {
	for _, m := range methods {
		if m.Name == name && len(m.Args) == argc {
			return m, true
		}
	}
	return Method{}, false
}

// Request is the IPC payload sent from clients to the bridge.
type Request struct {
	ID     string            `json:"id"`
	Token  string            `json:"token"`
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args,omitempty"`
}

// Response is the IPC reply emitted by the bridge. Error is set when the
// call could not be carried out; it never carries a status code.
type Response struct {
	ID          string          `json:"id"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// DecodeArgs converts raw JSON arguments into the Go values m expects:
// string, bool, []byte or []string.
func (m Method) DecodeArgs(raw []json.RawMessage) ([]interface{}, error) {
	if len(raw) != len(m.Args) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", m.Name, len(m.Args), len(raw))
	}
	out := make([]interface{}, len(raw))
	for i, kind := range m.Args {
		var err error
		switch kind {
		case KindString, KindSecret:
			var v string
			err = json.Unmarshal(raw[i], &v)
			out[i] = v
		case KindBool:
			var v bool
			err = json.Unmarshal(raw[i], &v)
			out[i] = v
		case KindBytes:
			var v []byte
			err = json.Unmarshal(raw[i], &v)
			out[i] = v
		case KindStrings:
			var v []string
			err = json.Unmarshal(raw[i], &v)
			if v == nil {
				v = []string{}
			}
			out[i] = v
		default:
			err = fmt.Errorf("unsupported argument kind %s", kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", m.Name, i, err)
		}
	}
	return out, nil
}

// Mask returns a copy of args with every password and secret position
// replaced by asterisks of the same length.
func (m Method) Mask(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		out[i] = arg
		if i < len(m.Args) && m.Args[i] != KindBytes && m.Args[i] != KindSecret {
			continue
		}
		switch v := arg.(type) {
		case []byte:
			out[i] = strings.Repeat("*", len(v))
		case string:
			out[i] = strings.Repeat("*", len(v))
		case nil:
		default:
			out[i] = "***"
		}
	}
	return out
}

// MaskArgs masks args by the signature of name. Arguments of unknown
// operations are masked entirely.
func MaskArgs(name string, args []interface{}) []interface{} {
	m, _ := Lookup(name, len(args))
	return m.Mask(args)
}

// NewReply returns a pointer suitable for storing the reply of m, or nil
// when m returns nothing.
func (m Method) NewReply() interface{} {
	switch m.Reply {
	case KindString:
		return new(string)
	case KindBool:
		return new(bool)
	case KindStrings:
		return new([]string)
	case KindRows:
		return new([][]string)
	case KindStatus:
		return new(uint8)
	default:
		return nil
	}
}
