package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/example/panbox/internal/logging"
	"github.com/example/panbox/internal/protocol"
	"github.com/example/panbox/internal/selection"
	"github.com/example/panbox/internal/status"
)

// Attribute is one named value of the local identity.
type Attribute struct {
	Name  string
	Value string
}

// Client wraps an Invoker with one method per backend operation. Every
// mutating operation answers with a status.Code.
type Client struct {
	inv     Invoker
	timeout time.Duration
}

// NewClient returns a Client bounding every call by timeout. A zero timeout
// leaves deadlines to the caller's context.
func NewClient(inv Invoker, timeout time.Duration) *Client {
	return &Client{inv: inv, timeout: timeout}
}

func (c *Client) call(ctx context.Context, method string, reply interface{}, args ...interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if args == nil {
		args = []interface{}{}
	}
	logging.Debugf("remote call %s%v", method, protocol.MaskArgs(method, args))
	if err := c.inv.Invoke(ctx, method, args, reply); err != nil {
		logging.Debugf("remote call %s failed: %v", method, err)
		return err
	}
	return nil
}

func (c *Client) statusCall(ctx context.Context, method string, args ...interface{}) (status.Code, error) {
	var packed uint8
	if err := c.call(ctx, method, &packed, args...); err != nil {
		return status.Code{}, err
	}
	code := status.FromByte(packed)
	logging.Debugf("remote call %s returned %s", method, code)
	return code, nil
}

func (c *Client) stringCall(ctx context.Context, method string, args ...interface{}) (string, error) {
	var out string
	err := c.call(ctx, method, &out, args...)
	return out, err
}

func (c *Client) boolCall(ctx context.Context, method string) (bool, error) {
	var out bool
	err := c.call(ctx, method, &out)
	return out, err
}

func (c *Client) stringsCall(ctx context.Context, method string) ([]string, error) {
	var out []string
	if err := c.call(ctx, method, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) rowsCall(ctx context.Context, method string, args ...interface{}) ([][]string, error) {
	var rows [][]string
	if err := c.call(ctx, method, &rows, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Version(ctx context.Context) (string, error) {
	return c.stringCall(ctx, protocol.MethodGetVersion)
}

func (c *Client) Locale(ctx context.Context) (string, error) {
	return c.stringCall(ctx, protocol.MethodGetLocale)
}

func (c *Client) MountPoint(ctx context.Context) (string, error) {
	return c.stringCall(ctx, protocol.MethodGetMountPoint)
}

func (c *Client) IsMounted(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, protocol.MethodIsMounted)
}

// IsRemote reports whether the backend runs on another host, in which case
// clients must not shut it down.
func (c *Client) IsRemote(ctx context.Context) (bool, error) {
	return c.boolCall(ctx, protocol.MethodIsRemote)
}

func (c *Client) Mount(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodMount)
}

func (c *Client) Unmount(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodUnmount)
}

func (c *Client) Shutdown(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodShutdown)
}

func (c *Client) OpenProperties(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodOpenProperties)
}

// About asks the backend to show its about dialog.
func (c *Client) About(ctx context.Context) error {
	return c.call(ctx, protocol.MethodAbout, nil)
}

func (c *Client) Shares(ctx context.Context) ([]string, error) {
	return c.stringsCall(ctx, protocol.MethodGetShares)
}

// CSPs lists the storage providers a share can be backed by.
func (c *Client) CSPs(ctx context.Context) ([]string, error) {
	return c.stringsCall(ctx, protocol.MethodGetCSPs)
}

func (c *Client) AddShare(ctx context.Context, name, csp, path string, password []byte) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodAddShare, name, csp, path, password)
}

// RemoveShare removes the share name; removeDir also deletes its source
// directory.
func (c *Client) RemoveShare(ctx context.Context, name string, removeDir bool) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodRemoveShare, name, removeDir)
}

func (c *Client) EditShare(ctx context.Context, oldName, newName, newType, newPath string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodEditShare, oldName, newName, newType, newPath)
}

func (c *Client) ShareDirectory(ctx context.Context, path string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodShareDirectory, path)
}

func (c *Client) OpenRevisionGUI(ctx context.Context, path string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodOpenRevisionGUI, path)
}

// ShareStorageBackendType names the provider backing share, e.g. "Dropbox"
// or "Directory".
func (c *Client) ShareStorageBackendType(ctx context.Context, share string) (string, error) {
	return c.stringCall(ctx, protocol.MethodGetShareStorageBackendType, share)
}

func (c *Client) ExportOwnIdentity(ctx context.Context, path string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodExportOwnIdentity, path)
}

// Contacts lists the address book.
func (c *Client) Contacts(ctx context.Context) ([]selection.Item, error) {
	rows, err := c.rowsCall(ctx, protocol.MethodGetContacts)
	if err != nil {
		return nil, err
	}
	return rowsToItems(protocol.MethodGetContacts, rows)
}

// VCardContacts lists the contacts contained in the vCard file at path.
func (c *Client) VCardContacts(ctx context.Context, vcard string) ([]selection.Item, error) {
	rows, err := c.rowsCall(ctx, protocol.MethodGetContacts, vcard)
	if err != nil {
		return nil, err
	}
	return rowsToItems(protocol.MethodGetContacts, rows)
}

func (c *Client) ExportContacts(ctx context.Context, ids []string, path string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodExportContacts, nonNil(ids), path)
}

func (c *Client) VerifyContacts(ctx context.Context, vcard, pin string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodVerifyContacts, vcard, pin)
}

// ImportContacts imports the contacts ids from vcard. verified marks them
// as authenticated by a PIN check.
func (c *Client) ImportContacts(ctx context.Context, ids []string, vcard string, verified bool) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodImportContact, nonNil(ids), vcard, verified)
}

// Identity carries the values needed to create or reset the local identity.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
	Password  []byte
	Device    string
}

func (c *Client) CreateIdentity(ctx context.Context, id Identity) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodCreateIdentity, id.Email, id.FirstName, id.LastName, id.Password, id.Device)
}

// ResetIdentity replaces the local identity, keeping a backup of the old
// one when backup is true.
func (c *Client) ResetIdentity(ctx context.Context, id Identity, backup bool) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodResetIdentity, id.Email, id.FirstName, id.LastName, id.Password, id.Device, backup)
}

func (c *Client) DeleteIdentity(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodDeleteIdentity)
}

func (c *Client) BackupIdentity(ctx context.Context) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodBackupIdentity)
}

func (c *Client) RestoreIdentity(ctx context.Context, backupFile string, backupCurrent bool) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodRestoreIdentity, backupFile, backupCurrent)
}

// OwnIdentity returns the attributes of the local identity in backend order.
func (c *Client) OwnIdentity(ctx context.Context) ([]Attribute, error) {
	rows, err := c.rowsCall(ctx, protocol.MethodGetOwnIdentity)
	if err != nil {
		return nil, err
	}
	items, err := rowsToItems(protocol.MethodGetOwnIdentity, rows)
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, len(items))
	for i, item := range items {
		attrs[i] = Attribute{Name: item.ID, Value: item.Label}
	}
	return attrs, nil
}

func (c *Client) AddContact(ctx context.Context, mail, firstName, lastName string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodAddContact, mail, firstName, lastName)
}

func (c *Client) DeleteContacts(ctx context.Context, ids []string) (status.Code, error) {
	return c.statusCall(ctx, protocol.MethodDeleteContact, nonNil(ids))
}

func rowsToItems(method string, rows [][]string) ([]selection.Item, error) {
	items := make([]selection.Item, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, &CallError{Method: method, Message: fmt.Sprintf("row %d has %d columns, expected 2", i, len(row))}
		}
		items = append(items, selection.Item{ID: row[0], Label: row[1]})
	}
	return items, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
