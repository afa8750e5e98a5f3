package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/example/panbox/internal/logging"
)

const (
	TrayName                      = "org.panbox.tray"
	TrayPath      dbus.ObjectPath = "/org/panbox/tray"
	TrayInterface                 = "org.panbox.desktop.linux.dbus.PanboxTrayInterface"

	notificationsName                 = "org.freedesktop.Notifications"
	notificationsPath dbus.ObjectPath = "/org/freedesktop/Notifications"
	notificationTimeoutMS             = int32(3000)
)

// Notifier shows desktop notifications through the freedesktop
// notification service.
type Notifier struct {
	obj  caller
	icon string
}

// NewNotifier uses conn for notifications; icon is a file path or themed
// icon name and may be empty.
func NewNotifier(conn *dbus.Conn, icon string) *Notifier {
	return &Notifier{obj: conn.Object(notificationsName, notificationsPath), icon: icon}
}

// Notify pops up summary for a few seconds.
func (n *Notifier) Notify(ctx context.Context, summary string) error {
	call := n.obj.CallWithContext(ctx, notificationsName+".Notify", 0,
		"Panbox", uint32(0), n.icon, summary, "", []string{}, map[string]dbus.Variant{}, notificationTimeoutMS)
	if call.Err != nil {
		return fmt.Errorf("show notification: %w", call.Err)
	}
	return nil
}

// trayObject is exported on TrayPath so the backend can push messages to
// the tray.
type trayObject struct {
	show func(message string)
}

func (t trayObject) ShowNotification(message string) *dbus.Error {
	logging.Debugf("backend notification: %q", message)
	t.show(message)
	return nil
}

// TrayService owns the org.panbox.tray name for the lifetime of the tray.
type TrayService struct {
	conn     *dbus.Conn
	notifier *Notifier
	once     sync.Once
}

// ServeTray claims the tray name and forwards backend notifications to the
// desktop.
func ServeTray(icon string) (*TrayService, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	svc := &TrayService{conn: conn, notifier: NewNotifier(conn, icon)}
	obj := trayObject{show: func(message string) {
		if err := svc.notifier.Notify(context.Background(), message); err != nil {
			logging.Warnf("notification failed: %v", err)
		}
	}}

	if err := conn.ExportWithMap(obj, map[string]string{"ShowNotification": "show_notification"}, TrayPath, TrayInterface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export tray object: %w", err)
	}
	reply, err := conn.RequestName(TrayName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", TrayName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, errors.New("another panbox tray already owns " + TrayName)
	}
	logging.Debugf("exported %s on %s", TrayInterface, TrayPath)
	return svc, nil
}

// Notifier returns the notifier bound to the tray's bus connection.
func (s *TrayService) Notifier() *Notifier {
	return s.notifier
}

func (s *TrayService) Close() error {
	var err error
	s.once.Do(func() {
		_, _ = s.conn.ReleaseName(TrayName)
		err = s.conn.Close()
	})
	return err
}
