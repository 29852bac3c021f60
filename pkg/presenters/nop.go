package presenters

import "context"

// NopToast discards toasts.
type NopToast struct{}

var _ ToastPresenter = (*NopToast)(nil)

func (n *NopToast) Show(ctx context.Context, toast Toast) error { return nil }

// NopDesktop reports denied consent and swallows notifications. It stands in
// on platforms without a native notification facility.
type NopDesktop struct{}

var _ DesktopPresenter = (*NopDesktop)(nil)

func (n *NopDesktop) Permission(ctx context.Context) Permission { return PermissionDenied }

func (n *NopDesktop) RequestPermission(ctx context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (n *NopDesktop) Notify(ctx context.Context, note Note) error { return nil }

// NopNavigator ignores navigation requests.
type NopNavigator struct{}

var _ Navigator = (*NopNavigator)(nil)

func (n *NopNavigator) Focus()              {}
func (n *NopNavigator) OpenGroup(id string) {}
