package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
)

// Dispatcher turns a reconciled change into visible effects.
type Dispatcher interface {
	Dispatch(ctx context.Context, res reconcile.Result)
}

// Target is the render surface. *state.Store satisfies it.
type Target interface {
	Update(selector string, fn func(*state.Element)) bool
}

// Publisher broadcasts events. *events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.Event)
}

// Notifier is the desktop notification side-channel. *notify.Center
// satisfies it.
type Notifier interface {
	Permission() notify.Permission
	RequestPermission() bool
	Notify(title, body string) bool
}

// Sounder plays the audio cue. *notify.Bell satisfies it.
type Sounder interface {
	Play() error
}

// FocusReporter reports whether the view has focus. *notify.Focus
// satisfies it.
type FocusReporter interface {
	Focused() bool
}

// EffectRecorder counts side effects. *metrics.Metrics satisfies it.
type EffectRecorder interface {
	DispatchEffect(sync, effect string)
}

// Effect names passed to EffectRecorder.
const (
	EffectBroadcast         = "broadcast"
	EffectNotification      = "notification"
	EffectPermissionRequest = "permission_request"
	EffectSound             = "sound"
	EffectSoundFailed       = "sound_failed"
)

// Deps are shared by both dispatchers. Doc is required; the rest may be nil.
type Deps struct {
	Doc     Target
	Bus     Publisher
	Logger  *zap.Logger
	Metrics EffectRecorder
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

func (d Deps) update(selector string, fn func(*state.Element)) {
	if d.Doc == nil {
		return
	}
	d.Doc.Update(selector, fn)
}

func (d Deps) publish(sync, name string, snap reconcile.Snapshot) {
	if d.Bus != nil {
		d.Bus.Publish(events.Event{Name: name, Detail: snap.Clone()})
	}
	d.record(sync, EffectBroadcast)
}

func (d Deps) record(sync, effect string) {
	if d.Metrics != nil {
		d.Metrics.DispatchEffect(sync, effect)
	}
}
