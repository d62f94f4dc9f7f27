package notify

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	assert.Equal(t, PermissionGranted, ParsePermission(" Granted "))
	assert.Equal(t, PermissionDenied, ParsePermission("denied"))
	assert.Equal(t, PermissionDefault, ParsePermission(""))
	assert.Equal(t, PermissionDefault, ParsePermission("maybe"))
}

func TestCenter_NotifyRequiresGrant(t *testing.T) {
	c := NewCenter(PermissionDefault)
	assert.False(t, c.Notify("Low capacity", "3 slots left"))
	assert.Empty(t, c.Toasts())

	require.True(t, c.RequestPermission())
	assert.True(t, c.PendingRequest())

	var saved Permission
	c = NewCenter(PermissionDefault, WithPersist(func(p Permission) error {
		saved = p
		return nil
	}))
	c.RequestPermission()
	require.NoError(t, c.Answer(true))
	assert.Equal(t, PermissionGranted, saved)
	assert.False(t, c.PendingRequest())

	assert.True(t, c.Notify("Low capacity", "3 slots left"))
	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Low capacity", toasts[0].Title)
}

func TestCenter_RequestIgnoredOnceDecided(t *testing.T) {
	c := NewCenter(PermissionDenied)
	assert.False(t, c.RequestPermission())
	assert.False(t, c.PendingRequest())
	assert.False(t, c.Notify("x", "y"))
}

func TestCenter_AnswerKeepsPermissionWhenPersistFails(t *testing.T) {
	c := NewCenter(PermissionDefault, WithPersist(func(Permission) error {
		return errors.New("disk full")
	}))
	c.RequestPermission()
	require.Error(t, c.Answer(false))
	assert.Equal(t, PermissionDenied, c.Permission())
	assert.False(t, c.PendingRequest())
}

func TestCenter_BoundedQueueDropsOldest(t *testing.T) {
	c := NewCenter(PermissionGranted, WithMaxToasts(2))
	c.Notify("one", "")
	c.Notify("two", "")
	c.Notify("three", "")

	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "two", toasts[0].Title)
	assert.Equal(t, "three", toasts[1].Title)
}

func TestCenter_Expire(t *testing.T) {
	c := NewCenter(PermissionGranted)
	c.Notify("old", "")
	c.Expire(time.Now().Add(time.Minute), 30*time.Second)
	assert.Empty(t, c.Toasts())
}

func TestBell_PlayWritesBEL(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)
	require.NoError(t, b.Play())
	assert.Equal(t, "\a", buf.String())

	b.SetEnabled(false)
	require.NoError(t, b.Play())
	assert.Equal(t, "\a", buf.String())

	var nilBell *Bell
	assert.NoError(t, nilBell.Play())
}

func TestFocus_DefaultsFocused(t *testing.T) {
	var f Focus
	assert.True(t, f.Focused())
	assert.True(t, f.Set(false))
	assert.False(t, f.Focused())
	assert.False(t, f.Set(false))
	assert.True(t, f.Set(true))
	assert.True(t, f.Focused())
}
