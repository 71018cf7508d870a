package physical

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultError(t *testing.T) {
	op := Op{Name: OpGet, Args: map[string]any{"url": "http://sut/devices/d-1"}}
	f := NewFault(KindTimeout, op, errors.New("deadline exceeded"))

	assert.Equal(t, "transport fault TIMEOUT: get http://sut/devices/d-1: deadline exceeded", f.Error())
	assert.Equal(t, "http://sut/devices/d-1", f.Target)
}

func TestFaultUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	f := NewFault(KindConnection, Op{Name: OpGet}, cause)

	assert.ErrorIs(t, f, cause)
}

func TestAsFaultThroughWrapping(t *testing.T) {
	f := NewFault(KindNotFound, Op{Name: OpClick, Args: map[string]any{"selector": "#missing"}}, nil)
	wrapped := fmt.Errorf("step 3: %w", f)

	got, ok := AsFault(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, "#missing", got.Target)

	_, ok = AsFault(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsTimeout(NewFault(KindTimeout, Op{Name: OpGet}, nil)))
	assert.False(t, IsTimeout(NewFault(KindConnection, Op{Name: OpGet}, nil)))
	assert.True(t, IsCanceled(NewFault(KindCanceled, Op{Name: OpGet}, nil)))
	assert.False(t, IsCanceled(errors.New("plain")))
}

func TestOpTarget(t *testing.T) {
	assert.Equal(t, "http://sut", Op{Name: OpGet, Args: map[string]any{"url": "http://sut"}}.Target())
	assert.Equal(t, "#btn", Op{Name: OpClick, Args: map[string]any{"selector": "#btn"}}.Target())
	assert.Equal(t, "", Op{Name: OpGetTitle}.Target())
}

func TestObservationAccessors(t *testing.T) {
	ob := &Observation{Values: map[string]any{
		"status":  int64(200),
		"count":   float64(3),
		"title":   "Amazon",
		"visible": true,
		"json":    map[string]any{"id": "x"},
	}}

	status, ok := ob.Int("status")
	require.True(t, ok)
	assert.Equal(t, int64(200), status)

	count, ok := ob.Int("count")
	require.True(t, ok, "integral float64 from JSON decoding counts")
	assert.Equal(t, int64(3), count)

	_, ok = ob.Int("title")
	assert.False(t, ok)

	title, ok := ob.String("title")
	require.True(t, ok)
	assert.Equal(t, "Amazon", title)

	visible, ok := ob.Bool("visible")
	require.True(t, ok)
	assert.True(t, visible)

	body, ok := ob.Map("json")
	require.True(t, ok)
	assert.Equal(t, "x", body["id"])

	_, ok = ob.Map("missing")
	assert.False(t, ok)
}
