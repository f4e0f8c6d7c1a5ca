package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdlayher/netlink/nlenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleywu/nlroute/internal/nlsession"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

const iflaIfname = 3

func linkMessage(msgType uint16, index int32, flags uint32, name string) nlsession.Message {
	b := make([]byte, 16)
	nlenc.PutInt32(b[4:8], index)
	nlenc.PutUint32(b[8:12], flags)

	if name != "" {
		payload := append([]byte(name), 0)
		a := make([]byte, 4+len(payload))
		nlenc.PutUint16(a[0:2], uint16(len(a)))
		nlenc.PutUint16(a[2:4], iflaIfname)
		copy(a[4:], payload)
		for len(a)%4 != 0 {
			a = append(a, 0)
		}
		b = append(b, a...)
	}
	return nlsession.Message{Type: msgType, Data: b}
}

type fakeSource struct {
	messages []nlsession.Message
	err      error
	dumped   uint16
}

func (f *fakeSource) Dump(ctx context.Context, msgType uint16, family uint8, fn func(nlsession.Message) error) error {
	f.dumped = msgType
	return f.Listen(ctx, fn)
}

func (f *fakeSource) Listen(ctx context.Context, fn func(nlsession.Message) error) error {
	for _, m := range f.messages {
		if err := fn(m); err != nil {
			return err
		}
	}
	return f.err
}

type fakeRenewer struct {
	pids    map[string]int
	err     error
	renewed []string
}

func (f *fakeRenewer) Renew(link string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.renewed = append(f.renewed, link)
	return f.pids[link], nil
}

func TestCarrierOn(t *testing.T) {
	assert.True(t, CarrierOn(iffUp|iffRunning))
	assert.True(t, CarrierOn(iffUp|iffRunning|0x1000))
	assert.False(t, CarrierOn(iffUp))
	assert.False(t, CarrierOn(iffRunning))
	assert.False(t, CarrierOn(0))
}

func TestPIDFilePath(t *testing.T) {
	assert.Equal(t, "/var/run/udhcpc.eth0.pid", PIDFilePath("/var/run", "eth0"))
	assert.Equal(t, "/var/run/udhcpc.eth0_100.pid", PIDFilePath("/var/run", "eth0.100"))
	assert.Equal(t, "/tmp/x/udhcpc.br_lan_2.pid", PIDFilePath("/tmp/x", "br.lan.2"))
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		expect  int
	}{
		{"plain", "1234\n", 1234},
		{"leading space", "  42", 42},
		{"trailing garbage", "77abc", 77},
		{"garbage", "abc", 0},
		{"empty", "", 0},
		{"negative", "-5\n", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			assert.Equal(t, tt.expect, ReadPID(path))
		})
	}

	assert.Equal(t, 0, ReadPID(filepath.Join(dir, "missing.pid")))
}

func TestRenewer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PIDFilePath(dir, "eth0.5"), []byte("321\n"), 0644))
	require.NoError(t, os.WriteFile(PIDFilePath(dir, "eth2"), []byte("0\n"), 0644))

	var signalled []int
	r := &Renewer{PIDDir: dir, signal: func(pid int) error {
		signalled = append(signalled, pid)
		return nil
	}}

	pid, err := r.Renew("eth0.5")
	require.NoError(t, err)
	assert.Equal(t, 321, pid)

	pid, err = r.Renew("eth1")
	require.NoError(t, err)
	assert.Zero(t, pid)

	pid, err = r.Renew("eth2")
	require.NoError(t, err)
	assert.Zero(t, pid)

	assert.Equal(t, []int{321}, signalled)
}

func TestRenewerSignalError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(PIDFilePath(dir, "eth0"), []byte("99999"), 0644))

	r := &Renewer{PIDDir: dir, signal: func(int) error { return errors.New("no such process") }}
	pid, err := r.Renew("eth0")
	assert.Error(t, err)
	assert.Zero(t, pid)
}

func TestCarrierWatcherTransitions(t *testing.T) {
	const on = iffUp | iffRunning

	dumps := &fakeSource{messages: []nlsession.Message{
		linkMessage(rtnl.RTM_NEWLINK, 1, iffUp|0x8, "lo"),
		linkMessage(rtnl.RTM_NEWLINK, 2, on, "eth0"),
		linkMessage(rtnl.RTM_NEWLINK, 3, iffUp, "eth1"),
	}}
	events := &fakeSource{messages: []nlsession.Message{
		// eth0 still has carrier: no renew
		linkMessage(rtnl.RTM_NEWLINK, 2, on, "eth0"),
		// eth1 gains carrier
		linkMessage(rtnl.RTM_NEWLINK, 3, on, "eth1"),
		// eth0 loses and regains carrier
		linkMessage(rtnl.RTM_NEWLINK, 2, iffUp, "eth0"),
		linkMessage(rtnl.RTM_NEWLINK, 2, on, "eth0"),
		// eth1 removed and recreated with carrier
		linkMessage(rtnl.RTM_DELLINK, 3, 0, "eth1"),
		linkMessage(rtnl.RTM_NEWLINK, 3, on, "eth1"),
		// not a link message
		{Type: rtnl.RTM_NEWROUTE, Data: make([]byte, 12)},
		// too short
		{Type: rtnl.RTM_NEWLINK, Data: []byte{0, 0}},
		// carrier without a name
		linkMessage(rtnl.RTM_NEWLINK, 4, on, ""),
	}}
	renewer := &fakeRenewer{pids: map[string]int{"eth0": 10, "eth1": 11}}

	w := NewCarrierWatcher(dumps, events, renewer, nil)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, rtnl.RTM_GETLINK, dumps.dumped)
	assert.Equal(t, []string{"eth0", "eth1", "eth0", "eth1"}, renewer.renewed)

	stats := w.Metrics().GetStats()
	assert.Equal(t, int64(4), stats.Renewals)
	assert.Equal(t, int64(1), stats.Ignored)
	assert.Equal(t, int64(1), stats.Malformed)
	assert.Equal(t, int64(12), stats.Received)
}

func TestCarrierWatcherNoClient(t *testing.T) {
	dumps := &fakeSource{messages: []nlsession.Message{
		linkMessage(rtnl.RTM_NEWLINK, 2, iffUp|iffRunning, "wan"),
	}}
	renewer := &fakeRenewer{}

	w := NewCarrierWatcher(dumps, &fakeSource{}, renewer, nil)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, []string{"wan"}, renewer.renewed)
	assert.Zero(t, w.Metrics().GetStats().Renewals)
}

func TestCarrierWatcherRenewFailure(t *testing.T) {
	dumps := &fakeSource{messages: []nlsession.Message{
		linkMessage(rtnl.RTM_NEWLINK, 2, iffUp|iffRunning, "wan"),
	}}
	renewer := &fakeRenewer{err: errors.New("permission denied")}

	w := NewCarrierWatcher(dumps, &fakeSource{}, renewer, nil)
	require.NoError(t, w.Run(context.Background()))
	assert.Zero(t, w.Metrics().GetStats().Renewals)
}

func TestCarrierWatcherSessionError(t *testing.T) {
	failure := errors.New("netlink receive: no buffer space available")

	w := NewCarrierWatcher(&fakeSource{}, &fakeSource{err: failure}, &fakeRenewer{}, nil)
	assert.ErrorIs(t, w.Run(context.Background()), failure)

	w = NewCarrierWatcher(&fakeSource{err: failure}, &fakeSource{}, &fakeRenewer{}, nil)
	assert.ErrorIs(t, w.Run(context.Background()), failure)
}
