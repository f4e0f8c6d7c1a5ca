// Package nlsession is the routing netlink socket: dump requests and
// multicast subscriptions, with failures reported as transport errors.
package nlsession

import (
	"context"
	"math/bits"
	"time"

	"github.com/mdlayher/netlink"

	"github.com/wesleywu/nlroute/internal/routing/types"
	"github.com/wesleywu/nlroute/internal/rtnl"
)

// NETLINK_ROUTE
const protocolRoute = 0

// sizeof(struct ifinfomsg)
const linkHeaderLen = 16

// Message is one netlink message: its type and the payload after the
// netlink header.
type Message struct {
	Type uint16
	Data []byte
}

// Session is an open routing netlink socket
type Session struct {
	conn *netlink.Conn
}

// Dial opens a routing netlink socket and joins every multicast group set
// in the groups mask. A zero mask opens a socket for dump requests only.
func Dial(groups uint32) (*Session, error) {
	conn, err := netlink.Dial(protocolRoute, nil)
	if err != nil {
		return nil, &types.TransportError{Op: types.OpSocket, Cause: err}
	}

	s := newSession(conn)
	if err := s.join(groups); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func newSession(conn *netlink.Conn) *Session {
	return &Session{conn: conn}
}

// join subscribes to the groups of a legacy RTMGRP_* mask; bit n is group n+1.
func (s *Session) join(groups uint32) error {
	for groups != 0 {
		bit := bits.TrailingZeros32(groups)
		groups &^= 1 << bit
		if err := s.conn.JoinGroup(uint32(bit + 1)); err != nil {
			return &types.TransportError{Op: types.OpSubscribe, Cause: err}
		}
	}
	return nil
}

// Close releases the socket
func (s *Session) Close() error {
	return s.conn.Close()
}

// Dump requests a full dump of msgType objects of the given family and
// hands each reply to fn, in the order the kernel sent them. An error from
// fn stops the dump and is returned as is.
func (s *Session) Dump(ctx context.Context, msgType uint16, family uint8, fn func(Message) error) error {
	body := make([]byte, requestLen(msgType))
	body[0] = family

	req := netlink.Message{
		Header: netlink.Header{
			Type:  netlink.HeaderType(msgType),
			Flags: netlink.Request | netlink.Dump,
		},
		Data: body,
	}

	stop := s.abortOn(ctx)
	defer stop()

	replies, err := s.conn.Execute(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.TransportError{Op: types.OpRequest, Cause: err}
	}

	for _, m := range replies {
		if err := fn(Message{Type: uint16(m.Header.Type), Data: m.Data}); err != nil {
			return err
		}
	}
	return nil
}

// Listen delivers multicast notifications to fn until ctx is done, which
// ends the loop without error, or until a receive fails or fn returns an
// error.
func (s *Session) Listen(ctx context.Context, fn func(Message) error) error {
	stop := s.abortOn(ctx)
	defer stop()

	for {
		msgs, err := s.conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &types.TransportError{Op: types.OpReceive, Cause: err}
		}

		for _, m := range msgs {
			if err := fn(Message{Type: uint16(m.Header.Type), Data: m.Data}); err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// abortOn unblocks a pending receive once ctx is done.
func (s *Session) abortOn(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Unix(0, 0))
	})
}

func requestLen(msgType uint16) int {
	switch msgType {
	case rtnl.RTM_GETLINK:
		return linkHeaderLen
	default:
		return rtnl.HeaderLen
	}
}
