package sim

import (
	"fmt"
	"log"
	"sync"
)

// HookPosPortMsgSend marks when a message is sent out from the port.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message arrives at a the given port
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieve marks when an inbound message is retrieved from the
// incoming buffer.
var HookPosPortMsgRetrieve = &HookPos{Name: "Port Msg Retrieve"}

// SendError marks a failure send or receive
type SendError struct{}

// NewSendError creates a SendError
func NewSendError() *SendError {
	return new(SendError)
}

// A Port is owned by a component and is used to plugin connections. Outgoing
// messages are handed to the connection immediately, so a port only buffers
// incoming messages.
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort
	Component() Component

	// For connection
	SetConnection(conn Connection)
	Deliver(msg Msg) *SendError

	// For component
	Connected() bool
	Peer() RemotePort
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
}

type defaultPort struct {
	HookableBase

	lock sync.Mutex
	name string
	comp Component
	conn Connection

	incomingBuf MsgBuffer
}

// NewPort creates a new port with default behavior.
func NewPort(comp Component, incomingBufCap int, name string) Port {
	NameMustBeValid(name)

	p := new(defaultPort)
	p.comp = comp
	p.incomingBuf = NewMsgBuffer(name+".IncomingBuf", incomingBufCap)
	p.name = name

	return p
}

// AsRemote returns the remote port name.
func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

// Name returns the name of the port.
func (p *defaultPort) Name() string {
	return p.name
}

// Component returns the owner component of the port.
func (p *defaultPort) Component() Component {
	return p.comp
}

// SetConnection sets which connection plugged in to this port.
func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		panic(fmt.Sprintf(
			"port %s: connection already set to %s, now connecting to %s",
			p.name, p.conn.Name(), conn.Name(),
		))
	}

	p.conn = conn
}

// Connected returns true if a connection is plugged in to the port.
func (p *defaultPort) Connected() bool {
	return p.conn != nil
}

// Peer returns the port on the other side of the connection.
func (p *defaultPort) Peer() RemotePort {
	if p.conn == nil {
		log.Panicf("port %s is not connected", p.name)
	}

	return p.conn.PeerOf(p)
}

// Send is used to send a message out from a component.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.msgMustBeValid(msg)

	if p.conn == nil {
		log.Panicf("port %s is not connected", p.name)
	}

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgSend,
			Item:   msg,
		})
	}

	return p.conn.Send(msg)
}

// Deliver is used to deliver a message to a component
func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.lock.Lock()

	if !p.incomingBuf.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incomingBuf.Size() == 0

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgRecvd,
			Item:   msg,
		})
	}

	p.incomingBuf.Push(msg)
	p.lock.Unlock()

	if p.comp != nil && wasEmpty {
		p.comp.NotifyRecv(p)
	}

	return nil
}

// RetrieveIncoming is used by the component to take a message from the
// incoming buffer
func (p *defaultPort) RetrieveIncoming() Msg {
	p.lock.Lock()
	msg := p.incomingBuf.Pop()
	p.lock.Unlock()

	if msg == nil {
		return nil
	}

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgRetrieve,
			Item:   msg,
		})
	}

	return msg
}

// PeekIncoming returns the first message in the incoming buffer without
// removing it.
func (p *defaultPort) PeekIncoming() Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.incomingBuf.Peek()
}

func (p *defaultPort) msgMustBeValid(msg Msg) {
	portMustBeMsgSrc(p, msg)
	dstMustNotBeEmpty(msg.Meta().Dst)
	srcDstMustNotBeTheSame(msg)
}

func portMustBeMsgSrc(port Port, msg Msg) {
	if port.Name() != string(msg.Meta().Src) {
		panic("sending port is not msg src")
	}
}

func dstMustNotBeEmpty(port RemotePort) {
	if port == "" {
		panic("dst is not given")
	}
}

func srcDstMustNotBeTheSame(msg Msg) {
	if msg.Meta().Src == msg.Meta().Dst {
		panic("sending back to src")
	}
}
