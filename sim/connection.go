package sim

import (
	"log"
	"reflect"
)

// HookPosConnStartTrans marks a connection accepting a message.
var HookPosConnStartTrans = &HookPos{Name: "Conn Start Trans"}

// HookPosConnDeliver marks a connection delivering a message.
var HookPosConnDeliver = &HookPos{Name: "Conn Deliver"}

// A Connection is responsible for delivering messages to its destination.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	Send(msg Msg) *SendError
	PeerOf(port Port) RemotePort
}

// A Wire is a point-to-point connection between exactly two ports. A message
// sent into the wire arrives at the other end after a fixed number of cycles.
type Wire struct {
	HookableBase

	name    string
	engine  EventScheduler
	freq    Freq
	latency int
	ends    []Port
}

// NewWire creates a new Wire. The latency is counted in cycles of freq.
func NewWire(
	name string,
	engine EventScheduler,
	freq Freq,
	latency int,
) *Wire {
	NameMustBeValid(name)

	if latency < 0 {
		log.Panicf("wire %s: latency cannot be negative", name)
	}

	return &Wire{
		name:    name,
		engine:  engine,
		freq:    freq,
		latency: latency,
	}
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// PlugIn connects a port to one end of the wire.
func (w *Wire) PlugIn(port Port) {
	if len(w.ends) == 2 {
		log.Panicf("wire %s: cannot connect more than two ports", w.name)
	}

	w.ends = append(w.ends, port)
	port.SetConnection(w)
}

// PeerOf returns the port on the other end of the wire.
func (w *Wire) PeerOf(port Port) RemotePort {
	other := w.otherEnd(port.AsRemote())
	if other == nil {
		log.Panicf("wire %s: port %s has no peer", w.name, port.Name())
	}

	return other.AsRemote()
}

func (w *Wire) otherEnd(p RemotePort) Port {
	if len(w.ends) != 2 {
		return nil
	}

	switch p {
	case w.ends[0].AsRemote():
		return w.ends[1]
	case w.ends[1].AsRemote():
		return w.ends[0]
	default:
		return nil
	}
}

// Send schedules the delivery of the message at the other end.
func (w *Wire) Send(msg Msg) *SendError {
	dst := w.otherEnd(msg.Meta().Src)
	if dst == nil || dst.AsRemote() != msg.Meta().Dst {
		log.Panicf("wire %s cannot carry %s from %s to %s",
			w.name, reflect.TypeOf(msg), msg.Meta().Src, msg.Meta().Dst)
	}

	if w.NumHooks() > 0 {
		w.InvokeHook(HookCtx{
			Domain: w,
			Pos:    HookPosConnStartTrans,
			Item:   msg,
		})
	}

	now := w.engine.CurrentTime()
	evt := &deliverEvent{
		EventBase: NewEventBase(w.freq.NCyclesLater(w.latency, now), w),
		msg:       msg,
		dst:       dst,
	}
	w.engine.Schedule(evt)

	return nil
}

// Handle delivers a message that has finished traveling on the wire.
func (w *Wire) Handle(e Event) error {
	evt := e.(*deliverEvent)

	if w.NumHooks() > 0 {
		w.InvokeHook(HookCtx{
			Domain: w,
			Pos:    HookPosConnDeliver,
			Item:   evt.msg,
		})
	}

	if err := evt.dst.Deliver(evt.msg); err != nil {
		log.Panicf("wire %s: port %s cannot take %s, incoming buffer full",
			w.name, evt.dst.Name(), reflect.TypeOf(evt.msg))
	}

	return nil
}

type deliverEvent struct {
	*EventBase
	msg Msg
	dst Port
}
