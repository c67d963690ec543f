package sim

import "log"

// HookPosBufPush marks when a message is pushed into a MsgBuffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when a message is popped from a MsgBuffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// A MsgBuffer holds the messages that arrived at a port but have not been
// retrieved by the owner.
type MsgBuffer interface {
	Named
	Hookable

	CanPush() bool
	Push(msg Msg)
	Pop() Msg
	Peek() Msg
	Capacity() int
	Size() int
}

// NewMsgBuffer creates a MsgBuffer that holds at most capacity messages.
func NewMsgBuffer(name string, capacity int) MsgBuffer {
	NameMustBeValid(name)

	if capacity <= 0 {
		log.Panicf("buffer %s must hold at least one message", name)
	}

	return &msgRing{
		name:  name,
		slots: make([]Msg, capacity),
	}
}

// msgRing stores messages in a fixed ring of slots.
type msgRing struct {
	HookableBase

	name  string
	slots []Msg
	head  int
	size  int
}

func (b *msgRing) Name() string {
	return b.name
}

func (b *msgRing) CanPush() bool {
	return b.size < len(b.slots)
}

func (b *msgRing) Push(msg Msg) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.slots[(b.head+b.size)%len(b.slots)] = msg
	b.size++

	b.invoke(HookPosBufPush, msg)
}

func (b *msgRing) Pop() Msg {
	if b.size == 0 {
		return nil
	}

	msg := b.slots[b.head]
	b.slots[b.head] = nil
	b.head = (b.head + 1) % len(b.slots)
	b.size--

	b.invoke(HookPosBufPop, msg)

	return msg
}

func (b *msgRing) Peek() Msg {
	if b.size == 0 {
		return nil
	}

	return b.slots[b.head]
}

func (b *msgRing) Capacity() int {
	return len(b.slots)
}

func (b *msgRing) Size() int {
	return b.size
}

func (b *msgRing) invoke(pos *HookPos, msg Msg) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(HookCtx{
		Domain: b,
		Pos:    pos,
		Item:   msg,
	})
}
