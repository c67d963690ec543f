// Package mem defines the messages and port bundles that connect the levels of
// a memory hierarchy.
package mem

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/cachesim/sim"
)

var (
	accessReqByteOverhead  = 12
	accessRspByteOverhead  = 4
	controlMsgByteOverhead = 4
)

// AccessKind tells if an access reads or writes memory.
type AccessKind uint8

// All the kinds of memory access.
const (
	Read AccessKind = iota + 1
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "Read"
	case Write:
		return "Write"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// Payload describes the bytes an access carries. The Data slice is shared
// between a request and its response, so a read response fills the buffer
// that the requester provided.
type Payload struct {
	Size uint32
	Data []byte
}

// NewPayload allocates a payload of the given size.
func NewPayload(size uint32) Payload {
	return Payload{Size: size, Data: make([]byte, size)}
}

// Bytes returns the first Size bytes of the payload.
func (p Payload) Bytes() []byte {
	return p.Data[:p.Size]
}

// A MemReq asks the next level to read or write memory.
type MemReq struct {
	sim.MsgMeta

	CPUID     uint32
	ThreadID  uint32
	Timestamp uint64
	PhysAddr  uint64
	VirtAddr  uint64
	PC        uint64
	Kind      AccessKind
	Payload   Payload
}

// Meta returns the message meta.
func (r *MemReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the request with a new ID. The payload buffer is
// shared.
func (r *MemReq) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// IsRead returns true if the request reads memory.
func (r *MemReq) IsRead() bool {
	return r.Kind == Read
}

// IsWrite returns true if the request writes memory.
func (r *MemReq) IsWrite() bool {
	return r.Kind == Write
}

func (r *MemReq) String() string {
	return fmt.Sprintf("MemReq{%s %s pa=0x%x size=%d ts=%d cpu=%d}",
		r.ID, r.Kind, r.PhysAddr, r.Payload.Size, r.Timestamp, r.CPUID)
}

// MemReqBuilder can build memory requests.
type MemReqBuilder struct {
	src, dst           sim.RemotePort
	cpuID, threadID    uint32
	timestamp          uint64
	physAddr, virtAddr uint64
	pc                 uint64
	kind               AccessKind
	payload            Payload
	virtAddrSet        bool
}

// WithSrc sets the source of the request to build.
func (b MemReqBuilder) WithSrc(src sim.RemotePort) MemReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b MemReqBuilder) WithDst(dst sim.RemotePort) MemReqBuilder {
	b.dst = dst
	return b
}

// WithCPUID sets the CPU that issues the request.
func (b MemReqBuilder) WithCPUID(id uint32) MemReqBuilder {
	b.cpuID = id
	return b
}

// WithThreadID sets the thread that issues the request.
func (b MemReqBuilder) WithThreadID(id uint32) MemReqBuilder {
	b.threadID = id
	return b
}

// WithTimestamp sets the cycle at which the request is created.
func (b MemReqBuilder) WithTimestamp(ts uint64) MemReqBuilder {
	b.timestamp = ts
	return b
}

// WithPhysAddr sets the physical address of the request to build.
func (b MemReqBuilder) WithPhysAddr(addr uint64) MemReqBuilder {
	b.physAddr = addr
	return b
}

// WithVirtAddr sets the virtual address of the request to build. If not set,
// the virtual address equals the physical address.
func (b MemReqBuilder) WithVirtAddr(addr uint64) MemReqBuilder {
	b.virtAddr = addr
	b.virtAddrSet = true

	return b
}

// WithPC sets the program counter of the instruction that issues the
// request.
func (b MemReqBuilder) WithPC(pc uint64) MemReqBuilder {
	b.pc = pc
	return b
}

// WithKind sets if the request reads or writes.
func (b MemReqBuilder) WithKind(kind AccessKind) MemReqBuilder {
	b.kind = kind
	return b
}

// WithPayload sets the bytes the request carries or fills.
func (b MemReqBuilder) WithPayload(p Payload) MemReqBuilder {
	b.payload = p
	return b
}

// Build creates a new MemReq.
func (b MemReqBuilder) Build() *MemReq {
	r := &MemReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(MemReq{}).String()
	r.CPUID = b.cpuID
	r.ThreadID = b.threadID
	r.Timestamp = b.timestamp
	r.PhysAddr = b.physAddr
	r.VirtAddr = b.physAddr
	r.PC = b.pc
	r.Kind = b.kind
	r.Payload = b.payload

	if b.virtAddrSet {
		r.VirtAddr = b.virtAddr
	}

	r.TrafficBytes = accessReqByteOverhead
	if r.Kind == Write {
		r.TrafficBytes += int(r.Payload.Size)
	}

	return r
}

// A MemRsp completes a MemReq. It mirrors the request's timestamp and shares
// its payload buffer.
type MemRsp struct {
	sim.MsgMeta

	RespondTo string
	Timestamp uint64
	PhysAddr  uint64
	Kind      AccessKind
	Payload   Payload
}

// Meta returns the message meta.
func (r *MemRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the response with a new ID.
func (r *MemRsp) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// GetRspTo returns the ID of the request that the response completes.
func (r *MemRsp) GetRspTo() string {
	return r.RespondTo
}

func (r *MemRsp) String() string {
	return fmt.Sprintf("MemRsp{%s to %s %s pa=0x%x size=%d ts=%d}",
		r.ID, r.RespondTo, r.Kind, r.PhysAddr, r.Payload.Size, r.Timestamp)
}

// MemRspBuilder can build memory responses.
type MemRspBuilder struct {
	src, dst sim.RemotePort
	req      *MemReq
}

// WithSrc sets the source of the response to build.
func (b MemRspBuilder) WithSrc(src sim.RemotePort) MemRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b MemRspBuilder) WithDst(dst sim.RemotePort) MemRspBuilder {
	b.dst = dst
	return b
}

// WithReq sets the request that the response completes.
func (b MemRspBuilder) WithReq(req *MemReq) MemRspBuilder {
	b.req = req
	return b
}

// Build creates a new MemRsp.
func (b MemRspBuilder) Build() *MemRsp {
	r := &MemRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficClass = reflect.TypeOf(MemRsp{}).String()
	r.RespondTo = b.req.ID
	r.Timestamp = b.req.Timestamp
	r.PhysAddr = b.req.PhysAddr
	r.Kind = b.req.Kind
	r.Payload = b.req.Payload

	r.TrafficBytes = accessRspByteOverhead
	if r.Kind == Read {
		r.TrafficBytes += int(r.Payload.Size)
	}

	return r
}

// A SnoopReq asks an upper level about a line it may hold.
type SnoopReq struct {
	sim.MsgMeta

	Timestamp uint64
	PhysAddr  uint64
}

// Meta returns the message meta.
func (r *SnoopReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the snoop request with a new ID.
func (r *SnoopReq) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// NewSnoopReq creates a snoop request.
func NewSnoopReq(src, dst sim.RemotePort, ts, addr uint64) *SnoopReq {
	r := &SnoopReq{Timestamp: ts, PhysAddr: addr}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = src
	r.Dst = dst
	r.TrafficBytes = controlMsgByteOverhead

	return r
}

// A SnoopRsp answers a SnoopReq.
type SnoopRsp struct {
	sim.MsgMeta

	RespondTo string
	Timestamp uint64
	PhysAddr  uint64
}

// Meta returns the message meta.
func (r *SnoopRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone returns a copy of the snoop response with a new ID.
func (r *SnoopRsp) Clone() sim.Msg {
	c := *r
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// NewSnoopRsp creates a response to a snoop request.
func NewSnoopRsp(src, dst sim.RemotePort, req *SnoopReq) *SnoopRsp {
	r := &SnoopRsp{
		RespondTo: req.ID,
		Timestamp: req.Timestamp,
		PhysAddr:  req.PhysAddr,
	}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = src
	r.Dst = dst
	r.TrafficBytes = controlMsgByteOverhead

	return r
}

// A CreditMsg returns flow-control credits to the sender of a channel.
type CreditMsg struct {
	sim.MsgMeta

	Amount uint32
}

// Meta returns the message meta.
func (m *CreditMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a copy of the credit message with a new ID.
func (m *CreditMsg) Clone() sim.Msg {
	c := *m
	c.ID = sim.GetIDGenerator().Generate()

	return &c
}

// NewCreditMsg creates a message that carries the given number of credits.
func NewCreditMsg(src, dst sim.RemotePort, amount uint32) *CreditMsg {
	m := &CreditMsg{Amount: amount}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = src
	m.Dst = dst
	m.TrafficClass = reflect.TypeOf(CreditMsg{}).String()
	m.TrafficBytes = controlMsgByteOverhead

	return m
}

// SendCredit sends credits out of a credit port to its peer.
func SendCredit(port sim.Port, amount uint32) {
	port.Send(NewCreditMsg(port.AsRemote(), port.Peer(), amount))
}
