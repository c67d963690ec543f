package memaccessagent

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

type pendingRead struct {
	req      *mem.MemReq
	expected map[uint64]byte
}

// A MemAccessAgent is a Component that can help testing the cache and the the
// memory controllers by generating a large number of read and write requests.
// It keeps a model of every byte it has written and checks each read
// against it.
type MemAccessAgent struct {
	*sim.TickingComponent

	spec  Spec
	rng   *rand.Rand
	ports mem.RequesterPorts

	reqCredit    *sim.CreditCounter
	creditsGiven bool

	KnownMemValue map[uint64]byte
	pendingReads  map[string]pendingRead
	pendingWrites map[string]*mem.MemReq

	issued     int
	completed  int
	mismatches int
}

// RequesterPorts returns the ports that face the memory system.
func (a *MemAccessAgent) RequesterPorts() mem.RequesterPorts {
	return a.ports
}

// ReqCreditCounter returns the credits the agent holds for sending requests.
func (a *MemAccessAgent) ReqCreditCounter() *sim.CreditCounter {
	return a.reqCredit
}

// CreditCounters returns the credit counters of the channels the agent sends
// on.
func (a *MemAccessAgent) CreditCounters() []*sim.CreditCounter {
	return []*sim.CreditCounter{a.reqCredit}
}

// Issued returns the number of requests sent.
func (a *MemAccessAgent) Issued() int {
	return a.issued
}

// Completed returns the number of responses received.
func (a *MemAccessAgent) Completed() int {
	return a.completed
}

// NumMismatches returns the number of reads that returned unexpected data.
func (a *MemAccessAgent) NumMismatches() int {
	return a.mismatches
}

// Done tells if all the accesses have been issued and completed.
func (a *MemAccessAgent) Done() bool {
	return a.issued == a.spec.NumAccesses && a.completed == a.issued
}

// Tick updates the states of the agent and issues new read and write requests.
func (a *MemAccessAgent) Tick() bool {
	madeProgress := false

	if !a.creditsGiven {
		mem.SendCredit(a.ports.RspCreditOut, 1)
		a.creditsGiven = true
		madeProgress = true
	}

	madeProgress = a.takeCredits() || madeProgress
	madeProgress = a.takeResponses() || madeProgress

	if a.issued < a.spec.NumAccesses && a.reqCredit.Available() {
		a.tryIssue()
		madeProgress = true
	}

	return madeProgress
}

func (a *MemAccessAgent) takeCredits() bool {
	madeProgress := false

	for {
		msg := a.ports.ReqCreditIn.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		a.reqCredit.Add(msg.(*mem.CreditMsg).Amount)
		madeProgress = true
	}
}

func (a *MemAccessAgent) takeResponses() bool {
	madeProgress := false

	for {
		msg := a.ports.RspIn.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		rsp, ok := msg.(*mem.MemRsp)
		if !ok {
			log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
		}

		a.complete(rsp)
		mem.SendCredit(a.ports.RspCreditOut, 1)
		madeProgress = true
	}
}

func (a *MemAccessAgent) complete(rsp *mem.MemRsp) {
	a.completed++

	if _, ok := a.pendingWrites[rsp.RespondTo]; ok {
		delete(a.pendingWrites, rsp.RespondTo)
		return
	}

	read, ok := a.pendingReads[rsp.RespondTo]
	if !ok {
		log.Panicf("response %s matches no request", rsp.RespondTo)
	}

	delete(a.pendingReads, rsp.RespondTo)
	a.checkRead(read, rsp)
}

func (a *MemAccessAgent) checkRead(read pendingRead, rsp *mem.MemRsp) {
	data := rsp.Payload.Bytes()

	for i, b := range data {
		addr := read.req.PhysAddr + uint64(i)

		expected, known := read.expected[addr]
		if known && expected != b {
			a.mismatches++
			log.Printf("%.10f, %s, mismatch at 0x%x, expected %d, got %d",
				a.CurrentTime(), a.Name(), addr, expected, b)

			return
		}
	}
}

// tryIssue sends a random access with the given probability.
func (a *MemAccessAgent) tryIssue() {
	if a.rng.Float64() >= a.spec.GenProb {
		return
	}

	numLines := a.spec.MaxAddress / a.spec.LineSize
	lineAddr := uint64(a.rng.Int63n(int64(numLines))) * a.spec.LineSize
	size := uint64(a.rng.Int63n(int64(a.spec.LineSize))) + 1
	offset := uint64(a.rng.Int63n(int64(a.spec.LineSize - size + 1)))
	addr := lineAddr + offset

	if a.rng.Intn(100) < a.spec.ReadPercent {
		a.issueRead(addr, size)
	} else {
		a.issueWrite(addr, size)
	}
}

func (a *MemAccessAgent) issueRead(addr, size uint64) {
	req := a.buildReq(mem.Read, addr, mem.NewPayload(uint32(size)))

	expected := make(map[uint64]byte)
	for i := uint64(0); i < size; i++ {
		if v, ok := a.KnownMemValue[addr+i]; ok {
			expected[addr+i] = v
		}
	}

	a.send(req)
	a.pendingReads[req.ID] = pendingRead{req: req, expected: expected}
}

func (a *MemAccessAgent) issueWrite(addr, size uint64) {
	payload := mem.NewPayload(uint32(size))
	a.rng.Read(payload.Data)

	for i, b := range payload.Data {
		a.KnownMemValue[addr+uint64(i)] = b
	}

	req := a.buildReq(mem.Write, addr, payload)
	a.send(req)
	a.pendingWrites[req.ID] = req
}

func (a *MemAccessAgent) buildReq(
	kind mem.AccessKind,
	addr uint64,
	payload mem.Payload,
) *mem.MemReq {
	return mem.MemReqBuilder{}.
		WithSrc(a.ports.ReqOut.AsRemote()).
		WithDst(a.ports.ReqOut.Peer()).
		WithTimestamp(a.Freq.Cycle(a.CurrentTime())).
		WithPhysAddr(addr).
		WithKind(kind).
		WithPayload(payload).
		Build()
}

func (a *MemAccessAgent) send(req *mem.MemReq) {
	a.reqCredit.Consume()
	a.ports.ReqOut.Send(req)
	a.issued++
}
