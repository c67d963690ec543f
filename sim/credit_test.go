package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CreditCounter", func() {
	var c *CreditCounter

	BeforeEach(func() {
		c = NewCreditCounter("Upper.Rsp")
	})

	It("should start without credit", func() {
		Expect(c.Available()).To(BeFalse())
		Expect(c.Count()).To(Equal(uint64(0)))
		Expect(c.Name()).To(Equal("Upper.Rsp"))
	})

	It("should add and consume credits", func() {
		c.Add(2)
		c.Consume()

		Expect(c.Count()).To(Equal(uint64(1)))
		Expect(c.Received()).To(Equal(uint64(2)))
		Expect(c.Consumed()).To(Equal(uint64(1)))
		Expect(c.Conserved()).To(BeTrue())
	})

	It("should panic when consuming without credit", func() {
		Expect(func() { c.Consume() }).
			To(PanicWith(ContainSubstring(ErrNoCredit)))
	})

	It("should panic with the custom violation value", func() {
		type violation struct{ reason string }

		c.OnViolation = func(reason string) interface{} {
			return &violation{reason: reason}
		}

		Expect(func() { c.Consume() }).
			To(PanicWith(BeAssignableToTypeOf(&violation{})))
		Expect(c.Conserved()).To(BeTrue())
	})
})
