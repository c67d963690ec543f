package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CacheLine", func() {
	var line *CacheLine

	BeforeEach(func() {
		line = NewCacheLine(64)
	})

	It("should start invalid", func() {
		Expect(line.Valid()).To(BeFalse())
		Expect(line.Dirty()).To(BeFalse())
		Expect(line.State.String()).To(Equal("I"))
	})

	It("should become modified when set", func() {
		line.Set(0x1000, 0x10)

		Expect(line.Valid()).To(BeTrue())
		Expect(line.Dirty()).To(BeTrue())
		Expect(line.Address).To(Equal(uint64(0x1000)))
		Expect(line.Tag).To(Equal(uint64(0x10)))
	})

	It("should keep clean fills clean", func() {
		line.Set(0x1000, 0x10)
		line.Fill(make([]byte, 64), Exclusive)

		Expect(line.Valid()).To(BeTrue())
		Expect(line.Dirty()).To(BeFalse())
	})

	It("should become dirty when written", func() {
		line.Set(0x1000, 0x10)
		line.SetState(Shared)
		line.Write(4, []byte{1, 2})

		Expect(line.State).To(Equal(Modified))
	})

	It("should invalidate", func() {
		line.Set(0x1000, 0x10)
		line.Unset()

		Expect(line.Valid()).To(BeFalse())
	})

	It("should round trip every offset and size", func() {
		line.Set(0, 0)

		for o := 0; o < 64; o++ {
			for n := 0; o+n <= 64; n++ {
				src := make([]byte, n)
				for i := range src {
					src[i] = byte(o*64 + n + i)
				}

				line.Write(uint64(o), src)

				dst := make([]byte, n)
				line.Read(uint64(o), dst)
				Expect(dst).To(Equal(src))
			}
		}
	})

	It("should panic on out-of-line accesses", func() {
		Expect(func() { line.Read(60, make([]byte, 8)) }).To(Panic())
		Expect(func() { line.Write(64, []byte{1}) }).To(Panic())
		Expect(func() { line.Fill(make([]byte, 65), Shared) }).To(Panic())
	})

	It("should name all states", func() {
		Expect([]string{
			Invalid.String(), Shared.String(), Owned.String(),
			Exclusive.String(), Modified.String(),
		}).To(Equal([]string{"I", "S", "O", "E", "M"}))
	})
})
