package cache

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TreePLRU", func() {
	DescribeTable("touching every way in order",
		func(ways int) {
			p := NewTreePLRU(ways)

			for w := 0; w < ways; w++ {
				p.TouchMRU(w)
			}

			Expect(p.LRUWay()).To(Equal(0))
			Expect(p.MRUWay()).To(Equal(ways - 1))

			for i := 0; i < 3; i++ {
				Expect(p.LRUWay()).To(Equal(0))
			}
		},
		Entry("1 way", 1),
		Entry("2 ways", 2),
		Entry("4 ways", 4),
		Entry("8 ways", 8),
		Entry("16 ways", 16),
		Entry("32 ways", 32),
	)

	It("should approximate LRU in a 4-way tree", func() {
		p := NewTreePLRU(4)
		for w := 0; w < 4; w++ {
			p.TouchMRU(w)
		}

		p.TouchMRU(0)

		Expect(p.LRUWay()).To(Equal(2))
	})

	It("should always report the last touched way as MRU", func() {
		p := NewTreePLRU(8)
		r := rand.New(rand.NewSource(4))

		for i := 0; i < 1000; i++ {
			w := r.Intn(8)
			p.TouchMRU(w)

			Expect(p.MRUWay()).To(Equal(w))
			Expect(p.LRUWay()).NotTo(Equal(w))
		}
	})

	It("should make a way the victim with TouchLRU", func() {
		p := NewTreePLRU(8)

		for w := 0; w < 8; w++ {
			p.TouchLRU(w)
			Expect(p.LRUWay()).To(Equal(w))
		}
	})

	It("should reset", func() {
		p := NewTreePLRU(4)
		p.TouchMRU(0)
		p.Reset()

		Expect(p.LRUWay()).To(Equal(0))
	})

	It("should panic on invalid ways", func() {
		Expect(func() { NewTreePLRU(3) }).To(Panic())
		Expect(func() { NewTreePLRU(4).TouchMRU(4) }).To(Panic())
		Expect(func() { NewTreePLRU(4).TouchLRU(-1) }).To(Panic())
	})
})
