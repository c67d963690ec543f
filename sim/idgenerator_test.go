package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	BeforeEach(func() {
		idGeneratorMutex.Lock()
		saved, instantiated := idGenerator, idGeneratorInstantiated
		idGenerator, idGeneratorInstantiated = nil, false
		idGeneratorMutex.Unlock()

		DeferCleanup(func() {
			idGeneratorMutex.Lock()
			idGenerator, idGeneratorInstantiated = saved, instantiated
			idGeneratorMutex.Unlock()
		})
	})

	It("should count up by default", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique IDs in parallel mode", func() {
		UseParallelIDGenerator()
		g := GetIDGenerator()

		ids := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := g.Generate()
			Expect(id).To(HaveLen(20))
			Expect(ids).NotTo(HaveKey(id))
			ids[id] = true
		}
	})

	It("should not switch generators after one is used", func() {
		GetIDGenerator()

		Expect(UseParallelIDGenerator).To(Panic())
	})
})
