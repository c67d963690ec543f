package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("CacheSet", func() {
	var (
		mockCtrl *gomock.Controller
		policy   *MockReplacementPolicy
		set      *CacheSet
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		policy = NewMockReplacementPolicy(mockCtrl)
		set = NewCacheSet(4, 64, policy)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should only find valid lines", func() {
		set.Line(2).Tag = 0x10

		_, ok := set.Lookup(0x10)
		Expect(ok).To(BeFalse())

		set.Line(2).Set(0x1000, 0x10)

		way, ok := set.Lookup(0x10)
		Expect(ok).To(BeTrue())
		Expect(way).To(Equal(2))
	})

	It("should pick the first invalid way", func() {
		set.Line(0).Set(0x0, 0x0)
		set.Line(1).Set(0x100, 0x1)

		Expect(set.VictimForReplacement()).To(Equal(2))
	})

	It("should ask the policy when the set is full", func() {
		for w := 0; w < 4; w++ {
			set.Line(w).Set(uint64(w)*0x100, uint64(w))
		}

		policy.EXPECT().LRUWay().Return(3)

		Expect(set.VictimForReplacement()).To(Equal(3))
	})

	It("should forward touches to the policy", func() {
		policy.EXPECT().TouchMRU(1)
		policy.EXPECT().TouchLRU(2)
		policy.EXPECT().MRUWay().Return(1)
		policy.EXPECT().LRUWay().Return(2)

		set.TouchMRU(1)
		set.TouchLRU(2)

		Expect(set.MRUWay()).To(Equal(1))
		Expect(set.LRUWay()).To(Equal(2))
	})

	It("should reset lines and policy", func() {
		set.Line(0).Set(0x0, 0x0)
		policy.EXPECT().Reset()

		set.Reset()

		Expect(set.Line(0).Valid()).To(BeFalse())
		Expect(set.Ways()).To(Equal(4))
	})
})
