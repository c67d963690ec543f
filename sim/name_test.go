package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	DescribeTable("valid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).NotTo(Panic())
		},
		Entry("single", "Cache"),
		Entry("hierarchical", "System.L1Cache.UpperReqIn"),
		Entry("indexed", "System.Cache[2].Port"),
		Entry("multi indexed", "Cache[1][3]"),
	)

	DescribeTable("invalid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("empty element", "A..B"),
		Entry("trailing dot", "A.B."),
		Entry("lower case", "A.b"),
		Entry("underscore", "A.B_C"),
		Entry("dash", "A-B"),
		Entry("bad index", "A[x]"),
		Entry("unclosed index", "A[1"),
	)

	It("should build names", func() {
		Expect(BuildName("", "Top")).To(Equal("Top"))
		Expect(BuildName("Top", "Cache")).To(Equal("Top.Cache"))
		Expect(BuildNameWithIndex("Top", "Cache", 3)).To(Equal("Top.Cache[3]"))
	})
})
