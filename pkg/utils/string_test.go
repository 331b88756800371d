package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("never splits a multi-byte character", func() {
		Expect(Truncate("おはようございます", 4)).To(Equal("おはよう..."))
	})
})

var _ = Describe("FirstLine", func() {
	It("skips leading blank lines", func() {
		Expect(FirstLine("\n\n  Ohayou gozaimasu.  \nmore")).To(Equal("Ohayou gozaimasu."))
	})

	It("returns empty for blank input", func() {
		Expect(FirstLine(" \n ")).To(BeEmpty())
	})
})
