// Package historytest holds the behavior every history.Driver must share,
// written as ginkgo specs so each driver package can run them.
package historytest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/nihongo/pkg/history"
)

// DriverSpecs registers the shared driver specs. newDriver is called before
// each spec and must return an empty driver; it is closed afterwards.
func DriverSpecs(newDriver func() history.Driver) {
	var (
		driver history.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		driver = nil
		ctx = context.Background()
		base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	entry := func(query string, offset time.Duration) *history.Entry {
		return &history.Entry{
			Query:     query,
			Output:    query + " (訳)",
			Provider:  "groq",
			Model:     "llama-3.3-70b-versatile",
			Duration:  1500 * time.Millisecond,
			CreatedAt: base.Add(offset),
		}
	}

	It("assigns an ID and timestamp on append", func() {
		e := &history.Entry{Query: "Good Morning", Output: "Ohayou", Provider: "groq", Model: "m"}
		Expect(driver.Append(ctx, e)).To(Succeed())
		Expect(e.ID).NotTo(BeEmpty())
		Expect(e.CreatedAt).NotTo(BeZero())
	})

	It("round-trips every field", func() {
		e := entry("How are you", 0)
		Expect(driver.Append(ctx, e)).To(Succeed())

		entries, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))

		got := entries[0]
		Expect(got.ID).To(Equal(e.ID))
		Expect(got.Query).To(Equal("How are you"))
		Expect(got.Output).To(Equal("How are you (訳)"))
		Expect(got.Provider).To(Equal("groq"))
		Expect(got.Model).To(Equal("llama-3.3-70b-versatile"))
		Expect(got.Duration).To(Equal(1500 * time.Millisecond))
		Expect(got.CreatedAt.Equal(base)).To(BeTrue())
	})

	It("lists newest first and honors the limit", func() {
		Expect(driver.Append(ctx, entry("one", 0))).To(Succeed())
		Expect(driver.Append(ctx, entry("two", time.Second))).To(Succeed())
		Expect(driver.Append(ctx, entry("three", 2*time.Second))).To(Succeed())

		entries, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Query).To(Equal("three"))
		Expect(entries[1].Query).To(Equal("two"))

		all, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})

	It("clears every entry", func() {
		Expect(driver.Append(ctx, entry("one", 0))).To(Succeed())
		Expect(driver.Clear(ctx)).To(Succeed())

		entries, err := driver.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("rejects a nil entry", func() {
		Expect(driver.Append(ctx, nil)).To(MatchError(history.ErrNilEntry))
	})
}
