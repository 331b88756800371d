package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/nihongo/pkg/history"
	"github.com/papercomputeco/nihongo/pkg/history/historytest"
	"github.com/papercomputeco/nihongo/pkg/history/inmemory"
)

var _ = Describe("Driver", func() {
	historytest.DriverSpecs(func() history.Driver {
		return inmemory.NewDriver()
	})

	It("stores a copy of the entry", func() {
		d := inmemory.NewDriver()
		e := &history.Entry{Query: "Yes"}
		Expect(d.Append(context.Background(), e)).To(Succeed())
		e.Query = "changed"

		entries, err := d.List(context.Background(), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries[0].Query).To(Equal("Yes"))
	})
})
