package extraction

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Normalize", func() {
	It("drops blank lines and trims the rest", func() {
		doc := Normalize("  ACME \r\n\n\t\n 123 MAIN ST\rTOTAL 1.00  \n")
		Expect(doc.Lines).To(Equal([]string{"ACME", "123 MAIN ST", "TOTAL 1.00"}))
		Expect(doc.Text).To(Equal("ACME\n123 MAIN ST\nTOTAL 1.00"))
	})

	It("returns no lines for whitespace-only input", func() {
		doc := Normalize(" \n\n  \t")
		Expect(doc.Lines).To(BeEmpty())
		Expect(doc.Text).To(BeEmpty())
	})
})

var _ = Describe("Extract", func() {
	var (
		raw    string
		result Result
	)

	JustBeforeEach(func() {
		result = Extract(raw)
	})

	When("given a simple receipt", func() {
		BeforeEach(func() {
			raw = strings.Join([]string{"ACME HARDWARE CO", "123 MAIN ST", "DATE: 01/15/2024", "TOTAL: $45.67"}, "\n")
		})

		It("extracts all three fields", func() {
			Expect(result).To(Equal(Result{
				Vendor: "ACME HARDWARE CO",
				Date:   "2024-01-15",
				Total:  "45.67",
			}))
		})

		It("is deterministic", func() {
			Expect(Extract(raw)).To(Equal(result))
		})
	})

	When("given noisy OCR output", func() {
		BeforeEach(func() {
			raw = "\n\n  ~~ ##\n" +
				"  FRESH MARKET & DELI  \n\n" +
				"(212) 555-0100\n" +
				"RECEIPT\n" +
				"Bananas      1.29\n" +
				"Coffee       8.99\n" +
				"SUBTOTAL    10.28\n" +
				"TAX          0.82\n" +
				"TOTAL\n" +
				"$11.10\n" +
				"11/04/25 22:06\n"
		})

		It("extracts the vendor", func() {
			Expect(result.Vendor).To(Equal("FRESH MARKET & DELI"))
		})

		It("extracts the total from the line after the label", func() {
			Expect(result.Total).To(Equal("11.10"))
		})

		It("does not mistake the print timestamp for a date", func() {
			Expect(result.Date).To(BeEmpty())
		})
	})

	When("given empty text", func() {
		BeforeEach(func() {
			raw = ""
		})

		It("returns an empty result", func() {
			Expect(result).To(Equal(Result{}))
		})
	})

	DescribeTable("vendor length stays bounded",
		func(input string) {
			r := Extract(input)
			Expect(utf8.RuneCountInString(r.Vendor)).To(BeNumerically("<=", 128))
		},
		Entry("long upper case line", strings.Repeat("SHOP ", 60)),
		Entry("long fallback line", strings.Repeat("9", 300)),
		Entry("long non-ASCII line", strings.Repeat("Café ", 80)),
		Entry("binary noise", "\x00\x01\x02\xff\xfe"),
	)
})
