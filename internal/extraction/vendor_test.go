package extraction

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractVendor", func() {
	var (
		lines  []string
		vendor string
	)

	JustBeforeEach(func() {
		vendor = ExtractVendor(Normalize(strings.Join(lines, "\n")))
	})

	When("the first line is a document header", func() {
		BeforeEach(func() {
			lines = []string{"INVOICE #4471", "ACME HARDWARE CO", "123 MAIN ST"}
		})

		It("skips it", func() {
			Expect(vendor).To(Equal("ACME HARDWARE CO"))
		})
	})

	When("a line carries a phone number", func() {
		BeforeEach(func() {
			lines = []string{"TEL (555) 010 SHOP", "BEST MART"}
		})

		It("skips it", func() {
			Expect(vendor).To(Equal("BEST MART"))
		})
	})

	When("a line is mostly digits", func() {
		BeforeEach(func() {
			lines = []string{"555-123-4567", "04/05/2024 #0012", "Joe's Diner"}
		})

		It("skips it and cleans punctuation from the survivor", func() {
			Expect(vendor).To(Equal("Joes Diner"))
		})
	})

	When("the store name has leading OCR noise", func() {
		BeforeEach(func() {
			lines = []string{"**TRADER JOE'S"}
		})

		It("strips the noise", func() {
			Expect(vendor).To(Equal("TRADER JOES"))
		})
	})

	When("the name is lower case", func() {
		BeforeEach(func() {
			lines = []string{"the little bakery", "bread 4.00"}
		})

		It("accepts it through the secondary branch", func() {
			Expect(vendor).To(Equal("the little bakery"))
		})
	})

	When("no line passes the filters", func() {
		BeforeEach(func() {
			lines = []string{"12345", "$$$ 99.99"}
		})

		It("falls back to the first long line", func() {
			Expect(vendor).To(Equal("12345"))
		})
	})

	When("the fallback line starts with punctuation", func() {
		BeforeEach(func() {
			lines = []string{"ab", "--- 42 ---"}
		})

		It("only strips the leading punctuation", func() {
			Expect(vendor).To(Equal("42 ---"))
		})
	})

	When("the name is below the first ten lines", func() {
		BeforeEach(func() {
			lines = []string{"1234"}
			for i := 0; i < 9; i++ {
				lines = append(lines, "0000")
			}
			lines = append(lines, "MEGA STORE")
		})

		It("is never considered", func() {
			Expect(vendor).To(Equal("1234"))
		})
	})

	When("the name is very long", func() {
		BeforeEach(func() {
			lines = []string{strings.Repeat("A", 200)}
		})

		It("caps it at 128 characters", func() {
			Expect(vendor).To(HaveLen(128))
		})
	})

	When("every line is too short", func() {
		BeforeEach(func() {
			lines = []string{"ab", "1", "x"}
		})

		It("returns empty", func() {
			Expect(vendor).To(BeEmpty())
		})
	})
})
