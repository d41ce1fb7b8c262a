package bill

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		basePath string
		storage  *LocalStorage
	)

	BeforeEach(func() {
		basePath = filepath.Join(GinkgoT().TempDir(), "archive")
		var err error
		storage, err = NewLocalStorage(basePath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the base directory", func() {
		Expect(basePath).To(BeADirectory())
	})

	Describe("Save", func() {
		It("writes the file and returns its name", func() {
			name, err := storage.Save("id-1_scan.png", []byte("data"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("id-1_scan.png"))
			Expect(os.ReadFile(filepath.Join(basePath, name))).To(Equal([]byte("data")))
		})

		It("rejects names that escape the base directory", func() {
			_, err := storage.Save("../escape.png", []byte("data"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("reads a saved file", func() {
			_, err := storage.Save("a.png", []byte("abc"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Get("a.png")).To(Equal([]byte("abc")))
		})

		It("fails for a missing file", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("removes the file", func() {
			_, err := storage.Save("a.png", []byte("abc"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("a.png")).To(Succeed())
			Expect(filepath.Join(basePath, "a.png")).NotTo(BeAnExistingFile())
		})

		It("fails for a missing file", func() {
			Expect(storage.Delete("missing.png")).NotTo(Succeed())
		})
	})
})

var _ = Describe("sanitizeFilename", func() {
	DescribeTable("cleans phone-generated names",
		func(in, want string) {
			Expect(sanitizeFilename(in)).To(Equal(want))
		},
		Entry("plain", "receipt.png", "receipt.png"),
		Entry("special characters", "IMG_2024(1)!.JPG", "IMG_20241.jpg"),
		Entry("collapses spaces", "my   bill  .png", "my bill.png"),
		Entry("drops directories", "../../etc/passwd.png", "passwd.png"),
		Entry("empty base", "!!!.webp", "bill.webp"),
		Entry("long names", "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijXYZ.png", "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghij.png"),
	)
})
