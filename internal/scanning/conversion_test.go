package scanning

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func pngBytes(img image.Image) []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("DecodeImage", func() {
	var (
		data []byte
		img  image.Image
		err  error
	)

	JustBeforeEach(func() {
		img, err = DecodeImage(data)
	})

	When("decoding a PNG with transparency", func() {
		BeforeEach(func() {
			src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
			src.Set(1, 1, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
			data = pngBytes(src)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the dimensions", func() {
			Expect(img.Bounds().Dx()).To(Equal(4))
			Expect(img.Bounds().Dy()).To(Equal(3))
		})

		It("should flatten transparent pixels onto white", func() {
			r, g, b, a := img.At(0, 0).RGBA()
			Expect([]uint32{r, g, b, a}).To(Equal([]uint32{0xffff, 0xffff, 0xffff, 0xffff}))
		})

		It("should keep opaque pixels", func() {
			r, g, b, a := img.At(1, 1).RGBA()
			Expect([]uint32{r, g, b, a}).To(Equal([]uint32{0, 0, 0, 0xffff}))
		})
	})

	When("decoding a JPEG", func() {
		BeforeEach(func() {
			src := image.NewRGBA(image.Rect(0, 0, 8, 8))
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, src, nil)).To(Succeed())
			data = buf.Bytes()
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(8))
		})
	})

	When("the bytes are not an image", func() {
		BeforeEach(func() {
			data = []byte("definitely not an image")
		})

		It("returns an image decode error", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrImageDecode)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("unsupported image format"))
		})
	})

	When("the data is empty", func() {
		BeforeEach(func() {
			data = nil
		})

		It("returns an image decode error", func() {
			Expect(errors.Is(err, ErrImageDecode)).To(BeTrue())
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("should detect the heic brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
	})

	It("should detect the mif1 brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypmif1\x00\x00"))).To(BeTrue())
	})

	It("should reject other data", func() {
		Expect(isHEICFormat([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"))).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})
})

var _ = Describe("Enhance", func() {
	It("should keep the image size", func() {
		src := image.NewNRGBA(image.Rect(0, 0, 10, 6))
		out := Enhance(src)
		Expect(out.Bounds().Size()).To(Equal(image.Pt(10, 6)))
	})
})
