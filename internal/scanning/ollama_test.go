package scanning

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server *ghttp.Server
		engine *Ollama
		text   string
		err    error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var nerr error
		engine, nerr = NewOllama(server.URL(), "llava:1.6")
		Expect(nerr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = engine.Recognize(context.Background(), image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	})

	When("ollama answers", func() {
		var received ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, _ := io.ReadAll(r.Body)
					Expect(json.Unmarshal(body, &received)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nACME STORE\nTOTAL 9.99\n```"},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the transcription without the code fence", func() {
			Expect(text).To(Equal("ACME STORE\nTOTAL 9.99"))
		})

		It("sends the configured model with one image and streaming off", func() {
			Expect(received.Model).To(Equal("llava:1.6"))
			Expect(received.Stream).To(BeFalse())
			Expect(received.Messages).To(HaveLen(1))
			Expect(received.Messages[0].Images).To(HaveLen(1))
			Expect(received.Messages[0].Content).To(Equal(transcriptionPrompt))
		})
	})

	When("ollama returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not found"))
		})

		It("returns a recognition error", func() {
			Expect(errors.Is(err, ErrRecognition)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("model not found"))
		})
	})

	When("ollama is not running", func() {
		BeforeEach(func() {
			server.Close()
		})

		It("returns engine unavailable", func() {
			Expect(errors.Is(err, ErrEngineUnavailable)).To(BeTrue())
		})
	})
})
