package scanning

import (
	"context"
	"image"
)

// Engine turns a decoded image into raw text
type Engine interface {
	// Recognize returns the text on the image with the engine's line breaks kept
	Recognize(ctx context.Context, img image.Image) (string, error)
	// Close releases resources held by the engine
	Close() error
}

// transcriptionPrompt is shared by the vision-model engines. It asks for plain
// OCR output so the heuristic extractor sees the same shape of text tesseract
// would produce.
const transcriptionPrompt = `You are an OCR engine. Transcribe every piece of text visible in this receipt or invoice image.

Rules:
- Output the text exactly as printed, one printed line per output line, in top-to-bottom order
- Keep numbers, currency symbols, dates and punctuation exactly as they appear
- Do not summarize, translate, correct or reformat anything
- Do not add commentary, headings or markdown code blocks
- If the image contains no readable text, output nothing`
