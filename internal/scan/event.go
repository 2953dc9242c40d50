package scan

// Source tags where a scan payload came from.
type Source string

const (
	SourceBarcode Source = "barcode"
	SourceQR      Source = "qr"
	SourceOCR     Source = "ocr"
)

// Event is a raw scan payload. Transient: consumed by the pipeline, never
// persisted.
type Event struct {
	Raw       string
	Source    Source
	SessionID string
}
