package domain

// LabelImage is an encoded photograph of a product label
type LabelImage struct {
	Name string
	Data []byte
}

// NormalizedImage is the OCR-ready form of a LabelImage.
// Data is PNG encoded unless Normalized is false, in which case it may be the
// untouched source bytes.
type NormalizedImage struct {
	Data       []byte
	Width      int
	Height     int
	Normalized bool
}
