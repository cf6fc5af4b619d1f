package domain

// Blob is the raw content of a fetched source file.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}
