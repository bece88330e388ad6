package snipeek

const recordHeaderLen = 5 // content type (1) + version (2) + length (2)

// Record is one TLS record: the decoded header fields plus the
// length-bounded fragment. Fragment borrows from the buffer given to
// ParseRecord and must not outlive it.
type Record struct {
	ContentType  uint8
	VersionMajor uint8
	VersionMinor uint8
	Fragment     []byte
}

// ParseRecord reads the TLS record starting at data[0]. It fails with
// ErrTruncatedLength when data holds less than a record header, and with
// ErrTruncatedBody when data is shorter than the declared record.
func ParseRecord(data []byte) (Record, error) {
	fragment, err := takeSized(data, 3, recordHeaderLen)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ContentType:  data[0],
		VersionMajor: data[1],
		VersionMinor: data[2],
		Fragment:     fragment,
	}, nil
}
