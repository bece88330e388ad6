package snipeek_test

import (
	"errors"
	"testing"

	. "github.com/snipeek/snipeek"
)

func TestParseRecord(t *testing.T) {
	record, err := ParseRecord(rawClientHelloNoSNI)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}

	if record.ContentType != 22 {
		t.Errorf("record.ContentType = %d, want 22", record.ContentType)
	}
	if record.VersionMajor != 3 {
		t.Errorf("record.VersionMajor = %d, want 3", record.VersionMajor)
	}
	if record.VersionMinor != 1 {
		t.Errorf("record.VersionMinor = %d, want 1", record.VersionMinor)
	}
	if len(record.Fragment) != 161 {
		t.Errorf("len(record.Fragment) = %d, want 161", len(record.Fragment))
	}
	if record.Fragment[0] != 1 {
		t.Errorf("record.Fragment[0] = %d, want 1", record.Fragment[0])
	}
	if record.Fragment[len(record.Fragment)-1] != 1 {
		t.Errorf("last fragment byte = %d, want 1", record.Fragment[len(record.Fragment)-1])
	}
}

func TestParseRecordTruncated(t *testing.T) {
	if _, err := ParseRecord(rawClientHelloNoSNI[:3]); !errors.Is(err, ErrTruncatedLength) {
		t.Errorf("ParseRecord error = %v, want ErrTruncatedLength", err)
	}
	if _, err := ParseRecord(rawClientHelloNoSNI[:20]); !errors.Is(err, ErrTruncatedBody) {
		t.Errorf("ParseRecord error = %v, want ErrTruncatedBody", err)
	}
}
