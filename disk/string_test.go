package disk

import (
	"bytes"
	"testing"
)

func TestPadStringPadsTo0xA0(t *testing.T) {
	got := PadString("TESTNAME", 16)
	want := append([]byte("TESTNAME"), bytes.Repeat([]byte{padByte}, 8)...)
	if !bytes.Equal(got, want) {
		t.Errorf("PadString = %v, want %v", got, want)
	}
}

func TestPadStringPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a string longer than n")
		}
	}()
	PadString("WAY TOO LONG FOR SIXTEEN BYTES", 16)
}

func TestUnpadBytesTrimsTrailingPadding(t *testing.T) {
	padded := PadString("HELLO", 16)
	if got := UnpadBytes(padded); got != "HELLO" {
		t.Errorf("UnpadBytes = %q, want HELLO", got)
	}
	if got := UnpadBytes(bytes.Repeat([]byte{padByte}, 16)); got != "" {
		t.Errorf("UnpadBytes of all padding = %q, want empty", got)
	}
}

func TestSplitNameSuffixPlainName(t *testing.T) {
	var raw [16]byte
	copy(raw[:], PadString("MYFILE", 16))
	name, suffix := splitNameSuffix(raw)
	if name != "MYFILE" || suffix != "" {
		t.Errorf("name=%q suffix=%q, want MYFILE/empty", name, suffix)
	}
}

func TestSplitNameSuffixWithTrailingText(t *testing.T) {
	var raw [16]byte
	copy(raw[:], "GAME")
	raw[4] = padByte
	raw[5] = ','
	raw[6] = '8'
	raw[7] = ','
	raw[8] = '1'
	for i := 9; i < 16; i++ {
		raw[i] = padByte
	}
	name, suffix := splitNameSuffix(raw)
	if name != "GAME" {
		t.Errorf("name = %q, want GAME", name)
	}
	if suffix != ",8,1" {
		t.Errorf("suffix = %q, want ,8,1", suffix)
	}
}
