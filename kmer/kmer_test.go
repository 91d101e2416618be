package kmer

import (
	"bytes"
	"testing"
)

func TestCheckK(t *testing.T) {
	tests := []struct {
		k       int
		wantErr error
	}{
		{0, ErrKOverflow},
		{1, nil},
		{14, nil},
		{15, ErrK15Unsupported},
		{16, nil},
		{17, nil},
		{32, nil},
		{33, ErrKOverflow},
	}
	for _, tt := range tests {
		if err := CheckK(tt.k); err != tt.wantErr {
			t.Errorf("CheckK(%d) = %v, want %v", tt.k, err, tt.wantErr)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []string{"A", "ACGT", "TTTTTTTTTTTTTTTT", "acgtACGT"}
	for _, mer := range tests {
		code, err := Encode([]byte(mer))
		if err != nil {
			t.Fatalf("Encode(%s): %v", mer, err)
		}
		got := Decode(code, len(mer))
		want := bytes.ToUpper([]byte(mer))
		if !bytes.Equal(got, want) {
			t.Errorf("Decode(Encode(%s)) = %s, want %s", mer, got, want)
		}
	}
}

func TestEncodeIllegalBase(t *testing.T) {
	if _, err := Encode([]byte("ACGN")); err != ErrIllegalBase {
		t.Errorf("Encode(ACGN) err = %v, want ErrIllegalBase", err)
	}
}

func TestEncodeFromFormerMatchesEncode(t *testing.T) {
	seq := []byte("ACGTACGTACGT")
	k := 4
	former, err := Encode(seq[:k])
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i+k <= len(seq); i++ {
		want, err := Encode(seq[i : i+k])
		if err != nil {
			t.Fatal(err)
		}
		got, err := EncodeFromFormer(seq[i:i+k], former, k)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("EncodeFromFormer at %d = %d, want %d", i, got, want)
		}
		former = got
	}
}

// RevComp is an involution.
func TestRevCompInvolution(t *testing.T) {
	mers := []string{"A", "ACGT", "GATTACA", "TTTTTTTTTTTTTTTTTTTTTTTTTTTTTTTT"}
	for _, mer := range mers {
		k := len(mer)
		code, err := Encode([]byte(mer))
		if err != nil {
			t.Fatal(err)
		}
		rc := RevComp(code, k) & Mask(k)
		rcrc := RevComp(rc, k) & Mask(k)
		if rcrc != code {
			t.Errorf("RevComp(RevComp(%s)) = %d, want %d", mer, rcrc, code)
		}
	}
}

// Canonical is idempotent and picks the min of the two
// orientations.
func TestCanonicalIdempotentAndMinimal(t *testing.T) {
	mers := []string{"ACGT", "TACG", "GGGGCCCC", "AAAA", "TTTT"}
	for _, mer := range mers {
		k := len(mer)
		code, err := Encode([]byte(mer))
		if err != nil {
			t.Fatal(err)
		}
		canon := Canonical(code, k)
		rc := RevComp(code, k) & Mask(k)
		masked := code & Mask(k)
		wantMin := masked
		if rc < wantMin {
			wantMin = rc
		}
		if canon != wantMin {
			t.Errorf("Canonical(%s) = %d, want min(%d,%d)=%d", mer, canon, masked, rc, wantMin)
		}
		if again := Canonical(canon, k); again != canon {
			t.Errorf("Canonical not idempotent for %s: %d != %d", mer, again, canon)
		}
	}
}

// A canonical code is always masked to its 2k bits.
func TestCanonicalIsMasked(t *testing.T) {
	for k := 1; k <= 32; k++ {
		if k == 15 {
			continue
		}
		mer := bytes.Repeat([]byte("ACGT"), 8)[:k]
		code, err := Encode(mer)
		if err != nil {
			t.Fatal(err)
		}
		kc := KmerCode{Code: Canonical(code, k), K: k}
		if !kc.Masked() {
			t.Errorf("k=%d: canonical code %d not masked to %d bits", k, kc.Code, 2*k)
		}
	}
}

func TestKmerCodeEqualAndString(t *testing.T) {
	a, err := NewKmerCode([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewKmerCode([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("expected equal KmerCodes")
	}
	if a.String() != "ACGT" {
		t.Errorf("String() = %s, want ACGT", a.String())
	}
}
