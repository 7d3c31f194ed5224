package evkv

import (
	"bytes"
	"testing"
)

func TestRingBufferAppendConsumeFIFO(t *testing.T) {
	r := newRingBuffer(8)

	r.append([]byte("hello"))
	r.append([]byte(" world"))

	if got, want := r.len(), len("hello world"); got != want {
		t.Fatalf("len() = %d, want %d", got, want)
	}
	if got, want := string(r.view()), "hello world"; got != want {
		t.Fatalf("view() = %q, want %q", got, want)
	}

	r.consume(6)
	if got, want := string(r.view()), "world"; got != want {
		t.Fatalf("view() after consume = %q, want %q", got, want)
	}

	r.consume(5)
	if got := r.len(); got != 0 {
		t.Fatalf("len() after full consume = %d, want 0", got)
	}
}

func TestRingBufferConsumeZeroAndOverrun(t *testing.T) {
	r := newRingBuffer(8)
	r.append([]byte("abc"))

	r.consume(0)
	if got := r.len(); got != 3 {
		t.Fatalf("consume(0) changed len to %d", got)
	}

	r.consume(100)
	if got := r.len(); got != 0 {
		t.Fatalf("consume(overrun) left len %d, want 0", got)
	}
}

func TestRingBufferCompactionPreservesContent(t *testing.T) {
	r := newRingBuffer(4)

	var want []byte
	for i := 0; i < 50; i++ {
		chunk := []byte{byte(i), byte(i + 1), byte(i + 2)}
		r.append(chunk)
		want = append(want, chunk...)

		if i%3 == 0 {
			r.consume(2)
			want = want[2:]
		}
	}

	if !bytes.Equal(r.view(), want) {
		t.Fatalf("view() diverged from expected content after interleaved append/consume")
	}
}

func TestRingBufferGrowsPastInitialCapacity(t *testing.T) {
	r := newRingBuffer(4)
	big := bytes.Repeat([]byte{0xAB}, 10000)

	r.append(big)

	if r.len() != len(big) {
		t.Fatalf("len() = %d, want %d", r.len(), len(big))
	}
	if !bytes.Equal(r.view(), big) {
		t.Fatalf("view() does not match appended data after growth")
	}
}

func TestRingBufferConsumeAllResetsOffsets(t *testing.T) {
	r := newRingBuffer(4)
	r.append([]byte("xyz"))
	r.consume(3)

	r.append([]byte("more"))
	if got, want := string(r.view()), "more"; got != want {
		t.Fatalf("view() after reset-and-append = %q, want %q", got, want)
	}
}
