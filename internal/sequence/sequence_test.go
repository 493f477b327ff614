package sequence

import "testing"

func TestSourceRange(t *testing.T) {
	src := NewSeededSource(1)
	for i := 0; i < 1000; i++ {
		d := src.Next()
		if d < 1 || d > 9 {
			t.Fatalf("digit %d out of range [1, 9]", d)
		}
	}
}

func TestBufferAnswer(t *testing.T) {
	var buf Buffer

	if _, _, _, ok := buf.Answer(1); ok {
		t.Fatal("empty buffer must not have an answer")
	}

	buf.Append(4)
	if _, _, _, ok := buf.Answer(1); ok {
		t.Fatal("one digit is not enough for 1-back")
	}

	buf.Append(7)
	current, back, sum, ok := buf.Answer(1)
	if !ok {
		t.Fatal("expected answer after two digits")
	}
	if current != 7 || back != 4 || sum != 11 {
		t.Fatalf("got current=%d back=%d sum=%d, want 7, 4, 11", current, back, sum)
	}

	buf.Append(2)
	_, _, sum, ok = buf.Answer(1)
	if !ok || sum != 9 {
		t.Fatalf("after third digit sum = %d (ok=%v), want 9", sum, ok)
	}

	// Deeper lookback on the same log.
	_, back, sum, ok = buf.Answer(2)
	if !ok || back != 4 || sum != 6 {
		t.Fatalf("2-back: back=%d sum=%d (ok=%v), want 4, 6", back, sum, ok)
	}
	if _, _, _, ok := buf.Answer(3); ok {
		t.Fatal("3-back needs four digits")
	}
}

func TestBufferReset(t *testing.T) {
	var buf Buffer
	buf.Append(5)
	buf.Append(6)
	buf.Reset()
	if buf.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", buf.Len())
	}
	if _, _, _, ok := buf.Answer(1); ok {
		t.Fatal("reset buffer must not have an answer")
	}
}
