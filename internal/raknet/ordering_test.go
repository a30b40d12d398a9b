package raknet

import "testing"

func TestOrderedDeliveryInOrderArrival(t *testing.T) {
	c := newOrderingChannel()

	for i, payload := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
		out := c.insertOrdered(uint32(i), payload)
		if len(out) != 1 || string(out[0]) != string(payload) {
			t.Errorf("insertOrdered(%d) = %v, want [%s]", i, out, payload)
		}
	}
}

func TestOrderedDeliveryPermutedArrival(t *testing.T) {
	c := newOrderingChannel()

	if out := c.insertOrdered(2, []byte("c")); out != nil {
		t.Errorf("insertOrdered(2) = %v, want nil (buffered)", out)
	}
	if out := c.insertOrdered(1, []byte("b")); out != nil {
		t.Errorf("insertOrdered(1) = %v, want nil (buffered)", out)
	}
	out := c.insertOrdered(0, []byte("a"))
	want := []string{"a", "b", "c"}
	if len(out) != len(want) {
		t.Fatalf("insertOrdered(0) released %d payloads, want %d", len(out), len(want))
	}
	for i, w := range want {
		if string(out[i]) != w {
			t.Errorf("released[%d] = %s, want %s", i, out[i], w)
		}
	}
}

func TestOrderedDeliveryDropsDuplicateAndStale(t *testing.T) {
	c := newOrderingChannel()
	c.insertOrdered(0, []byte("a"))

	if out := c.insertOrdered(0, []byte("a-dup")); out != nil {
		t.Errorf("insertOrdered(0) duplicate = %v, want nil", out)
	}
}

func TestOrderedBufferCapDropsExcess(t *testing.T) {
	c := newOrderingChannel()
	// Never deliver index 0, so everything else piles up in the buffer.
	for i := uint32(1); i <= MaxOrderedBuffer+5; i++ {
		c.insertOrdered(i, []byte{byte(i)})
	}
	if len(c.orderedBuffer) > MaxOrderedBuffer {
		t.Errorf("len(orderedBuffer) = %d, want <= %d", len(c.orderedBuffer), MaxOrderedBuffer)
	}
}

func TestSequencedNewestWins(t *testing.T) {
	c := newOrderingChannel()

	out, ok := c.insertSequenced(5, []byte("five"))
	if !ok || string(out) != "five" {
		t.Errorf("insertSequenced(5) = %v, %v, want five, true", out, ok)
	}

	if _, ok := c.insertSequenced(3, []byte("three")); ok {
		t.Error("insertSequenced(3) after 5 delivered, want dropped")
	}

	out, ok = c.insertSequenced(9, []byte("nine"))
	if !ok || string(out) != "nine" {
		t.Errorf("insertSequenced(9) = %v, %v, want nine, true", out, ok)
	}
}

func TestOrderingChannelsAreIndependent(t *testing.T) {
	channels := newOrderingChannels()
	out0 := channels[0].insertOrdered(0, []byte("ch0"))
	out1 := channels[1].insertOrdered(0, []byte("ch1"))

	if len(out0) != 1 || string(out0[0]) != "ch0" {
		t.Errorf("channels[0] = %v, want [ch0]", out0)
	}
	if len(out1) != 1 || string(out1[0]) != "ch1" {
		t.Errorf("channels[1] = %v, want [ch1]", out1)
	}
}
