package raknet

import "testing"

func TestFrameRoundTripReliableOrdered(t *testing.T) {
	f := &Frame{
		Reliability:   ReliableOrdered,
		ReliableIndex: 7,
		OrderedIndex:  3,
		Channel:       1,
		Payload:       []byte{0x01, 0x02, 0x03},
	}
	fs := &FrameSet{SequenceNumber: 42, Frames: []*Frame{f}}
	data := fs.Encode()

	got, err := DecodeFrameSet(data)
	if err != nil {
		t.Fatalf("DecodeFrameSet() error = %v", err)
	}
	if got.SequenceNumber != 42 {
		t.Errorf("SequenceNumber = %d, want 42", got.SequenceNumber)
	}
	if len(got.Frames) != 1 {
		t.Fatalf("len(Frames) = %d, want 1", len(got.Frames))
	}
	gf := got.Frames[0]
	if gf.Reliability != f.Reliability || gf.ReliableIndex != f.ReliableIndex ||
		gf.OrderedIndex != f.OrderedIndex || gf.Channel != f.Channel {
		t.Errorf("got %+v, want %+v", gf, f)
	}
	if string(gf.Payload) != string(f.Payload) {
		t.Errorf("Payload = %v, want %v", gf.Payload, f.Payload)
	}
}

func TestFrameRoundTripUnreliable(t *testing.T) {
	f := &Frame{Reliability: Unreliable, Payload: []byte("ping")}
	fs := &FrameSet{SequenceNumber: 1, Frames: []*Frame{f}}
	data := fs.Encode()

	got, err := DecodeFrameSet(data)
	if err != nil {
		t.Fatalf("DecodeFrameSet() error = %v", err)
	}
	if string(got.Frames[0].Payload) != "ping" {
		t.Errorf("Payload = %s, want ping", got.Frames[0].Payload)
	}
}

func TestFrameRoundTripSplit(t *testing.T) {
	f := &Frame{
		Reliability: Reliable,
		Split:       &SplitInfo{Count: 3, ID: 9, Index: 1},
		Payload:     []byte{0xAA, 0xBB},
	}
	fs := &FrameSet{SequenceNumber: 5, Frames: []*Frame{f}}
	data := fs.Encode()

	got, err := DecodeFrameSet(data)
	if err != nil {
		t.Fatalf("DecodeFrameSet() error = %v", err)
	}
	gf := got.Frames[0]
	if gf.Split == nil {
		t.Fatal("Split = nil, want non-nil")
	}
	if *gf.Split != *f.Split {
		t.Errorf("Split = %+v, want %+v", *gf.Split, *f.Split)
	}
}

func TestFrameRoundTripSequencedChannel(t *testing.T) {
	f := &Frame{
		Reliability:   ReliableSequenced,
		ReliableIndex: 4,
		OrderedIndex:  11,
		Channel:       17,
		Payload:       []byte("seq"),
	}
	fs := &FrameSet{SequenceNumber: 2, Frames: []*Frame{f}}
	data := fs.Encode()

	got, err := DecodeFrameSet(data)
	if err != nil {
		t.Fatalf("DecodeFrameSet() error = %v", err)
	}
	gf := got.Frames[0]
	if gf.OrderedIndex != f.OrderedIndex {
		t.Errorf("OrderedIndex = %d, want %d", gf.OrderedIndex, f.OrderedIndex)
	}
	if gf.Channel != f.Channel {
		t.Errorf("Channel = %d, want %d (sequenced frames must carry their channel on the wire)", gf.Channel, f.Channel)
	}
}

func TestFrameSetMultipleFrames(t *testing.T) {
	fs := &FrameSet{
		SequenceNumber: 10,
		Frames: []*Frame{
			{Reliability: Unreliable, Payload: []byte("a")},
			{Reliability: Reliable, ReliableIndex: 1, Payload: []byte("b")},
			{Reliability: ReliableOrdered, ReliableIndex: 2, OrderedIndex: 0, Channel: 5, Payload: []byte("c")},
		},
	}
	data := fs.Encode()

	got, err := DecodeFrameSet(data)
	if err != nil {
		t.Fatalf("DecodeFrameSet() error = %v", err)
	}
	if len(got.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3", len(got.Frames))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(got.Frames[i].Payload) != want {
			t.Errorf("Frames[%d].Payload = %s, want %s", i, got.Frames[i].Payload, want)
		}
	}
}

func TestDecodeFrameSetRejectsNonFrameSetHeader(t *testing.T) {
	if _, err := DecodeFrameSet([]byte{0x01, 0, 0, 0}); err == nil {
		t.Error("DecodeFrameSet() on a non-frame-set header succeeded, want an error")
	}
}

func TestReadFrameRejectsOutOfRangeSplitIndex(t *testing.T) {
	f := &Frame{
		Reliability: Reliable,
		Split:       &SplitInfo{Count: 2, ID: 1, Index: 1},
		Payload:     []byte{0x01},
	}
	fs := &FrameSet{SequenceNumber: 1, Frames: []*Frame{f}}
	data := fs.Encode()

	// Corrupt the split index field to equal the count, which readFrame
	// must reject.
	corrupt := append([]byte(nil), data...)
	// frame-set header(4) + flags(1) + length(2) + reliableIndex(3) +
	// count(4) + id(2), then index(4)
	idxOffset := 4 + 1 + 2 + 3 + 4 + 2
	corrupt[idxOffset] = 0
	corrupt[idxOffset+1] = 0
	corrupt[idxOffset+2] = 0
	corrupt[idxOffset+3] = 2

	if _, err := DecodeFrameSet(corrupt); err == nil {
		t.Error("DecodeFrameSet() with split index == count succeeded, want an error")
	}
}
