package raknet

import "testing"

func TestFragmentAssemblerReassemblesInOrder(t *testing.T) {
	a := NewFragmentAssembler()

	chunks := [][]byte{[]byte("hel"), []byte("lo "), []byte("wor"), []byte("ld")}
	var out []byte
	var complete bool
	for i, chunk := range chunks {
		split := &SplitInfo{Count: uint32(len(chunks)), ID: 1, Index: uint32(i)}
		var err error
		out, complete, err = a.Insert(split, chunk)
		if err != nil {
			t.Fatalf("Insert(%d) error = %v", i, err)
		}
		if i < len(chunks)-1 && complete {
			t.Errorf("Insert(%d) complete = true, want false", i)
		}
	}
	if !complete {
		t.Fatal("final Insert() complete = false, want true")
	}
	if string(out) != "hello world" {
		t.Errorf("reassembled = %q, want %q", out, "hello world")
	}
}

func TestFragmentAssemblerReassemblesReverseOrder(t *testing.T) {
	a := NewFragmentAssembler()

	chunks := [][]byte{[]byte("A"), []byte("B"), []byte("C")}
	var out []byte
	var complete bool
	for i := len(chunks) - 1; i >= 0; i-- {
		split := &SplitInfo{Count: uint32(len(chunks)), ID: 2, Index: uint32(i)}
		var err error
		out, complete, err = a.Insert(split, chunks[i])
		if err != nil {
			t.Fatalf("Insert(%d) error = %v", i, err)
		}
	}
	if !complete {
		t.Fatal("complete = false after all fragments inserted, want true")
	}
	if string(out) != "ABC" {
		t.Errorf("reassembled = %q, want %q", out, "ABC")
	}
}

func TestFragmentAssemblerKeepsSplitIDsIndependent(t *testing.T) {
	a := NewFragmentAssembler()

	_, complete, err := a.Insert(&SplitInfo{Count: 2, ID: 1, Index: 0}, []byte("x1"))
	if err != nil || complete {
		t.Fatalf("Insert(id=1,0) = %v, %v, want nil, false", err, complete)
	}
	_, complete, err = a.Insert(&SplitInfo{Count: 2, ID: 2, Index: 0}, []byte("x2"))
	if err != nil || complete {
		t.Fatalf("Insert(id=2,0) = %v, %v, want nil, false", err, complete)
	}
	if pending := a.Pending(); pending != 2 {
		t.Errorf("Pending() = %d, want 2", pending)
	}
}

func TestFragmentAssemblerRejectsOutOfRangeIndex(t *testing.T) {
	a := NewFragmentAssembler()
	if _, _, err := a.Insert(&SplitInfo{Count: 2, ID: 1, Index: 2}, []byte("x")); err == nil {
		t.Error("Insert() with index == count succeeded, want an error")
	}
}

func TestFragmentAssemblerRejectsExcessiveCount(t *testing.T) {
	a := NewFragmentAssembler()
	if _, _, err := a.Insert(&SplitInfo{Count: MaxSplitCount + 1, ID: 1, Index: 0}, []byte("x")); err == nil {
		t.Error("Insert() with count > MaxSplitCount succeeded, want an error")
	}
}
