package mtproto

import "testing"

func TestMsgIDGeneratorMonotonic(t *testing.T) {
	var g MsgIDGenerator
	prev := g.Next(0)
	for i := 0; i < 1000; i++ {
		next := g.Next(0)
		if next <= prev {
			t.Fatalf("msg_id not strictly increasing: %d then %d", prev, next)
		}
		if next&3 != 0 {
			t.Fatalf("msg_id %d has nonzero low 2 bits", next)
		}
		prev = next
	}
}

func TestMsgIDGeneratorObserve(t *testing.T) {
	var g MsgIDGenerator
	g.Observe(1 << 40)
	next := g.Next(0)
	if next <= 1<<40 {
		t.Fatalf("Next() did not respect observed floor: got %d", next)
	}
}
